package utils

import "os"

// DBFileSize returns the on-disk size of a database file in bytes.
// Missing files count as zero.
func DBFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
