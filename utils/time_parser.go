package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration extends time.ParseDuration with a day suffix, e.g. "3d".
// Non-positive durations are rejected since every caller feeds the
// result into a timeout.
func ParseDuration(s string) (time.Duration, error) {
	var d time.Duration
	var err error
	if strings.HasSuffix(s, "d") {
		daysStr := strings.TrimSuffix(s, "d")
		days, convErr := strconv.Atoi(daysStr)
		if convErr != nil {
			return 0, fmt.Errorf("invalid day value: %s", daysStr)
		}
		d = time.Duration(days) * 24 * time.Hour
	} else {
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, err
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}
