package utils

import "testing"

func TestCheckPermission(t *testing.T) {
	adminRoles := []string{"r-admin"}
	developers := []string{"dev-1"}
	superAdminRoles := []string{"r-super"}

	cases := []struct {
		name    string
		roles   []string
		userID  string
		want    string
		isStaff bool
	}{
		{"developer id wins", []string{}, "dev-1", DeveloperPermission, true},
		{"super admin role", []string{"r-super", "r-admin"}, "u1", SuperAdminPermission, true},
		{"admin role", []string{"r-admin"}, "u1", AdminPermission, true},
		{"plain member", []string{"r-other"}, "u1", NoPermission, false},
		{"no roles", nil, "u1", NoPermission, false},
	}
	for _, tc := range cases {
		got := CheckPermission(tc.roles, tc.userID, adminRoles, developers, superAdminRoles)
		if got != tc.want {
			t.Errorf("%s: CheckPermission = %s, want %s", tc.name, got, tc.want)
		}
		if IsStaff(got) != tc.isStaff {
			t.Errorf("%s: IsStaff(%s) = %v, want %v", tc.name, got, IsStaff(got), tc.isStaff)
		}
	}
}
