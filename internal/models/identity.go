package models

import "github.com/golang-jwt/jwt/v5"

// UserRole is the platform role asserted by the identity provider.
type UserRole string

const (
	RoleMainAdmin UserRole = "main_admin"
	RoleDeptAdmin UserRole = "dept_admin"
	RoleStaff     UserRole = "staff"
)

// JWTClaims is the verified identity attached to a request.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	Role         UserRole `json:"role"`
	DepartmentID string   `json:"department_id,omitempty"`
	StaffID      string   `json:"staff_id,omitempty"`
	Email        string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the caller administers at least one department.
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && (c.Role == RoleMainAdmin || c.Role == RoleDeptAdmin)
}

// CanAccessDepartment applies the tenant rule: main admins see everything,
// everyone else only their own department.
func (c *JWTClaims) CanAccessDepartment(departmentID string) bool {
	if c == nil {
		return false
	}
	if c.Role == RoleMainAdmin {
		return true
	}
	return c.DepartmentID != "" && c.DepartmentID == departmentID
}
