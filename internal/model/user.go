package model

import "time"

// Role controls what a user may do in the admin interface.
type Role string

// User roles.
const (
	RoleAdmin    Role = "admin"
	RoleApprover Role = "approver"
	RoleClerk    Role = "clerk"
	RoleViewer   Role = "viewer"
)

// User is an account holder in the budget system.
type User struct {
	LastLogin time.Time
	ID        string
	Name      string
	Email     string
	Phone     string
	Role      Role
	Active    bool
}
