package domain

import "time"

// Role is the sole authorization axis. Customers see only their own
// tickets and public comments; workers and admins see and mutate
// everything, with admin gating the configuration surfaces.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleCustomer || r == RoleWorker || r == RoleAdmin
}

// Profile is an authenticated account.
type Profile struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasWorkerAccess reports whether the profile can act on any ticket.
func (p *Profile) HasWorkerAccess() bool {
	return p != nil && (p.Role == RoleWorker || p.Role == RoleAdmin)
}

// IsAdmin reports whether the profile can use admin surfaces.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
