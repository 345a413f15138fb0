package domain

// Role represents a principal's role in the system
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether s is one of the canonical role values.
// The legacy "HR" spelling of the admin role is not accepted.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Document is one employee record returned by the retrieval backend.
type Document struct {
	Text       string
	EmployeeID string
	Department string
	RecordKind string
	Score      float64
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
