package model

// Roles carried in the access token.
const (
	RolePlayer = "PLAYER"
	RoleAdmin  = "ADMIN"
)

// Session identifies the caller of an operation.  It is built from a verified
// access token and passed explicitly to every service method that needs to
// know who is asking.
type Session struct {
	UserID uint64
	Email  string
	Role   string
}

// IsAdmin reports whether the session carries the ADMIN role.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
