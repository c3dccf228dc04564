package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The db tags let sqlx scan rows straight into the struct; handlers
// build their own response types so the hash never leaves the server.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name given at sign-up.
//	Email        – unique, lower-cased email address (the identity key for matches).
//	PasswordHash – bcrypt hashed password.
//	Role         – PLAYER or ADMIN.
//	IsActive     – whether the account may sign in.
type User struct {
	ID           uint64    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token is stored.
type RefreshToken struct {
	ID        uint64     `db:"id"`
	UserID    uint64     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}
