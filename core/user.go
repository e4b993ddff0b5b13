package core

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account as seen by the authentication core
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string // argon2id encoded hash
	Role         Role
	Active       bool
	CreatedAt    time.Time
}

// Principal returns the identity the user authenticates as.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}
