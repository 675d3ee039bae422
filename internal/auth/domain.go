package auth

import (
	"time"

	"github.com/warungpos/warungpos/internal/shared"
)

// User represents a staff member able to sign in.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         shared.Role
	IsActive     bool
	CreatedAt    time.Time
}

// Actor converts the user into its request-scoped identity.
func (u User) Actor() shared.Actor {
	return shared.Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}
