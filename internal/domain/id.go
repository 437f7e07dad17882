package domain

import "github.com/google/uuid"

// NewID returns a new random UUID string for record identifiers.
func NewID() string {
	return uuid.NewString()
}
