package domain

import "github.com/google/uuid"

type ID string

// NewID generates a random, collision-resistant product identifier.
func NewID() ID {
	return ID(uuid.New().String())
}

type Event interface {
	GetName() string
	GetEntityName() string
}
