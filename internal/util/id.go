package util

import "github.com/google/uuid"

// NewID gera um identificador opaco para sessões e workspaces.
func NewID() string {
	return uuid.NewString()
}
