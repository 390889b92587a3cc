package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewObjectID returns a random 24 hex character identifier, the format the
// platform uses for nested document ids.
func NewObjectID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:24]
}
