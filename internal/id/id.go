// Package id provides unique identifier generation for sessions, frames
// and categories.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// New creates a new unique identifier: a UUIDv4 rendered as 32 hex digits
// without dashes, so it is safe inside file names and URL path segments.
// Example: 3f2a9c41d0b64f7e8a12cc90be5d7701
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
