// Package gameid generates and validates the opaque identifiers that name a
// game session. IDs are UUIDv7 in canonical form, so they sort by creation
// time.
package gameid

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Generator creates game IDs from a configurable source of randomness
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto/rand.
func NewGenerator(rand io.Reader) *Generator {
	return &Generator{rand: rand}
}

// Generate creates a new game ID using crypto/rand
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new game ID using the generator's source
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.rand != nil {
		id, err = uuid.NewV7FromReader(g.rand)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("failed to generate game ID: " + err.Error())
	}
	return id.String()
}

// Validate checks that id is a UUID in canonical form. Any version is
// accepted so that a well-formed but unknown id is reported as missing rather
// than malformed.
func Validate(id string) error {
	if len(id) != 36 {
		return fmt.Errorf("game ID must be exactly 36 characters, got %d", len(id))
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid game ID: %w", err)
	}
	return nil
}
