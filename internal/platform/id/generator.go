package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// PrefixedGenerator returns "<prefix><uuid v4>" ids, e.g. game_8c1f....
type PrefixedGenerator struct {
	prefix string
}

func NewPrefixedGenerator(prefix string) *PrefixedGenerator {
	return &PrefixedGenerator{prefix: prefix}
}

func (g *PrefixedGenerator) NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}

	return g.prefix + value.String(), nil
}
