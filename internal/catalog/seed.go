package catalog

import (
	_ "embed"
	"fmt"

	"github.com/kamusis/acco/internal/directory"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed returns the built-in listing used when no markup or catalog is
// configured.
func Seed() []directory.Profile {
	profiles, err := parseYAML(seedYAML)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded seed: %v", err))
	}
	profiles, err = prepare(profiles)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded seed: %v", err))
	}
	return profiles
}
