package search

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Config is the search budget. Depth is always required; Timeout and Nodes
// optionally cut the search short, in which case the engine searches depth
// 1, 2, ... up to Depth and answers with the deepest iteration it finished.
type Config struct {
	Depth   int           `json:"depth"`
	Timeout time.Duration `json:"timeout"`
	Nodes   int           `json:"nodes"`
}

func DefaultConfig() Config {
	return Config{
		Depth: 3,
	}
}

func (c Config) IsValid() bool {
	return c.Depth >= 1 && c.Timeout >= 0 && c.Nodes >= 0
}

// Bounded reports whether the search may stop before reaching Depth.
func (c Config) Bounded() bool {
	return c.Timeout > 0 || c.Nodes > 0
}

// Difficulty is the user facing strength setting of a computer opponent.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

var difficultyNames = [...]string{Easy: "easy", Medium: "medium", Hard: "hard"}

// Config maps the difficulty to a search budget.
func (d Difficulty) Config() Config {
	switch d {
	case Easy:
		return Config{Depth: 1}
	case Hard:
		return Config{Depth: 4, Timeout: 5 * time.Second}
	}
	return Config{Depth: 2}
}

func (d Difficulty) String() string {
	if d < 0 || int(d) >= len(difficultyNames) {
		return "unknown"
	}
	return difficultyNames[d]
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if d < 0 || int(d) >= len(difficultyNames) {
		return nil, errors.Errorf("invalid difficulty %d", d)
	}
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDifficulty accepts "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	for i, name := range difficultyNames {
		if strings.EqualFold(s, name) {
			return Difficulty(i), nil
		}
	}
	return Medium, errors.Errorf("unknown difficulty %q", s)
}
