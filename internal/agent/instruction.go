package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hal9000y/mail-copilot/internal/observability"
)

// Store loads agent instruction text by kind. Lookup order per kind:
// operator file <kind>_instruction.txt, shipped <kind>_instruction.default.txt,
// then the built-in fallback string. Every instruction gets the current date
// prepended so agents can reason about "today".
type Store struct {
	dir      string
	defaults map[string]string
	now      func() time.Time
}

// NewStore creates a Store rooted at dir with built-in fallbacks per kind.
func NewStore(dir string, defaults map[string]string) *Store {
	return &Store{dir: dir, defaults: defaults, now: time.Now}
}

// Instruction returns the instruction text for an agent kind.
func (s *Store) Instruction(kind string) string {
	prefix := fmt.Sprintf("TODAY IS %s.\n\n", s.now().Format("2006-01-02"))

	for _, name := range []string{kind + "_instruction.txt", kind + "_instruction.default.txt"} {
		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(raw)); text != "" {
			return prefix + text
		}
	}

	fallback, ok := s.defaults[kind]
	if !ok {
		fallback = "You are a helpful assistant."
	}
	observability.Logger().Warn("instruction file missing, using built-in default", "kind", kind)

	return prefix + fallback
}
