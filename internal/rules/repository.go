package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/panverse/rules-agent/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedContentType signals a lookup for a content type with no
// registered rule definition. This is a caller or configuration bug, never a
// content-quality issue, and must not be treated as "no rules, pass".
var ErrUnsupportedContentType = errors.New("unsupported content type")

// Repository is the immutable, versioned mapping from content type to rule
// definition. It is built once by Load and read-only afterwards, so
// concurrent validations need no locking.
type Repository struct {
	defs map[models.RuleCategory]*Definition
}

// NewRepository validates every definition and builds a repository from them.
// Each registered category must map to exactly one definition.
func NewRepository(defs []*Definition) (*Repository, error) {
	byCategory := make(map[models.RuleCategory]*Definition, len(defs))
	for _, def := range defs {
		if err := def.validate(); err != nil {
			return nil, err
		}
		if _, dup := byCategory[def.Category]; dup {
			return nil, configErrorf("duplicate definition for category %q", def.Category)
		}
		byCategory[def.Category] = def
	}
	for _, category := range models.Categories() {
		if _, ok := byCategory[category]; !ok {
			return nil, configErrorf("no rule definition for category %q", category)
		}
	}
	return &Repository{defs: byCategory}, nil
}

// Load reads one <category>.yaml per registered category from dir. Any
// missing, malformed, or inconsistent rule source fails the whole load;
// there are no partial repositories.
func Load(dir string) (*Repository, error) {
	defs := make([]*Definition, 0, len(models.Categories()))
	for _, category := range models.Categories() {
		path := filepath.Join(dir, string(category)+".yaml")
		def, err := loadDefinition(path)
		if err != nil {
			return nil, err
		}
		if def.Category != category {
			return nil, configErrorf("%s declares category %q, want %q", path, def.Category, category)
		}
		defs = append(defs, def)
	}
	return NewRepository(defs)
}

func loadDefinition(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, configErrorf("rule source %s: %v", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, configErrorf("rule source %s: %v", path, err)
	}
	return &def, nil
}

// Get returns the rule definition for a content type, or
// ErrUnsupportedContentType wrapped with the requested tag.
func (r *Repository) Get(category models.RuleCategory) (*Definition, error) {
	def, ok := r.defs[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, category)
	}
	return def, nil
}

// Categories returns the registered categories in fixed order.
func (r *Repository) Categories() []models.RuleCategory {
	return models.Categories()
}

// Store holds the active repository behind an atomic pointer. Reload builds
// a complete new repository and swaps it in; in-flight validations keep the
// snapshot they started with and never observe a half-updated rule set.
type Store struct {
	current atomic.Pointer[Repository]
}

func NewStore(repo *Repository) *Store {
	s := &Store{}
	s.current.Store(repo)
	return s
}

// Current returns the active repository snapshot.
func (s *Store) Current() *Repository {
	return s.current.Load()
}

// Reload loads a fresh repository from dir and swaps it in atomically. On
// failure the previous repository stays active.
func (s *Store) Reload(dir string) error {
	repo, err := Load(dir)
	if err != nil {
		return err
	}
	s.current.Store(repo)
	return nil
}
