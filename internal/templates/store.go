// Package templates implements the in-memory notification template store.
//
// Templates are Handlebars (.hbs) files in a single directory. They are
// compiled once at startup and kept in memory so the per-message hot path
// pays no disk I/O or parse cost; the set is small and rarely changes at
// runtime. The store is read-only between Load calls, so concurrent handler
// access needs no coordination beyond the swap lock.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mailgun/raymond/v2"

	"dishpatch/internal/types"
)

// templateExt is the file extension recognized by Load.
const templateExt = ".hbs"

// Store owns the compiled template set. It is constructed explicitly and
// injected into the dispatch loop, so tests can run isolated stores with
// distinct template directories.
type Store struct {
	dir    string
	logger types.Logger

	mu       sync.RWMutex
	compiled map[string]*raymond.Template
}

// NewStore creates an empty Store reading from dir. Call Load before
// rendering.
func NewStore(dir string, logger types.Logger) *Store {
	return &Store{
		dir:      dir,
		logger:   logger,
		compiled: make(map[string]*raymond.Template),
	}
}

// Load scans the template directory for .hbs files and compiles each into
// the store, keyed by filename stem (text before the first dot). Any
// previously loaded templates are discarded, so a second Load reflects the
// directory's current contents exactly. A directory with zero matching files
// yields an empty store, not an error.
func (s *Store) Load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return types.NewAppError(types.ErrCodeTemplateParse,
			fmt.Sprintf("failed to read template directory %q", s.dir), err)
	}

	compiled := make(map[string]*raymond.Template)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateExt) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		source, err := os.ReadFile(path)
		if err != nil {
			return types.NewAppError(types.ErrCodeTemplateParse,
				fmt.Sprintf("failed to read template file %q", path), err)
		}

		tmpl, err := raymond.Parse(string(source))
		if err != nil {
			return types.NewAppError(types.ErrCodeTemplateParse,
				fmt.Sprintf("failed to compile template %q", entry.Name()), err)
		}

		compiled[stem(entry.Name())] = tmpl
	}

	s.mu.Lock()
	s.compiled = compiled
	s.mu.Unlock()

	s.logger.Info("templates loaded", "dir", s.dir, "count", len(compiled))
	return nil
}

// Render looks up the compiled template by name and executes it with data,
// returning the rendered string. Returns a template_not_found AppError when
// name is not in the store. Lookup and render are synchronous and have no
// side effects.
func (s *Store) Render(name string, data any) (string, error) {
	s.mu.RLock()
	tmpl, ok := s.compiled[name]
	s.mu.RUnlock()

	if !ok {
		return "", types.NewTemplateNotFound(name)
	}

	out, err := tmpl.Exec(data)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeTemplateRender,
			fmt.Sprintf("failed to render template %q", name), err)
	}
	return out, nil
}

// Len returns the number of loaded templates.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.compiled)
}

// Names returns the loaded template keys, for logging and the health probe.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.compiled))
	for name := range s.compiled {
		names = append(names, name)
	}
	return names
}

// stem returns the portion of a filename before the first dot. This is the
// wire contract for template lookup keys: "order_confirm.hbs" -> "order_confirm",
// and "receipt.v2.hbs" -> "receipt".
func stem(filename string) string {
	if idx := strings.Index(filename, "."); idx >= 0 {
		return filename[:idx]
	}
	return filename
}
