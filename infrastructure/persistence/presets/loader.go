// Package presets serves the built-in domain schemas, optionally overridden
// by a YAML file that is reloaded when it changes on disk.
package presets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"lifelog/application/ports"
	"lifelog/domain/core/entities"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a presets file
type File struct {
	Domains []*entities.DomainSchema `yaml:"domains"`
}

// Loader implements ports.PresetSource
type Loader struct {
	path     string
	logger   *zap.Logger
	mu       sync.RWMutex
	current  []*entities.DomainSchema
	onChange []func([]*entities.DomainSchema)
}

var _ ports.PresetSource = (*Loader)(nil)

// NewLoader returns a loader over the built-in presets, or over the file at
// path when one is given
func NewLoader(path string, logger *zap.Logger) (*Loader, error) {
	l := &Loader{path: path, logger: logger}
	if path == "" {
		l.current = entities.PresetSchemas()
		return l, nil
	}

	schemas, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = schemas
	return l, nil
}

// Presets returns copies of the current preset schemas
func (l *Loader) Presets() []*entities.DomainSchema {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*entities.DomainSchema, len(l.current))
	for i, s := range l.current {
		out[i] = s.Clone()
	}
	return out
}

// OnChange registers a callback invoked after every successful reload
func (l *Loader) OnChange(fn func([]*entities.DomainSchema)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch reloads the file whenever it is written or replaced. Call the
// returned stop function to clean up. Without a file it is a no-op.
func (l *Loader) Watch() (stop func(), err error) {
	if l.path == "" {
		return func() {}, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("presets watcher: %w", err)
	}
	// Watch the directory so editors that save by rename are seen
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("presets watcher add %s: %w", l.path, err)
	}

	done := make(chan struct{})
	target := filepath.Clean(l.path)
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					if _, err := l.Reload(); err != nil {
						l.logger.Warn("Keeping previous presets", zap.String("path", l.path), zap.Error(err))
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("Presets watcher error", zap.Error(err))
			case <-done:
				return
			}
		}
	}()

	l.logger.Info("Watching presets file", zap.String("path", l.path))
	return func() { close(done) }, nil
}

// Reload forces an immediate re-read of the presets file
func (l *Loader) Reload() ([]*entities.DomainSchema, error) {
	schemas, err := l.load()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = schemas
	callbacks := make([]func([]*entities.DomainSchema), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()

	l.logger.Info("Reloaded presets", zap.Int("domains", len(schemas)))
	for _, fn := range callbacks {
		fn(schemas)
	}
	return schemas, nil
}

func (l *Loader) load() ([]*entities.DomainSchema, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", l.path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", l.path, err)
	}
	if err := validate(file.Domains); err != nil {
		return nil, fmt.Errorf("invalid presets %s: %w", l.path, err)
	}

	for i, s := range file.Domains {
		s.Kind = entities.DomainKindPreset
		if s.Order == 0 {
			s.Order = i
		}
	}
	return file.Domains, nil
}

func validate(schemas []*entities.DomainSchema) error {
	if len(schemas) == 0 {
		return fmt.Errorf("no domains defined")
	}
	seen := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		if s == nil || strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("domain without a name")
		}
		key := strings.ToLower(s.Name)
		if seen[key] {
			return fmt.Errorf("duplicate domain %q", s.Name)
		}
		seen[key] = true
		for _, f := range s.Fields {
			if f.ID == "" {
				return fmt.Errorf("domain %q has a field without an id", s.Name)
			}
		}
	}
	return nil
}
