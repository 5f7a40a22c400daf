// Package seeding loads starter blueprints for an account at startup.
//
// Seed files are JSON (.json, .bp) or YAML (.yaml, .yml), found anywhere
// under the seed directory. A file is either a bare blueprint node, titled
// after the file name, or an envelope:
//
//	title: My Personal Blog
//	root:
//	  type: div
//	  children: [...]
package seeding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
)

// Pattern matches seed files relative to the seed directory
const Pattern = "**/*.{json,bp,yaml,yml}"

// Seed is one parsed seed file
type Seed struct {
	Title string
	Root  *blueprint.Element
	Path  string
}

// Seeder handles loading starter blueprints from disk
type Seeder struct {
	manager *site.Manager
	dir     string
	opts    blueprint.ParseOptions
	logger  *zap.Logger
}

// NewSeeder creates a seeder. An empty dir seeds the built-in defaults.
func NewSeeder(manager *site.Manager, dir string, opts blueprint.ParseOptions, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		manager: manager,
		dir:     dir,
		opts:    opts,
		logger:  logger.Named("seeding"),
	}
}

// Seed stores the starter blueprints for ownerID. Owners that already have
// blueprints are left alone, so restarts against a persistent store don't
// duplicate anything. Files that fail to parse are logged and skipped.
func (s *Seeder) Seed(ctx context.Context, ownerID string) (int, error) {
	existing, err := s.manager.List(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		s.logger.Debug("Owner already has blueprints, skipping seed",
			zap.String("owner_id", ownerID),
			zap.Int("count", len(existing)))
		return 0, nil
	}

	seeds, err := s.Load()
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, seed := range seeds {
		if _, err := s.manager.Create(ctx, ownerID, seed.Title, seed.Root); err != nil {
			s.logger.Warn("Failed to store seed", zap.String("path", seed.Path), zap.Error(err))
			continue
		}
		loaded++
	}

	s.logger.Info("Seeding complete",
		zap.String("owner_id", ownerID),
		zap.Int("loaded", loaded),
		zap.Int("failed", len(seeds)-loaded))
	return loaded, nil
}

// Load reads every seed file under the directory, in path order. Without a
// directory it returns the built-in defaults.
func (s *Seeder) Load() ([]Seed, error) {
	if s.dir == "" {
		return Defaults(), nil
	}
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.logger.Warn("Seed directory not found", zap.String("dir", s.dir))
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(s.dir), Pattern)
	if err != nil {
		return nil, fmt.Errorf("seed glob: %w", err)
	}
	sort.Strings(matches)

	seeds := make([]Seed, 0, len(matches))
	for _, rel := range matches {
		path := filepath.Join(s.dir, filepath.FromSlash(rel))
		seed, err := s.loadFile(path)
		if err != nil {
			s.logger.Warn("Failed to load seed", zap.String("path", path), zap.Error(err))
			continue
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

func (s *Seeder) loadFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, err
	}
	return ParseSeed(path, data, s.opts)
}

// ParseSeed parses one seed document. YAML is converted to JSON with key
// order preserved, then goes through the regular blueprint parser.
func ParseSeed(path string, data []byte, opts blueprint.ParseOptions) (Seed, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return Seed{}, fmt.Errorf("yaml: %w", err)
		}
		data = converted
	}

	v, err := blueprint.Decode(data, opts)
	if err != nil {
		return Seed{}, err
	}

	seed := Seed{Title: titleFromPath(path), Path: path}
	if obj, ok := v.(*blueprint.Object); ok && isEnvelope(obj) {
		if t, ok := obj.Get("title"); ok {
			title, ok := t.(string)
			if !ok {
				return Seed{}, fmt.Errorf("title must be a string, got %s", blueprint.TypeName(t))
			}
			seed.Title = title
		}
		v, _ = obj.Get("root")
		if v == nil {
			v, _ = obj.Get("blueprint")
		}
	}

	root, err := blueprint.RootFromValue(v, opts)
	if err != nil {
		return Seed{}, err
	}
	seed.Root = root
	return seed, nil
}

// isEnvelope reports whether obj wraps a node rather than being one
func isEnvelope(obj *blueprint.Object) bool {
	if _, ok := obj.Get("type"); ok {
		return false
	}
	if _, ok := obj.Get("tag"); ok {
		return false
	}
	_, root := obj.Get("root")
	_, bp := obj.Get("blueprint")
	return root || bp
}

func titleFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
