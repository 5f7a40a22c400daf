package seeding

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site/memory"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newManager(t *testing.T) *site.Manager {
	return site.NewManager(memory.New(), zaptest.NewLogger(t), site.Config{})
}

func TestParseSeedJSONEnvelope(t *testing.T) {
	seed, err := ParseSeed("blog.json", []byte(`{"title":"Blog","root":{"type":"div","children":["hi"]}}`), blueprint.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Blog", seed.Title)
	assert.Equal(t, "div", seed.Root.Tag)
	assert.Equal(t, []blueprint.Node{blueprint.Text("hi")}, seed.Root.Children)
}

func TestParseSeedBareNodeTitledFromFile(t *testing.T) {
	seed, err := ParseSeed("/seeds/coffee-shop_landing.json", []byte(`{"type":"main"}`), blueprint.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Coffee Shop Landing", seed.Title)
	assert.Equal(t, "main", seed.Root.Tag)
}

func TestParseSeedYAMLKeepsAttributeOrder(t *testing.T) {
	doc := `
title: Phoenix
root:
  type: p
  props:
    zIndex: 1
    id: first
    className: lead
  children:
    - hello
`
	seed, err := ParseSeed("phoenix.yaml", []byte(doc), blueprint.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Phoenix", seed.Title)

	names := make([]string, 0, len(seed.Root.Attributes))
	for _, a := range seed.Root.Attributes {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"zIndex", "id", "className"}, names)
}

func TestParseSeedRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, path, doc string
	}{
		{"bad json", "a.json", `{"type":`},
		{"bad yaml", "a.yaml", "root: [unclosed"},
		{"missing type", "a.json", `{"root":{"props":{}}}`},
		{"non-string title", "a.json", `{"title":5,"root":{"type":"div"}}`},
		{"text root", "a.json", `"just text"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed(tt.path, []byte(tt.doc), blueprint.ParseOptions{})
			assert.Error(t, err)
		})
	}
}

func TestParseSeedHonoursMaxBytes(t *testing.T) {
	_, err := ParseSeed("a.json", []byte(`{"type":"div","children":["long enough"]}`), blueprint.ParseOptions{MaxBytes: 10})
	assert.Error(t, err)
}

func TestLoadWalksDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"type":"div"}`)
	writeFile(t, dir, "nested/b.yml", "type: section\n")
	writeFile(t, dir, "nested/deeper/c.bp", `{"title":"C","blueprint":{"type":"main"}}`)
	writeFile(t, dir, "broken.json", `{"type":`)
	writeFile(t, dir, "notes.txt", "ignored")

	seeds, err := NewSeeder(nil, dir, blueprint.ParseOptions{}, zaptest.NewLogger(t)).Load()
	require.NoError(t, err)
	require.Len(t, seeds, 3)
	assert.Equal(t, "div", seeds[0].Root.Tag)
	assert.Equal(t, "section", seeds[1].Root.Tag)
	assert.Equal(t, "C", seeds[2].Title)
}

func TestLoadMissingDirectory(t *testing.T) {
	seeds, err := NewSeeder(nil, filepath.Join(t.TempDir(), "absent"), blueprint.ParseOptions{}, nil).Load()
	require.NoError(t, err)
	assert.Empty(t, seeds)
}

func TestSeedDefaults(t *testing.T) {
	manager := newManager(t)
	seeder := NewSeeder(manager, "", blueprint.DefaultParseOptions(), zaptest.NewLogger(t))

	n, err := seeder.Seed(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := manager.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Project Phoenix Showcase", list[0].Title)
	assert.Equal(t, "My Personal Blog", list[1].Title)
}

func TestSeedIsIdempotent(t *testing.T) {
	manager := newManager(t)
	seeder := NewSeeder(manager, "", blueprint.DefaultParseOptions(), zaptest.NewLogger(t))

	_, err := seeder.Seed(context.Background(), "user-1")
	require.NoError(t, err)
	n, err := seeder.Seed(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := manager.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRepositorySeedFilesParse(t *testing.T) {
	seeds, err := NewSeeder(nil, filepath.Join("..", "..", "..", "seeds"), blueprint.DefaultParseOptions(), nil).Load()
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, "My Personal Blog", seeds[0].Title)
	assert.Equal(t, "Project Phoenix Showcase", seeds[1].Title)
}

func TestPlaceholderIsValid(t *testing.T) {
	require.NoError(t, blueprint.Validate(Placeholder()))
	assert.Equal(t, "div", Placeholder().Tag)
}
