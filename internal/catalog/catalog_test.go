package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brew-cli/internal/model"
)

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Pilsner", "pilsner"},
		{"  Cascade ", "cascade"},
		{"W-34/70", "w-34/70"},
		{"Weißbier", "weissbier"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := Default()

	g, err := c.Grain(ctx, "pilsner")
	require.NoError(t, err)
	assert.Equal(t, model.Grain{Name: "Pilsner", Potential: 1.037, Color: 2.0}, g)

	h, err := c.Hop(ctx, "MAGNUM")
	require.NoError(t, err)
	assert.Equal(t, 14.0, h.AlphaAcid)

	y, err := c.Yeast(ctx, "us-05")
	require.NoError(t, err)
	assert.Equal(t, model.YeastTypeAle, y.Type)
	assert.Equal(t, 22.0, y.MaxTemp)

	d, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, d.Grains, 5)
	assert.Len(t, d.Hops, 6)
	assert.Len(t, d.Yeasts, 4)
	assert.Equal(t, "Munich", d.Grains[0].Name)
	assert.NoError(t, c.Close())
}

func TestMemory_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := Default()

	_, err := c.Grain(ctx, "Unobtanium Malt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrIngredientNotFound))
	assert.Contains(t, err.Error(), "Unobtanium Malt")

	_, err = c.Hop(ctx, "nope")
	assert.True(t, errors.Is(err, model.ErrIngredientNotFound))
	_, err = c.Yeast(ctx, "nope")
	assert.True(t, errors.Is(err, model.ErrIngredientNotFound))
}

func TestMemory_HopFlavorsAreCopied(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := Default()

	h, err := c.Hop(ctx, "Cascade")
	require.NoError(t, err)
	h.Flavors[0] = "changed"

	again, err := c.Hop(ctx, "Cascade")
	require.NoError(t, err)
	assert.Equal(t, "Floral", again.Flavors[0])
}

func TestData_Validate(t *testing.T) {
	t.Parallel()

	okYeast := model.Yeast{Name: "Y", Type: model.YeastTypeAle, MinTemp: 15, MaxTemp: 22, Attenuation: 0.8}
	tests := []struct {
		name string
		data Data
		want string
	}{
		{"grain potential", Data{Grains: []model.Grain{{Name: "G", Potential: 1.0}}}, "invalid grain"},
		{"hop alpha", Data{Hops: []model.Hop{{Name: "H"}}}, "invalid hop"},
		{"yeast type", Data{Yeasts: []model.Yeast{{Name: "Y", Type: "kveik", MinTemp: 1, MaxTemp: 2, Attenuation: 0.5}}}, "unknown type"},
		{"yeast range", Data{Yeasts: []model.Yeast{{Name: "Y", Type: model.YeastTypeAle, MinTemp: 22, MaxTemp: 15, Attenuation: 0.5}}}, "min temp"},
		{"yeast attenuation", Data{Yeasts: []model.Yeast{{Name: "Y", Type: model.YeastTypeAle, MinTemp: 15, MaxTemp: 22, Attenuation: 1.2}}}, "attenuation"},
		{"valid", Data{Yeasts: []model.Yeast{okYeast}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.data.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("grains:\n  - name: Pilsner\n    potential: 1.037\n    colour: 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode yaml")
}

func TestReadSource_MemoryFromYAMLFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
grains:
  - name: Golden Promise
    potential: 1.038
    color: 2.5
hops:
  - name: Nelson Sauvin
    alpha_acid: 12.5
    flavors: ["White Wine", "Gooseberry"]
`), 0o644))

	d, err := ReadSource(context.Background(), nil, path, "")
	require.NoError(t, err)
	c, err := NewMemory(d)
	require.NoError(t, err)

	g, err := c.Grain(context.Background(), "golden promise")
	require.NoError(t, err)
	assert.Equal(t, 2.5, g.Color)

	h, err := c.Hop(context.Background(), "Nelson Sauvin")
	require.NoError(t, err)
	assert.Equal(t, []string{"White Wine", "Gooseberry"}, h.Flavors)

	_, err = ReadSource(context.Background(), nil, filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}

func TestDefaultData_FreshCopy(t *testing.T) {
	t.Parallel()

	a := DefaultData()
	a.Grains[0].Name = "changed"

	b := DefaultData()
	assert.NotEqual(t, "changed", b.Grains[0].Name)
	assert.Len(t, b.Grains, 5)
	assert.Len(t, b.Hops, 6)
	assert.Len(t, b.Yeasts, 4)
}

// Not parallel: swaps the embedded document.
func TestDefault_BadEmbeddedData(t *testing.T) {
	orig := defaultData
	t.Cleanup(func() { defaultData = orig })
	defaultData = []byte("grains: [unclosed")

	assert.Panics(t, func() { DefaultData() })
	assert.Panics(t, func() { Default() })
}
