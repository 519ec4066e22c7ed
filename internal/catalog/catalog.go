// Package catalog provides name-based lookup of grain, hop and yeast records.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"

	"github.com/sells-group/brew-cli/internal/model"
)

// Catalog looks up ingredient records by name. Unknown names return an error
// wrapping model.ErrIngredientNotFound. Implementations are read-only after
// construction and safe for concurrent use.
type Catalog interface {
	Grain(ctx context.Context, name string) (model.Grain, error)
	Hop(ctx context.Context, name string) (model.Hop, error)
	Yeast(ctx context.Context, name string) (model.Yeast, error)
	List(ctx context.Context) (*Data, error)
	Close() error
}

// Data is a full set of ingredient records, as stored in catalog files.
type Data struct {
	Grains []model.Grain `json:"grains" yaml:"grains"`
	Hops   []model.Hop   `json:"hops" yaml:"hops"`
	Yeasts []model.Yeast `json:"yeasts" yaml:"yeasts"`
}

// Validate checks every record for the invariants the calculators rely on.
func (d *Data) Validate() error {
	for _, g := range d.Grains {
		if g.Name == "" || g.Potential <= 1 || g.Color < 0 {
			return eris.Errorf("catalog: invalid grain %q", g.Name)
		}
	}
	for _, h := range d.Hops {
		if h.Name == "" || h.AlphaAcid <= 0 {
			return eris.Errorf("catalog: invalid hop %q", h.Name)
		}
	}
	for _, y := range d.Yeasts {
		switch {
		case y.Name == "":
			return eris.New("catalog: yeast without name")
		case !y.Type.Valid():
			return eris.Errorf("catalog: yeast %q has unknown type %q", y.Name, y.Type)
		case y.MinTemp >= y.MaxTemp:
			return eris.Errorf("catalog: yeast %q min temp must be below max temp", y.Name)
		case y.Attenuation <= 0 || y.Attenuation >= 1:
			return eris.Errorf("catalog: yeast %q attenuation must be in (0,1)", y.Name)
		case y.Sensitivity < 0:
			return eris.Errorf("catalog: yeast %q sensitivity must be non-negative", y.Name)
		}
	}
	return nil
}

// Key normalizes an ingredient name for lookup: trimmed and case-folded.
func Key(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func notFound(kind, name string) error {
	return eris.Wrapf(model.ErrIngredientNotFound, "%s %q", kind, name)
}

// Memory is an in-memory Catalog.
type Memory struct {
	grains map[string]model.Grain
	hops   map[string]model.Hop
	yeasts map[string]model.Yeast
}

// NewMemory indexes d. Later records replace earlier ones with the same key.
func NewMemory(d *Data) (*Memory, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	m := &Memory{
		grains: make(map[string]model.Grain, len(d.Grains)),
		hops:   make(map[string]model.Hop, len(d.Hops)),
		yeasts: make(map[string]model.Yeast, len(d.Yeasts)),
	}
	for _, g := range d.Grains {
		m.grains[Key(g.Name)] = g
	}
	for _, h := range d.Hops {
		m.hops[Key(h.Name)] = h
	}
	for _, y := range d.Yeasts {
		m.yeasts[Key(y.Name)] = y
	}
	return m, nil
}

func (m *Memory) Grain(_ context.Context, name string) (model.Grain, error) {
	g, ok := m.grains[Key(name)]
	if !ok {
		return model.Grain{}, notFound("grain", name)
	}
	return g, nil
}

func (m *Memory) Hop(_ context.Context, name string) (model.Hop, error) {
	h, ok := m.hops[Key(name)]
	if !ok {
		return model.Hop{}, notFound("hop", name)
	}
	h.Flavors = append([]string(nil), h.Flavors...)
	return h, nil
}

func (m *Memory) Yeast(_ context.Context, name string) (model.Yeast, error) {
	y, ok := m.yeasts[Key(name)]
	if !ok {
		return model.Yeast{}, notFound("yeast", name)
	}
	return y, nil
}

// List returns every record sorted by name.
func (m *Memory) List(_ context.Context) (*Data, error) {
	d := &Data{}
	for _, g := range m.grains {
		d.Grains = append(d.Grains, g)
	}
	for _, h := range m.hops {
		d.Hops = append(d.Hops, h)
	}
	for _, y := range m.yeasts {
		d.Yeasts = append(d.Yeasts, y)
	}
	sortData(d)
	return d, nil
}

func (m *Memory) Close() error { return nil }

func sortData(d *Data) {
	sort.Slice(d.Grains, func(i, j int) bool { return d.Grains[i].Name < d.Grains[j].Name })
	sort.Slice(d.Hops, func(i, j int) bool { return d.Hops[i].Name < d.Hops[j].Name })
	sort.Slice(d.Yeasts, func(i, j int) bool { return d.Yeasts[i].Name < d.Yeasts[j].Name })
}
