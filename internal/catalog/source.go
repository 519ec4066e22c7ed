package catalog

import (
	"context"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/brew-cli/internal/fetcher"
	"github.com/sells-group/brew-cli/internal/model"
)

// Kind names one ingredient table.
type Kind string

const (
	KindGrains Kind = "grains"
	KindHops   Kind = "hops"
	KindYeasts Kind = "yeasts"
)

var columns = map[Kind][]string{
	KindGrains: {"name", "potential", "color"},
	KindHops:   {"name", "alpha_acid", "flavors"},
	KindYeasts: {"name", "type", "min_temp", "max_temp", "attenuation", "sensitivity"},
}

// Columns returns the header row used for kind in tabular files.
func Columns(kind Kind) []string {
	return append([]string(nil), columns[kind]...)
}

// ReadSource loads ingredient records from a local path or http(s) URL.
// YAML and JSON documents hold a full Data set. A CSV file holds one table,
// named by kind or, when kind is empty, by the file's base name. An XLSX
// workbook holds one table per sheet, named Grains, Hops and Yeasts.
func ReadSource(ctx context.Context, f fetcher.Fetcher, location string, kind Kind) (*Data, error) {
	b, err := fetcher.ReadAll(ctx, f, location)
	if err != nil {
		return nil, err
	}

	name := location
	if fetcher.IsRemote(location) {
		if u, err := url.Parse(location); err == nil {
			name = u.Path
		}
	}
	ext := strings.ToLower(path.Ext(name))

	switch ext {
	case ".yaml", ".yml", ".json":
		return Parse(b)
	case ".csv":
		if kind == "" {
			kind = Kind(Key(strings.TrimSuffix(path.Base(name), path.Ext(name))))
		}
		rows, err := fetcher.ReadCSV(strings.NewReader(string(b)))
		if err != nil {
			return nil, err
		}
		d := &Data{}
		if err := d.addRows(kind, rows); err != nil {
			return nil, err
		}
		return d, d.Validate()
	case ".xlsx":
		sheets, err := fetcher.ReadXLSX(b)
		if err != nil {
			return nil, err
		}
		d := &Data{}
		for sheet, rows := range sheets {
			k := Kind(Key(sheet))
			if _, ok := columns[k]; !ok {
				continue
			}
			if err := d.addRows(k, rows); err != nil {
				return nil, eris.Wrapf(err, "sheet %s", sheet)
			}
		}
		sortData(d)
		return d, d.Validate()
	default:
		return nil, eris.Errorf("catalog: unsupported source format %q", ext)
	}
}

// Rows renders the records of kind as a header row followed by one row per
// record, the layout ReadSource accepts.
func (d *Data) Rows(kind Kind) [][]string {
	out := [][]string{Columns(kind)}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch kind {
	case KindGrains:
		for _, g := range d.Grains {
			out = append(out, []string{g.Name, f(g.Potential), f(g.Color)})
		}
	case KindHops:
		for _, h := range d.Hops {
			out = append(out, []string{h.Name, f(h.AlphaAcid), strings.Join(h.Flavors, "; ")})
		}
	case KindYeasts:
		for _, y := range d.Yeasts {
			out = append(out, []string{y.Name, string(y.Type), f(y.MinTemp), f(y.MaxTemp), f(y.Attenuation), f(y.Sensitivity)})
		}
	}
	return out
}

func (d *Data) addRows(kind Kind, rows [][]string) error {
	want, ok := columns[kind]
	if !ok {
		return eris.Errorf("catalog: unknown table %q", kind)
	}
	if len(rows) == 0 {
		return nil
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[Key(h)] = i
	}
	for _, col := range want {
		if _, ok := idx[col]; !ok && col != "flavors" && col != "sensitivity" {
			return eris.Errorf("catalog: %s table is missing column %q", kind, col)
		}
	}

	for n, row := range rows[1:] {
		line := n + 2
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		num := func(col string) (float64, error) {
			s := cell(col)
			if s == "" && col == "sensitivity" {
				return 0, nil
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, eris.Wrapf(err, "catalog: %s row %d column %s", kind, line, col)
			}
			return v, nil
		}
		if cell("name") == "" {
			continue
		}

		switch kind {
		case KindGrains:
			g := model.Grain{Name: cell("name")}
			var err error
			if g.Potential, err = num("potential"); err != nil {
				return err
			}
			if g.Color, err = num("color"); err != nil {
				return err
			}
			d.Grains = append(d.Grains, g)
		case KindHops:
			h := model.Hop{Name: cell("name")}
			var err error
			if h.AlphaAcid, err = num("alpha_acid"); err != nil {
				return err
			}
			for _, fl := range strings.FieldsFunc(cell("flavors"), func(r rune) bool { return r == ';' || r == '|' }) {
				if fl = strings.TrimSpace(fl); fl != "" {
					h.Flavors = append(h.Flavors, fl)
				}
			}
			d.Hops = append(d.Hops, h)
		case KindYeasts:
			y := model.Yeast{Name: cell("name"), Type: model.YeastType(strings.ToLower(cell("type")))}
			var err error
			if y.MinTemp, err = num("min_temp"); err != nil {
				return err
			}
			if y.MaxTemp, err = num("max_temp"); err != nil {
				return err
			}
			if y.Attenuation, err = num("attenuation"); err != nil {
				return err
			}
			if y.Sensitivity, err = num("sensitivity"); err != nil {
				return err
			}
			d.Yeasts = append(d.Yeasts, y)
		}
	}
	return nil
}
