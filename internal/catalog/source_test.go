package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/brew-cli/internal/fetcher"
	"github.com/sells-group/brew-cli/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadSource_CSV(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "hops.csv", "Name,Alpha_Acid,Flavors\nSaaz,3.5,Noble; Herbal\nNugget,13,\n")

	d, err := ReadSource(context.Background(), nil, path, "")
	require.NoError(t, err)
	require.Len(t, d.Hops, 2)
	assert.Equal(t, model.Hop{Name: "Saaz", AlphaAcid: 3.5, Flavors: []string{"Noble", "Herbal"}}, d.Hops[0])
	assert.Empty(t, d.Hops[1].Flavors)
}

func TestReadSource_CSVExplicitKind(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "export.csv", "name,type,min_temp,max_temp,attenuation\nK-97,Ale,15,20,0.8\n")

	d, err := ReadSource(context.Background(), nil, path, KindYeasts)
	require.NoError(t, err)
	require.Len(t, d.Yeasts, 1)
	assert.Equal(t, model.YeastTypeAle, d.Yeasts[0].Type)
	assert.Zero(t, d.Yeasts[0].Sensitivity)
}

func TestReadSource_CSVErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := ReadSource(ctx, nil, writeFile(t, "grains.csv", "name,color\nPilsner,2\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "potential"`)

	_, err = ReadSource(ctx, nil, writeFile(t, "grains.csv", "name,potential,color\nPilsner,high,2\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grains row 2 column potential")

	_, err = ReadSource(ctx, nil, writeFile(t, "adjuncts.csv", "name\nRice\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown table")

	_, err = ReadSource(ctx, nil, writeFile(t, "grains.txt", "x"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source format")
}

func TestReadSource_XLSXRoundTrip(t *testing.T) {
	t.Parallel()

	f := xlsx.NewFile()
	src := DefaultData()
	for _, kind := range []Kind{KindGrains, KindHops, KindYeasts} {
		sheet, err := f.AddSheet(string(kind))
		require.NoError(t, err)
		for _, rowData := range src.Rows(kind) {
			row := sheet.AddRow()
			for _, v := range rowData {
				row.AddCell().SetString(v)
			}
		}
	}
	_, err := f.AddSheet("Notes")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, f.Save(path))

	d, err := ReadSource(context.Background(), nil, path, "")
	require.NoError(t, err)

	want := DefaultData()
	sortData(want)
	assert.Equal(t, want, d)
}

func TestReadSource_YAMLOverHTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("grains:\n  - name: Maris Otter\n    potential: 1.038\n    color: 3\n")) //nolint:errcheck
	}))
	defer srv.Close()

	d, err := ReadSource(context.Background(), fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), srv.URL+"/catalog.yaml?v=2", "")
	require.NoError(t, err)
	require.Len(t, d.Grains, 1)
	assert.Equal(t, "Maris Otter", d.Grains[0].Name)
}

func TestData_Rows(t *testing.T) {
	t.Parallel()

	d := &Data{Hops: []model.Hop{{Name: "Cascade", AlphaAcid: 7, Flavors: []string{"Floral", "Citrus"}}}}
	assert.Equal(t, [][]string{
		{"name", "alpha_acid", "flavors"},
		{"Cascade", "7", "Floral; Citrus"},
	}, d.Rows(KindHops))
}
