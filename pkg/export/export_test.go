package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ChicagoDave/neededschools/pkg/demand"
)

func square(x0, y0, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size}, {x0, y0},
	}}
}

func fixture() ([]demand.Region, []demand.RegionResult) {
	regions := []demand.Region{
		{Name: "Alpha", Geometry: square(0, 0, 10)},
		{Name: "Bravo", Geometry: square(10, 0, 10)},
		{Name: "Charlie", Geometry: square(0, 10, 10)},
	}
	results := []demand.RegionResult{
		{Region: "Alpha", Population: 2500, Required: 2, Existing: 3, Additional: 0},
		{Region: "Bravo", Err: &demand.RegionError{Region: "Bravo", Field: "population", Err: demand.ErrInvalidInput}},
		{Region: "Charlie", Population: 4600, Required: 5, Existing: 1, Additional: 4},
	}
	return regions, results
}

func TestWriteCSV(t *testing.T) {
	_, results := fixture()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results, Options{}))

	want := "Region,Schools Needed,Current Schools,Additional Schools\n" +
		"Alpha,2,3,0\n" +
		"Charlie,5,1,4\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVIncludeFlagged(t *testing.T) {
	_, results := fixture()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results, Options{IncludeFlagged: true}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Region,Schools Needed,Current Schools,Additional Schools,Error", lines[0])
	assert.Equal(t, "Alpha,2,3,0,", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Bravo,,,,"), lines[2])
	assert.Contains(t, lines[2], "invalid input")
}

func TestWriteXLSX(t *testing.T) {
	_, results := fixture()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, results, 1000, Options{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"Charlie", "5", "1", "4"}, rows[2])

	total, err := f.GetCellValue(summarySheet, "B7")
	require.NoError(t, err)
	assert.Equal(t, "4", total)
}

func TestLayer(t *testing.T) {
	regions, results := fixture()
	fc, err := Layer(regions, results, Options{})
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	charlie := fc.Features[1]
	assert.Equal(t, "Charlie = 4", charlie.Properties[LabelField])
	assert.Equal(t, 4, charlie.Properties["additional"])
	assert.InDelta(t, 5.0, charlie.Properties["label_x"], 1e-9)
	assert.InDelta(t, 15.0, charlie.Properties["label_y"], 1e-9)
}

func TestLayerIncludeFlagged(t *testing.T) {
	regions, results := fixture()
	fc, err := Layer(regions, results, Options{IncludeFlagged: true})
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	assert.Contains(t, fc.Features[1].Properties["error"], "Bravo")
	assert.NotContains(t, fc.Features[1].Properties, LabelField)
}

func TestLayerLengthMismatch(t *testing.T) {
	regions, results := fixture()
	_, err := Layer(regions[:1], results, Options{})
	assert.Error(t, err)
}

func TestWriteGeoJSONRoundTrip(t *testing.T) {
	regions, results := fixture()
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, regions, results, Options{}))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Alpha = 0", fc.Features[0].Properties.MustString(LabelField))
	assert.True(t, json.Valid(buf.Bytes()))
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	_, results := fixture()
	require.NoError(t, ToFile(path, func(w io.Writer) error {
		return WriteCSV(w, results, Options{})
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Region,"))

	boom := errors.New("boom")
	err = ToFile(path, func(io.Writer) error { return boom })
	assert.ErrorIs(t, err, boom)
}
