package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb/geojson"

	"github.com/ChicagoDave/neededschools/pkg/demand"
	"github.com/ChicagoDave/neededschools/pkg/geo"
)

// LabelField is the layer property holding "<region> = <additional>".
const LabelField = "label"

// Layer builds an annotated copy of the region layer. regions and results
// must be parallel, as returned by demand.Run.
func Layer(regions []demand.Region, results []demand.RegionResult, opts Options) (*geojson.FeatureCollection, error) {
	if len(regions) != len(results) {
		return nil, fmt.Errorf("have %d regions but %d results", len(regions), len(results))
	}

	fc := geojson.NewFeatureCollection()
	for i, r := range results {
		if r.Flagged() && !opts.IncludeFlagged {
			continue
		}
		if regions[i].Geometry == nil {
			continue
		}
		f := geojson.NewFeature(regions[i].Geometry)
		f.Properties["region"] = r.Region
		if r.Flagged() {
			f.Properties["error"] = r.Err.Error()
		} else {
			f.Properties["population"] = r.Population
			f.Properties["required"] = r.Required
			f.Properties["existing"] = r.Existing
			f.Properties["additional"] = r.Additional
			f.Properties[LabelField] = r.Label()
			if err := geo.Validate(regions[i].Geometry); err == nil {
				lp := geo.LabelPoint(regions[i].Geometry)
				f.Properties["label_x"] = lp[0]
				f.Properties["label_y"] = lp[1]
			}
		}
		fc.Append(f)
	}
	return fc, nil
}

// WriteGeoJSON writes the annotated layer.
func WriteGeoJSON(w io.Writer, regions []demand.Region, results []demand.RegionResult, opts Options) error {
	fc, err := Layer(regions, results, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}
