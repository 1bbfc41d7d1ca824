package geo

import (
	"littertrack/models"

	geojson "github.com/paulmach/go.geojson"
)

// FeatureCollection renders complaints as GeoJSON point features for map
// embeds. Image payloads are deliberately left out; only the count travels.
func FeatureCollection(complaints []models.Complaint) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range complaints {
		f := geojson.NewPointFeature([]float64{c.Longitude, c.Latitude})
		f.SetProperty("id", c.ID)
		f.SetProperty("status", string(c.Status))
		f.SetProperty("timestamp", c.Timestamp)
		f.SetProperty("description", c.Description)
		f.SetProperty("image_count", len(c.Images))
		fc.AddFeature(f)
	}
	return fc
}
