// Package geo builds the dashboard map views: S2 cell clustering of
// complaint locations and GeoJSON export.
package geo

import (
	"littertrack/models"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	expectedCells = 160
	minLevel      = 6
	maxLevel      = 16
)

type cellAggr struct {
	count    int64
	origCell s2.CellID
	id       string // complaint id, meaningful only while count == 1
}

// Aggregator clusters complaint points into S2 cells at a level picked for
// the viewport, so the dashboard map stays readable at any zoom.
type Aggregator struct {
	level int
	cells map[s2.CellID]*cellAggr
}

// cellBaseLevel picks the deepest level whose cells still keep the viewport
// under expectedCells markers.
func cellBaseLevel(vp *models.ViewPort, center *models.Point) int {
	minLL := s2.LatLngFromDegrees(vp.LatMin, vp.LonMin)
	maxLL := s2.LatLngFromDegrees(vp.LatMax, vp.LonMax)

	rect := s2.Rect{
		Lat: r1.Interval{Lo: minLL.Lat.Radians(), Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{Lo: minLL.Lng.Radians(), Hi: maxLL.Lng.Radians()},
	}
	vpArea := rect.Area()

	centerCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(center.Lat, center.Lon))
	for lv := maxLevel; lv >= minLevel; lv-- {
		cc := s2.CellFromCellID(centerCell.Parent(lv))
		if vpArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minLevel
}

func NewAggregator(vp *models.ViewPort, center *models.Point) *Aggregator {
	return &Aggregator{
		level: cellBaseLevel(vp, center),
		cells: make(map[s2.CellID]*cellAggr),
	}
}

func (a *Aggregator) AddPoint(loc models.ComplaintLocation) {
	pc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(loc.Latitude, loc.Longitude))
	parent := pc.Parent(a.level)
	unit, ok := a.cells[parent]
	if !ok {
		unit = &cellAggr{}
		a.cells[parent] = unit
	}
	unit.count++
	unit.origCell = pc
	unit.id = loc.ID
}

// Results renders the markers. A single-complaint cell keeps the exact
// report position and its id; crowded cells collapse to the cell center.
func (a *Aggregator) Results() []models.MapResult {
	r := make([]models.MapResult, 0, len(a.cells))
	for c, unit := range a.cells {
		ll := c.LatLng()
		id := ""
		if unit.count == 1 {
			ll = unit.origCell.LatLng()
			id = unit.id
		}
		r = append(r, models.MapResult{
			Latitude:    ll.Lat.Degrees(),
			Longitude:   ll.Lng.Degrees(),
			Count:       unit.count,
			ComplaintID: id,
		})
	}
	return r
}
