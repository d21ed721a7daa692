package railsearch

import (
	"encoding/json"

	"github.com/openrailwaymap/railsearch/internal/domain/facility"
)

// FacilityQuery selects facilities. Set exactly one of Q, Name, Ref, UICRef.
type FacilityQuery struct {
	// Q searches names, operator references and UIC identifiers at once.
	Q string
	// Name is a ranked full-text search over facility names.
	Name string
	// Ref is an exact operator reference code, e.g. "BL".
	Ref string
	// UICRef is an exact UIC station identifier, e.g. "8011160".
	UICRef string
	// Limit caps the result count. Zero uses the client default.
	Limit int
}

// Facility is one railway facility.
type Facility struct {
	OsmID      int64
	Name       string
	Railway    string
	RailwayRef string
	Latitude   float64
	Longitude  float64
	// Rank is set for name matches only.
	Rank *float64
	// Tags holds every other attribute of the facility.
	Tags map[string]string

	record facility.Record
}

// MarshalJSON encodes the facility exactly like the HTTP API does.
func (f Facility) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.record)
}

func facilityFromRecord(r facility.Record) Facility {
	f := Facility{OsmID: r.OsmID(), record: r}
	for _, key := range r.Keys() {
		v, _ := r.Get(key)
		switch key {
		case facility.ColumnOsmID:
		case facility.ColumnName:
			f.Name, _ = v.(string)
		case facility.ColumnRailway:
			f.Railway, _ = v.(string)
		case facility.ColumnRailwayRef:
			f.RailwayRef, _ = v.(string)
		case facility.ColumnLatitude:
			f.Latitude, _ = v.(float64)
		case facility.ColumnLongitude:
			f.Longitude, _ = v.(float64)
		case facility.ColumnRank:
			if rank, ok := v.(float64); ok {
				f.Rank = &rank
			}
		default:
			s, ok := v.(string)
			if !ok {
				continue
			}
			if f.Tags == nil {
				f.Tags = make(map[string]string)
			}
			f.Tags[key] = s
		}
	}
	return f
}
