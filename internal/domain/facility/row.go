package facility

// Column names produced by the facility queries.
const (
	ColumnOsmID      = "osm_id"
	ColumnName       = "name"
	ColumnRailway    = "railway"
	ColumnRailwayRef = "railway_ref"
	ColumnTags       = "tags"
	ColumnLatitude   = "latitude"
	ColumnLongitude  = "longitude"
	ColumnRank       = "rank"
)

// Field is one fixed column of a raw row. Value holds the typed value scanned
// from the store (int64, float64, string) or nil for SQL NULL.
type Field struct {
	Name  string
	Value any
}

// Row is a single raw store row: fixed columns in select order plus the
// optional tag bag. Tags is nil when the row carries no tags.
type Row struct {
	Fields []Field
	Tags   map[string]string
}
