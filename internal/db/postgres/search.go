package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/lib/pq/hstore"

	"github.com/openrailwaymap/railsearch/internal/db"
	"github.com/openrailwaymap/railsearch/internal/domain/facility"
)

// selectFields is the fixed column list shared by both lookups.
const selectFields = "osm_id, name, railway, railway_ref, tags"

// geographicCoords reprojects the stored geometry to WGS84 latitude/longitude.
const geographicCoords = "ST_Y(ST_Transform(geom, 4326)) AS latitude, ST_X(ST_Transform(geom, 4326)) AS longitude"

// phraseQuery folds accents and hyphens of $1 and tokenizes it as a phrase.
const phraseQuery = "phraseto_tsquery('simple', unaccent(openrailwaymap_hyphen_to_space($1)))"

// buildNameSQL renders the ranked full-text query. The innermost stage matches
// and ranks, the middle stage keeps the best-ranked row per osm_id, the outer
// stage orders by rank and applies the limit.
func buildNameSQL(table string) string {
	return fmt.Sprintf(`SELECT %[1]s, latitude, longitude, rank
FROM (
  SELECT DISTINCT ON (osm_id) %[1]s, latitude, longitude, rank
  FROM (
    SELECT %[1]s, %[2]s,
      openrailwaymap_name_rank(%[3]s, terms, route_count, railway, station) AS rank
    FROM %[4]s
    WHERE terms @@ %[3]s
  ) AS a
  ORDER BY osm_id, rank DESC NULLS LAST
) AS b
ORDER BY rank DESC NULLS LAST
LIMIT $2`, selectFields, geographicCoords, phraseQuery, table)
}

// buildRefSQL renders the exact-match lookup on one reference column.
func buildRefSQL(table string, column db.RefColumn) string {
	return fmt.Sprintf(`SELECT DISTINCT ON (osm_id) %s, %s
FROM %s
WHERE %s = $1
LIMIT $2`, selectFields, geographicCoords, table, pq.QuoteIdentifier(string(column)))
}

// SearchName runs the ranked full-text facility search.
func (s *Store) SearchName(ctx context.Context, q *db.NameQuery) (*db.ResultSet, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rs, err := s.query(ctx, s.nameSQL, q.Term, q.Limit)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearchName, Err: err}
	}
	return rs, nil
}

// SearchRef runs the exact reference lookup.
func (s *Store) SearchRef(ctx context.Context, q *db.RefQuery) (*db.ResultSet, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rs, err := s.query(ctx, s.refSQL[q.Column], q.Value, q.Limit)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearchRef, Err: err}
	}
	return rs, nil
}

// query executes a statement and scans every row. Rows are closed on all paths.
func (s *Store) query(ctx context.Context, query string, args ...any) (*db.ResultSet, error) {
	rows, err := s.conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller with the op name
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	rs := &db.ResultSet{Columns: cols}
	for rows.Next() {
		row, err := scanRow(rows, cols)
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return rs, nil
}

// scanRow scans one row into typed values chosen by column name.
func scanRow(rows *sqlx.Rows, cols []string) (facility.Row, error) {
	dest := make([]any, len(cols))
	for i, c := range cols {
		dest[i] = scanTarget(c)
	}
	if err := rows.Scan(dest...); err != nil {
		return facility.Row{}, fmt.Errorf("scan: %w", err)
	}

	row := facility.Row{Fields: make([]facility.Field, 0, len(cols))}
	for i, c := range cols {
		if c == facility.ColumnTags {
			row.Tags = tagsFromHstore(dest[i].(*hstore.Hstore))
			continue
		}
		row.Fields = append(row.Fields, facility.Field{Name: c, Value: typedValue(dest[i])})
	}
	return row, nil
}

func scanTarget(column string) any {
	switch column {
	case facility.ColumnOsmID:
		return new(sql.NullInt64)
	case facility.ColumnName, facility.ColumnRailway, facility.ColumnRailwayRef:
		return new(sql.NullString)
	case facility.ColumnLatitude, facility.ColumnLongitude, facility.ColumnRank:
		return new(sql.NullFloat64)
	case facility.ColumnTags:
		return new(hstore.Hstore)
	default:
		return new(any)
	}
}

func typedValue(v any) any {
	switch t := v.(type) {
	case *sql.NullInt64:
		if !t.Valid {
			return nil
		}
		return t.Int64
	case *sql.NullString:
		if !t.Valid {
			return nil
		}
		return t.String
	case *sql.NullFloat64:
		if !t.Valid {
			return nil
		}
		return t.Float64
	case *any:
		if b, ok := (*t).([]byte); ok {
			return string(b)
		}
		return *t
	default:
		return nil
	}
}

// tagsFromHstore converts the hstore bag, dropping NULL values.
func tagsFromHstore(h *hstore.Hstore) map[string]string {
	if h == nil || len(h.Map) == 0 {
		return nil
	}
	tags := make(map[string]string, len(h.Map))
	for k, v := range h.Map {
		if v.Valid {
			tags[k] = v.String
		}
	}
	return tags
}
