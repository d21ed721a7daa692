package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/openrailwaymap/railsearch/internal/db"
	"github.com/openrailwaymap/railsearch/internal/domain/facility"
)

var nameColumns = []string{"osm_id", "name", "railway", "railway_ref", "tags", "latitude", "longitude", "rank"}

var refColumns = []string{"osm_id", "name", "railway", "railway_ref", "tags", "latitude", "longitude"}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewStoreForTest(conn, Config{}), mock
}

// fieldValue looks up a scanned fixed column by name.
func fieldValue(row facility.Row, name string) (any, bool) {
	for _, f := range row.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectPing()

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestPing_Error(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err := s.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Errorf("expected *db.Error with op %s, got %v", db.OpPing, err)
	}
}

func TestWaitForReady_Immediate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectPing()

	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestWaitForReady_RetriesUntilReady(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing()

	if err := s.WaitForReady(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestNewStore_RequiresDSN(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

// --- SQL rendering ---

func TestBuildNameSQL(t *testing.T) {
	q := buildNameSQL(`"openrailwaymap_facilities_for_search"`)

	for _, want := range []string{
		`FROM "openrailwaymap_facilities_for_search"`,
		"SELECT DISTINCT ON (osm_id)",
		"ORDER BY osm_id, rank DESC NULLS LAST",
		"ORDER BY rank DESC NULLS LAST\nLIMIT $2",
		"WHERE terms @@ phraseto_tsquery('simple', unaccent(openrailwaymap_hyphen_to_space($1)))",
		"openrailwaymap_name_rank(phraseto_tsquery('simple', unaccent(openrailwaymap_hyphen_to_space($1))), terms, route_count, railway, station) AS rank",
		"ST_Y(ST_Transform(geom, 4326)) AS latitude",
		"ST_X(ST_Transform(geom, 4326)) AS longitude",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("name SQL missing %q:\n%s", want, q)
		}
	}
}

func TestBuildRefSQL(t *testing.T) {
	q := buildRefSQL(`"openrailwaymap_ref"`, db.RefColumnUICRef)

	for _, want := range []string{
		"SELECT DISTINCT ON (osm_id) osm_id, name, railway, railway_ref, tags",
		`FROM "openrailwaymap_ref"`,
		`WHERE "uic_ref" = $1`,
		"LIMIT $2",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("ref SQL missing %q:\n%s", want, q)
		}
	}
	if strings.Contains(q, "rank") {
		t.Error("ref SQL must not compute a rank")
	}
}

func TestNewStore_QuotesConfiguredTables(t *testing.T) {
	conn, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	s := NewStoreForTest(conn, Config{FacilitiesTable: `weird"name`, RefTable: "refs_v2"})
	if !strings.Contains(s.nameSQL, `FROM "weird""name"`) {
		t.Errorf("facilities table not quoted: %s", s.nameSQL)
	}
	if !strings.Contains(s.refSQL[db.RefColumnRailwayRef], `FROM "refs_v2"`) {
		t.Errorf("ref table not quoted: %s", s.refSQL[db.RefColumnRailwayRef])
	}
}

// --- SearchName ---

func TestSearchName_ScansTypedRows(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows(nameColumns).
		AddRow(int64(240109189), "Berlin Hbf", "station", "BL",
			[]byte(`"operator"=>"DB InfraGO", "uic_ref"=>"8011160", "note"=>NULL`),
			52.5250839, 13.369402, 3.2).
		AddRow(int64(17), nil, "halt", nil, nil, 52.1, 13.1, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM \"openrailwaymap_facilities_for_search\"")).
		WithArgs("Berlin Hbf", 20).
		WillReturnRows(rows).
		RowsWillBeClosed()

	rs, err := s.SearchName(context.Background(), &db.NameQuery{Term: "Berlin Hbf", Limit: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", rs.Len())
	}
	if len(rs.Columns) != len(nameColumns) {
		t.Errorf("columns = %v", rs.Columns)
	}

	first := rs.Rows[0]
	if len(first.Fields) != 7 {
		t.Fatalf("expected 7 fixed fields (tags split out), got %d", len(first.Fields))
	}
	if v, _ := fieldValue(first, "osm_id"); v != int64(240109189) {
		t.Errorf("osm_id = %#v", v)
	}
	if v, _ := fieldValue(first, "name"); v != "Berlin Hbf" {
		t.Errorf("name = %#v", v)
	}
	if v, _ := fieldValue(first, "rank"); v != 3.2 {
		t.Errorf("rank = %#v", v)
	}
	if first.Tags["operator"] != "DB InfraGO" || first.Tags["uic_ref"] != "8011160" {
		t.Errorf("tags = %v", first.Tags)
	}
	if _, ok := first.Tags["note"]; ok {
		t.Error("NULL tag values should be dropped")
	}

	second := rs.Rows[1]
	if v, ok := fieldValue(second, "name"); !ok || v != nil {
		t.Errorf("NULL name should scan to nil, got %#v", v)
	}
	if v, ok := fieldValue(second, "rank"); !ok || v != nil {
		t.Errorf("NULL rank should scan to nil, got %#v", v)
	}
	if second.Tags != nil {
		t.Errorf("NULL tags should scan to nil map, got %v", second.Tags)
	}
	expectationsMet(t, mock)
}

func TestSearchName_Empty(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT").
		WithArgs("Nowhere", 5).
		WillReturnRows(sqlmock.NewRows(nameColumns))

	rs, err := s.SearchName(context.Background(), &db.NameQuery{Term: "Nowhere", Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.Len() != 0 {
		t.Errorf("expected 0 rows, got %d", rs.Len())
	}
	expectationsMet(t, mock)
}

func TestSearchName_QueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrConnDone)

	_, err := s.SearchName(context.Background(), &db.NameQuery{Term: "x", Limit: 1})
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("expected ErrConnDone, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSearchName {
		t.Errorf("expected op %q, got %v", db.OpSearchName, err)
	}
}

func TestSearchName_ScanErrorClosesRows(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows(nameColumns).
		AddRow("not-a-number", "X", "station", nil, nil, 1.0, 2.0, 1.0)
	mock.ExpectQuery("SELECT").WillReturnRows(rows).RowsWillBeClosed()

	_, err := s.SearchName(context.Background(), &db.NameQuery{Term: "x", Limit: 1})
	if err == nil {
		t.Fatal("expected scan error")
	}
	expectationsMet(t, mock)
}

func TestSearchName_RowErrorClosesRows(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows(nameColumns).
		AddRow(int64(1), "A", "station", nil, nil, 1.0, 2.0, 1.0).
		AddRow(int64(2), "B", "station", nil, nil, 1.0, 2.0, 1.0).
		RowError(1, errors.New("connection reset"))
	mock.ExpectQuery("SELECT").WillReturnRows(rows).RowsWillBeClosed()

	_, err := s.SearchName(context.Background(), &db.NameQuery{Term: "x", Limit: 2})
	if err == nil {
		t.Fatal("expected row iteration error")
	}
	expectationsMet(t, mock)
}

func TestSearchName_InvalidQueryNeverHitsStore(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.SearchName(context.Background(), &db.NameQuery{Term: "", Limit: 1})
	if !errors.Is(err, db.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	expectationsMet(t, mock)
}

// --- SearchRef ---

func TestSearchRef_RailwayRef(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows(refColumns).
		AddRow(int64(5), "Berlin Hbf", "station", "BL", nil, 52.52, 13.37)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE "railway_ref" = $1`)).
		WithArgs("BL", 20).
		WillReturnRows(rows).
		RowsWillBeClosed()

	rs, err := s.SearchRef(context.Background(), &db.RefQuery{Column: db.RefColumnRailwayRef, Value: "BL", Limit: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", rs.Len())
	}
	if _, ok := fieldValue(rs.Rows[0], "rank"); ok {
		t.Error("reference rows carry no rank column")
	}
	expectationsMet(t, mock)
}

func TestSearchRef_UICRef(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE "uic_ref" = $1`)).
		WithArgs("8011160", 3).
		WillReturnRows(sqlmock.NewRows(refColumns))

	_, err := s.SearchRef(context.Background(), &db.RefQuery{Column: db.RefColumnUICRef, Value: "8011160", Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestSearchRef_UnknownColumn(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.SearchRef(context.Background(), &db.RefQuery{Column: "name", Value: "x", Limit: 1})
	if !errors.Is(err, db.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestSearchRef_QueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	_, err := s.SearchRef(context.Background(), &db.RefQuery{Column: db.RefColumnUICRef, Value: "x", Limit: 1})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSearchRef {
		t.Fatalf("expected op %q, got %v", db.OpSearchRef, err)
	}
}

// --- typed scanning helpers ---

func TestTypedValue_UnknownColumnBytesBecomeString(t *testing.T) {
	var v any = []byte("platform")
	if got := typedValue(&v); got != "platform" {
		t.Errorf("typedValue = %#v, want \"platform\"", got)
	}
}

func TestQueryTimeout_Applied(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()
	s := NewStoreForTest(conn, Config{QueryTimeout: 10 * time.Millisecond})

	mock.ExpectQuery("SELECT").
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows(refColumns))

	_, err = s.SearchRef(context.Background(), &db.RefQuery{Column: db.RefColumnUICRef, Value: "x", Limit: 1})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
