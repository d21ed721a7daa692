// Package railsearch provides an in-process Go client for searching
// OpenRailwayMap railway facilities stored in PostgreSQL/PostGIS.
//
// The client runs the same validation, lookup and fusion pipeline as the
// HTTP API without going through HTTP:
//
//	client, err := railsearch.New(ctx,
//	    railsearch.WithPostgres("postgres://osm@localhost:5432/gis"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	stations, err := client.Facilities(ctx, railsearch.FacilityQuery{Name: "Berlin Hbf"})
//
// Exactly one of Q, Name, Ref and UICRef must be set. Invalid queries return
// a *RequestError; use errors.As to inspect its Type.
package railsearch
