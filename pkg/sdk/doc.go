// Package scxa provides an embedded Go client for single-cell expression
// search. It runs the same lookups as the HTTP API in process, against a
// SolrCloud cluster or an in-memory dataset.
//
//	client, _ := scxa.New(ctx, scxa.WithSolr("http://localhost:8983"))
//	defer client.Close()
//
//	ids, _ := client.Genes().IDs(ctx, "INS", scxa.CategorySymbol, "Homo sapiens")
//	types, _ := client.CellTypes().ByGeneIDs(ctx, ids)
//	fields, _ := client.Metadata().ForCell(ctx, "E-GEOD-81547", "cell-1")
//
// Results can be cached in Redis or Valkey with WithRedisCache; cache
// failures are logged and never fail a lookup.
package scxa
