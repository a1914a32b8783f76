// Package langtree builds a language taxonomy from several overlapping
// sources and answers the questions an etymology pipeline asks of it: what
// a code is called, which code a name refers to, which real language an
// etymology-only variety belongs to, and what a language descends from.
//
// # Pipeline
//
// Resolution runs in four stages over an explicit, ordered list of sources:
//
//  1. Parse: every source (CSV table, Lua data module, JSON list, Risor
//     script) is turned into a Batch of records. Sources are independent and
//     parsed concurrently.
//
//  2. Merge: batches are applied strictly in the given order. Later batches
//     win; replacing batches overwrite whole records, refining batches only
//     overlay the fields they carry. Name tables keep first-insertion order.
//
//  3. Resolve: etymology-only codes are followed up their parent chains to a
//     base language, and every family's ancestor families are precomputed.
//
//  4. Trace: each language's ancestors are collected from its parents and
//     then extended with the proto-languages of its family and that family's
//     ancestors, stopping at the first proto-language the registry lacks.
//
// Every walk is cycle-guarded. Cycles, malformed records and dangling
// parents are logged and counted in Diagnostics, never fatal.
//
// # Usage
//
//	var paths langtree.SourcePaths
//	for _, f := range files {
//		if err := paths.AddFile(f); err != nil { ... }
//	}
//	r := langtree.New(langtree.WithLogger(logger))
//	reg, err := r.ResolveSources(ctx, paths.Sources(logger))
//	if err != nil { ... }
//
//	reg.EtyBase("LL.")        // "la"
//	reg.Ancestors("en")       // ["enm", "ang", "gmw-pro", "gem-pro", "ine-pro"]
//	exp := reg.Export()       // ordered tables for downstream consumers
//
// A registry can be persisted with OpenStore and Registry.Save and queried
// later through the Store.
package langtree
