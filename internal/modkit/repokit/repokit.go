// Package repokit carries the seam types repositories are written against.
// A repo package exports a Binder; the service binds it to the pool or to
// a transaction at call time, so one set of queries serves both paths
package repokit

import "marginalia/internal/platform/store"

// Binder binds a domain repo to a specific Queryer
type Binder[T any] interface {
	Bind(Queryer) T
}

// Queryer is the read and write surface SQL repos run on
type Queryer = store.RowQuerier

// TxRunner runs a function inside a transaction and hands it a Queryer
// scoped to that transaction
type TxRunner = store.TxRunner

// Row is a single scanned result
type Row = store.Row
