// Package postgres contains the PostgreSQL implementations of the
// store interfaces. Every store accepts a store.DBTX, so the same
// implementation serves plain connections and transactions; services
// rebind stores with WithTx inside store.RunInTransaction.
package postgres
