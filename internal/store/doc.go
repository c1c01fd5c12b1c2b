// Package store defines interfaces for data persistence operations.
// These interfaces abstract the backing database from the application's
// core logic: the scheduler, hierarchy resolver, stats aggregator, and
// session controller all depend on these interfaces rather than on a
// concrete store.
package store
