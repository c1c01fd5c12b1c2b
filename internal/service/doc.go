// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Key components:
//
//   - HierarchyResolver flattens a deck/folder subtree into the deck IDs and
//     cards it contains.
//   - StatsAggregator recomputes subtree statistics (card count, due count,
//     study progress) across the whole deck tree after structural mutations.
//   - DeckService implements deck/folder and card CRUD, including
//     transactional cascade deletes.
//   - SessionService runs in-memory quiz sessions, routing answers through
//     the SRS calculator and persisting each scheduling update atomically.
//
// Services receive dependencies through constructor injection and apply
// transactional boundaries when operations span multiple repositories. They
// translate store errors into service-level sentinel errors that the API
// layer maps to HTTP status codes.
package service
