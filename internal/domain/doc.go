// Package domain contains the core business entities of the application:
// users, deck nodes (decks and folders), flashcards, and their validation
// rules. It is independent of any specific infrastructure or delivery
// mechanism.
package domain
