// Package domain contains the core business entities and domain logic of
// the application: flashcards, users, and per-user study progress. It is
// independent of any specific infrastructure or delivery mechanism.
package domain
