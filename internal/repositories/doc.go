// Package repositories implements SQLite persistence for client-side state.
//
// Key Implementations:
//   - [KVRepository] : durable string key-value pairs backing [session.Storage]
//
// The schema lives in the embedded migrations of the shared package; callers open the database with [shared.OpenDatabase].
package repositories
