// Package session holds the client's single authenticated identity and the last-fetched trip collection.
//
// A [Store] is created once at startup and passed to every component that needs credentials.
// Identity keys are mirrored into a [Storage] so a restart can pick the session back up with [Store.Restore].
package session
