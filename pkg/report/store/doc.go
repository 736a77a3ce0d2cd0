// Package store persists attack events to SQLite.
//
// SQLiteStore implements report.Reporter. Writes are queued on a channel
// and flushed by a background writer so event persistence never blocks the
// request path. Pruner enforces a retention period on stored events, either
// on demand or on a cron schedule.
package store
