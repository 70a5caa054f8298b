// Package store persists forum data in SQLite: users with their profile
// assignments, courses, topics, and replies. All IDs are UUID strings and
// timestamps are stored as RFC3339 UTC. Lookups return sentinel errors
// (ErrUserNotFound, ErrTopicNotFound, ...) that callers match with
// errors.Is.
package store
