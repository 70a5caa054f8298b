// Package cache provides a small expiring LRU for topic-list responses.
// A nil *ListCache is valid and disables caching.
package cache
