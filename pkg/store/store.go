// Package store persists discovered contacts and per-post pagination
// progress in a local SQLite database.
package store

import (
	"errors"
	"time"
)

// Contact is a locally persisted record of a discovered account. The handle
// is the natural key; the numeric id is informational. Contacts are never
// deleted by this tool.
type Contact struct {
	Pk          int64
	Username    string
	FullName    string
	IsPrivate   bool
	Contacted   bool
	LastContact *time.Time
	Language    string
}

// PendingContact is the subset of a contact needed to address an outreach
// message.
type PendingContact struct {
	Username string
	FullName string
	Pk       int64
}

// ErrContactNotFound is returned when an operation references a handle that
// is not in the ledger.
var ErrContactNotFound = errors.New("contact not found")
