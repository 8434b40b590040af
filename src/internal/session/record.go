// Package session keeps the device-scoped admin authorization record.
//
// The record lives in a single named slot of storage that belongs to the
// browser (a persistent cookie, or a redis key addressed by a device cookie).
// Being "logged in" is a property of the device, not of an identity: nothing
// on the server verifies who wrote the record.
package session

import "time"

const (
	// TTL is the validity window of a granted record.
	TTL = 24 * time.Hour

	// SlotKey names the slot holding the record.
	SlotKey = "adminAuth"
)

// Clock returns the current wall-clock instant.
type Clock func() time.Time

// Record is the persisted authorization flag and the instant it was written.
type Record struct {
	Authorized bool
	IssuedAt   time.Time
}

// Expired reports whether the validity window has elapsed at now.
func (r Record) Expired(now time.Time) bool {
	return now.Sub(r.IssuedAt) >= TTL
}
