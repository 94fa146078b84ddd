// Package events fans content changes out to caches, the event log and
// connected browsers.
package events

import "time"

// ContentEvent announces that the views at Paths are stale.
type ContentEvent struct {
	ID    string    `json:"id"`
	Paths []string  `json:"paths"`
	At    time.Time `json:"at"`
}
