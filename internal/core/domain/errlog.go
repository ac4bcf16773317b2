package domain

import "time"

// ErrorEntry is one row of the append-only operational error log. Entries
// record remote-store failures and denied access so operators can see why a
// submission bounced without tailing service logs.
type ErrorEntry struct {
	Time      time.Time `json:"time"`
	Operation string    `json:"operation"`
	Message   string    `json:"message"`
}
