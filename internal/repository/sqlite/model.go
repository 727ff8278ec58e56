package sqlite

import "time"

// Record is one row of the kv table
type Record struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}
