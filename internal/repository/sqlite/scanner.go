package sqlite

import (
	"database/sql"
	"fmt"
)

// Scanner is the scanning behaviour shared by sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// ScanRecord scans key, value and updated_at from a database row
func ScanRecord(scanner Scanner) (*Record, error) {
	record := &Record{}
	var value string
	var updatedAt sql.NullString

	if err := scanner.Scan(&record.Key, &value, &updatedAt); err != nil {
		return nil, err
	}
	record.Value = []byte(value)

	if updatedAt.Valid {
		t, err := ParseTimeFromDB(updatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at for %q: %w", record.Key, err)
		}
		record.UpdatedAt = t
	}

	return record, nil
}
