package pipeline

import "example.com/litterbox/internal/domain"

// RecordStore holds the raw record set of the most recent winning fetch.
// Replacement is always a full swap; callers must never mutate the returned
// slice.
type RecordStore struct {
	records []domain.UsageRecord
}

// Replace swaps in a new record set.
func (s *RecordStore) Replace(records []domain.UsageRecord) {
	s.records = records
}

// Clear drops all records.
func (s *RecordStore) Clear() {
	s.records = nil
}

// Records returns the current record set.
func (s *RecordStore) Records() []domain.UsageRecord {
	return s.records
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	return len(s.records)
}
