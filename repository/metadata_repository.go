// Package repository holds the Metadata Store: the ordered set of
// DocumentRecords produced by the offline extraction pass, persisted as a
// single JSON array keyed by filename. Records are written once at index
// time and read-only afterwards, so lookups need no locking.
package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/avkap007/pdf-query-bot/models"
)

// MetadataStore maps document identifiers to their structured records.
type MetadataStore struct {
	records []models.DocumentRecord
}

// NewMetadataStore wraps an already-extracted record set.
func NewMetadataStore(records []models.DocumentRecord) *MetadataStore {
	return &MetadataStore{records: records}
}

// LoadMetadataStore reads the persisted JSON array from path.
func LoadMetadataStore(path string) (*MetadataStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %s: %w", path, err)
	}

	var records []models.DocumentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file %s: %w", path, err)
	}

	return &MetadataStore{records: records}, nil
}

// Save writes the record set to path as an indented JSON array.
func (s *MetadataStore) Save(path string) error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file %s: %w", path, err)
	}
	return nil
}

// All returns the records in extraction order.
func (s *MetadataStore) All() []models.DocumentRecord {
	return s.records
}

// Len returns the number of stored records.
func (s *MetadataStore) Len() int {
	return len(s.records)
}

// Get returns the record for an exact filename.
func (s *MetadataStore) Get(filename string) (models.DocumentRecord, bool) {
	for _, rec := range s.records {
		if rec.Filename == filename {
			return rec, true
		}
	}
	return models.DocumentRecord{}, false
}

// FindByToken resolves a review-reference token to a record. A
// case-insensitive filename substring match is tried first, an exact
// review-ref match second; the two passes keep lookups working for corpora
// where the filename carries the reference and for letters where only the
// parsed field has it.
func (s *MetadataStore) FindByToken(token string) (models.DocumentRecord, bool) {
	if token == "" {
		return models.DocumentRecord{}, false
	}
	lowered := strings.ToLower(token)

	for _, rec := range s.records {
		if strings.Contains(strings.ToLower(rec.Filename), lowered) {
			return rec, true
		}
	}
	for _, rec := range s.records {
		if strings.EqualFold(rec.ReviewRef, token) {
			return rec, true
		}
	}
	return models.DocumentRecord{}, false
}
