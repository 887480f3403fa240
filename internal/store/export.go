package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ulikunitz/xz"
)

// exportDocument is one key/value pair in an export archive.
type exportDocument struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// exportArchive is the top-level export payload.
type exportArchive struct {
	ExportedAt time.Time        `json:"exported_at"`
	Documents  []exportDocument `json:"documents"`
}

// Export writes an xz-compressed JSON dump of every stored document to w.
// Intended for the `store export` subcommand as a portable local-state
// backup.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	var records []record
	if err := s.db.WithContext(ctx).Order("key").Find(&records).Error; err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	archive := exportArchive{
		ExportedAt: time.Now().UTC(),
		Documents:  make([]exportDocument, 0, len(records)),
	}
	for _, rec := range records {
		archive.Documents = append(archive.Documents, exportDocument{
			Key:       rec.Key,
			Value:     json.RawMessage(rec.Value),
			UpdatedAt: rec.UpdatedAt,
		})
	}

	xzw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating xz writer: %w", err)
	}
	if err := json.NewEncoder(xzw).Encode(archive); err != nil {
		xzw.Close()
		return fmt.Errorf("encoding export: %w", err)
	}
	if err := xzw.Close(); err != nil {
		return fmt.Errorf("finalizing export: %w", err)
	}
	return nil
}

// Import restores documents from an xz-compressed export produced by
// Export. Existing keys are overwritten.
func (s *Store) Import(ctx context.Context, r io.Reader) error {
	xzr, err := xz.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating xz reader: %w", err)
	}

	var archive exportArchive
	if err := json.NewDecoder(xzr).Decode(&archive); err != nil {
		return fmt.Errorf("decoding export: %w", err)
	}

	for _, doc := range archive.Documents {
		if err := s.put(ctx, doc.Key, doc.Value); err != nil {
			return err
		}
	}
	return nil
}
