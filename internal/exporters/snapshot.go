package exporters

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mrlokans/bookshelf/internal/tracker"
)

// DocumentVersion is bumped whenever the exported layout changes.
const DocumentVersion = 1

// Document is the JSON form of an export. Password hashes are never part
// of it; entities.User does not serialize them.
type Document struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	tracker.Snapshot
}

func NewDocument(snap tracker.Snapshot, at time.Time) Document {
	return Document{
		Version:    DocumentVersion,
		ExportedAt: at.UTC(),
		Snapshot:   snap,
	}
}

// WriteDocument encodes doc as indented JSON.
func WriteDocument(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}
