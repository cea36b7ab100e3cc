package importers

import (
	"encoding/json"
	"fmt"
	"io"
)

type catalogEntry struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       int    `json:"year"`
	Publisher  string `json:"publisher"`
	Language   string `json:"language"`
	TotalPages int    `json:"total_pages"`
	Pages      int    `json:"pages"`
}

// ParseCatalogJSON parses a JSON array of books. Entries that do not decode
// are reported by position and skipped.
func ParseCatalogJSON(r io.Reader) ([]CatalogRow, []string, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	rows := make([]CatalogRow, 0, len(raw))
	var problems []string
	for i, msg := range raw {
		var e catalogEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			problems = append(problems, fmt.Sprintf("Entry %d: %v", i+1, err))
			continue
		}

		row := CatalogRow{
			Line:       i + 1,
			ID:         e.ID,
			Name:       e.Name,
			Author:     e.Author,
			Year:       e.Year,
			Publisher:  e.Publisher,
			Language:   e.Language,
			TotalPages: e.TotalPages,
		}
		if row.Name == "" {
			row.Name = e.Title
		}
		if row.TotalPages == 0 {
			row.TotalPages = e.Pages
		}
		rows = append(rows, row)
	}

	return rows, problems, nil
}
