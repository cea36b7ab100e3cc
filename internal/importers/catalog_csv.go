package importers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseCatalogCSV parses a CSV catalog. The header row names the columns;
// id, a name column and a page-count column are required, the rest are
// optional and may come in any order.
func ParseCatalogCSV(r io.Reader) ([]CatalogRow, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[normalizeHeader(h)] = i
	}
	aliasHeader(headerIndex, "name", "title")
	aliasHeader(headerIndex, "total_pages", "pages")

	for _, h := range []string{"id", "name", "total_pages"} {
		if _, ok := headerIndex[h]; !ok {
			return nil, nil, fmt.Errorf("missing required header: %s", h)
		}
	}

	var rows []CatalogRow
	var problems []string
	lineNum := 1 // Start at 1 because we already read the header

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("Line %d: %v", lineNum, err))
			continue
		}

		row := CatalogRow{
			Line:      lineNum,
			Name:      getCSVValue(record, headerIndex, "name"),
			Author:    getCSVValue(record, headerIndex, "author"),
			Publisher: getCSVValue(record, headerIndex, "publisher"),
			Language:  getCSVValue(record, headerIndex, "language"),
		}

		var bad []string
		row.ID, bad = parseIntField(record, headerIndex, "id", true, bad)
		row.TotalPages, bad = parseIntField(record, headerIndex, "total_pages", true, bad)
		row.Year, bad = parseIntField(record, headerIndex, "year", false, bad)
		if len(bad) > 0 {
			problems = append(problems, fmt.Sprintf("Line %d: skipped - invalid %s", lineNum, strings.Join(bad, ", ")))
			continue
		}

		rows = append(rows, row)
	}

	return rows, problems, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

// aliasHeader lets alias stand in for canonical when canonical is absent.
func aliasHeader(headerIndex map[string]int, canonical, alias string) {
	if _, ok := headerIndex[canonical]; ok {
		return
	}
	if idx, ok := headerIndex[alias]; ok {
		headerIndex[canonical] = idx
	}
}

func getCSVValue(record []string, headerIndex map[string]int, header string) string {
	if idx, ok := headerIndex[header]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

// parseIntField reads an integer column. Empty optional columns read as 0;
// anything unparsable is appended to bad.
func parseIntField(record []string, headerIndex map[string]int, header string, required bool, bad []string) (int, []string) {
	raw := getCSVValue(record, headerIndex, header)
	if raw == "" && !required {
		return 0, bad
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, append(bad, header)
	}
	return n, bad
}
