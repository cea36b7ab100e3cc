package importers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/bookshelf/internal/entities"
)

var ErrUnsupportedFormat = errors.New("unsupported catalog format, expected .json or .csv")

// CatalogRow is one book as read from a catalog file, before validation.
type CatalogRow struct {
	Line       int
	ID         int
	Name       string
	Author     string
	Year       int
	Publisher  string
	Language   string
	TotalPages int
}

// Validate checks the fields the tracker relies on.
func (r CatalogRow) Validate() error {
	switch {
	case r.ID <= 0:
		return fmt.Errorf("book id must be positive, got %d", r.ID)
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("book %d has no name", r.ID)
	case r.TotalPages <= 0:
		return fmt.Errorf("book %d must have at least one page", r.ID)
	}
	return nil
}

func (r CatalogRow) Book() entities.Book {
	return entities.Book{
		ID:         r.ID,
		Name:       strings.TrimSpace(r.Name),
		Author:     strings.TrimSpace(r.Author),
		Year:       r.Year,
		Publisher:  strings.TrimSpace(r.Publisher),
		Language:   strings.TrimSpace(r.Language),
		TotalPages: r.TotalPages,
	}
}

// Parser reads a catalog and returns its rows plus non-fatal per-line
// problems. A returned error means nothing could be read.
type Parser func(r io.Reader) ([]CatalogRow, []string, error)

// BookSink receives validated books. services.Tracker implements it.
type BookSink interface {
	ImportBooks(books []entities.Book) (int, error)
}

// ImportResult summarizes one import run.
type ImportResult struct {
	BooksImported int      `json:"books_imported"`
	RowsSkipped   int      `json:"rows_skipped"`
	Problems      []string `json:"problems,omitempty"`
}

// Pipeline handles the common import workflow:
// parse → validate → deduplicate → save.
type Pipeline struct {
	sink BookSink
}

// NewPipeline creates a new import pipeline writing into sink.
func NewPipeline(sink BookSink) *Pipeline {
	return &Pipeline{sink: sink}
}

// ParserFor picks a parser from the file extension.
func ParserFor(path string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseCatalogJSON, nil
	case ".csv":
		return ParseCatalogCSV, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// ImportFile imports a catalog file, choosing the parser by extension.
func (p *Pipeline) ImportFile(path string) (ImportResult, error) {
	parse, err := ParserFor(path)
	if err != nil {
		return ImportResult{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return p.Import(f, parse)
}

// Import parses r and saves every valid row. When a book id repeats, the
// last row wins.
func (p *Pipeline) Import(r io.Reader, parse Parser) (ImportResult, error) {
	rows, problems, err := parse(r)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Problems: problems, RowsSkipped: len(problems)}

	books := make([]entities.Book, 0, len(rows))
	index := make(map[int]int, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			result.Problems = append(result.Problems, fmt.Sprintf("Line %d: %v", row.Line, err))
			result.RowsSkipped++
			continue
		}
		if i, dup := index[row.ID]; dup {
			result.Problems = append(result.Problems, fmt.Sprintf("Line %d: book %d repeated, later row kept", row.Line, row.ID))
			result.RowsSkipped++
			books[i] = row.Book()
			continue
		}
		index[row.ID] = len(books)
		books = append(books, row.Book())
	}

	if len(books) == 0 {
		return result, nil
	}

	n, err := p.sink.ImportBooks(books)
	if err != nil {
		return result, fmt.Errorf("failed to import books: %w", err)
	}
	result.BooksImported = n

	return result, nil
}
