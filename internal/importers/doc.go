// Package importers loads book catalogs into the tracker.
//
// # Architecture
//
// The import pipeline follows a simple flow:
//
//	Catalog file → Parser → CatalogRow → Pipeline → entities.Book → BookSink
//
// Each file format has a parser that turns the file into CatalogRows plus a
// list of per-line problems. The Pipeline validates rows, drops duplicates
// and hands the surviving books to the sink in one batch.
//
// # Supported Formats
//
//   - JSON: an array of objects (catalog_json.go)
//   - CSV: a header row followed by one book per line (catalog_csv.go)
//
// Both formats accept "total_pages" or "pages" for the page count and
// "name" or "title" for the book name.
//
// # Example Usage
//
//	pipeline := importers.NewPipeline(tracker)
//	result, err := pipeline.ImportFile("./books.csv")
package importers
