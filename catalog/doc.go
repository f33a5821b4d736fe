// Package catalog reads labs and student profiles from JSON.
//
// Two lab formats are supported. A flat catalog is a JSON array of
// LabRecord values. Crawler output is a pair of objects, labs.json keyed by
// lab ID and documents.json keyed by document ID, which CrawlLoader folds
// into per-lab sections.
package catalog
