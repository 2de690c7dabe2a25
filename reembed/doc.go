// Package reembed regenerates embedding vectors for stored audit findings.
//
// A full run reembeds every record in the database, which is how an
// embedding model change is rolled out. With Config.OnlyMissing set, the
// run becomes a warm-up pass that embeds only records without a vector and
// leaves existing vectors untouched.
//
// The package batches records, retries embedding calls with exponential
// backoff, normalizes vectors for cosine similarity, and reports progress
// to a configurable writer.
package reembed
