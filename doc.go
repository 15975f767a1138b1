// Package gomarketcap is a client for coinmarketcap.com market data. It
// combines the public JSON ticker API with HTML scraping of the site's
// listing pages and normalizes both into the typed records of pkg/model.
//
// A Client is constructed with New, which bootstraps the symbol table once;
// every later call resolves symbols, slugs and display names through that
// cached table. Numeric fields parse into shopspring decimals, with
// upstream placeholder cells ("?", "Low Vol") surfacing as nil pointers
// rather than zeros.
//
// Bulk scraping goes through AsyncClient: a bounded-queue fan-out over a
// pool of consumer goroutines with one dead-letter retry for timed-out
// pages. Bulk streams are unordered and permissive: a page that cannot be
// fetched or normalized is skipped, not fatal.
package gomarketcap
