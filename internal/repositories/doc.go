// Package repositories implements SQLite persistence for resolved queries.
//
// The single repository caches the winning candidate for each normalized
// free-text query, so repeated assemblies of overlapping track lists skip the
// search round trip entirely.
package repositories
