// Package models defines the value types that flow through a csvlist import run.
//
//   - [Request] : one (artist, song) row from the input table
//   - [Candidate] : one catalog search result
//   - [Outcome] : the per-request match decision, tagged with a [Reason]
//   - [RunSummary] : totals and ordered matched/unmatched rows for a run
//   - [Playlist] : the playlist created by a run
//
// Nothing here is persisted; every value lives for a single run.
package models
