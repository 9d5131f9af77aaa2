// Package tasks turns a list of (artist, song) requests into a populated playlist, with real-time progress reporting.
//
// # Core Operations
//
//  1. [Match] : decide whether a search result is acceptable
//     - Only the top-ranked candidate is inspected
//     - Accepted when either lowercased title contains the other
//     - Artist never takes part in the decision
//
//  2. [Populator] : create and fill the playlist
//     - [Populator.Create] resolves the current user and creates the playlist
//     - [Populator.Populate] appends ids in order, at most 100 per call
//     - The first failing batch aborts with a [*BatchError]; earlier batches stay committed
//
//  3. [ImportEngine.Run] : the whole run
//     - Creates the playlist (unless dry run)
//     - One search and one pause per request
//     - Populates once with every matched id and returns a [models.RunSummary]
//
// # Pacing
//
// Every search call and every append call is followed by a [Pacer] pause, regardless of the call's outcome.
// [FixedPacer] sleeps a constant interval; tests use [NoPacing] or a [PacerFunc].
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
