// Package tasks files newly liked tracks into month-named playlists with real-time progress reporting.
//
// # Run
//
// [Synchronizer.Run] moves through these phases:
//
//  1. FetchingSaved : pages through liked tracks, newest first, until a page reaches back past the watermark
//  2. Filtering : keeps only tracks liked strictly after the watermark
//  3. FetchingCollections : lists every playlist of the user into a [CollectionIndex]
//  4. Reconciling : finds or creates each month's playlist and adds the tracks it is missing
//
// A successful run advances the watermark to the newest liked track it saw. Any failure aborts
// the run with the watermark untouched; tracks added before the failure stay added and are skipped
// as already present next time.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [Synchronizer] drives a [Library], which [services.SpotifyService] implements. Playlists are
// wrapped in [Collection], which loads membership on first use and remembers what it added.
package tasks
