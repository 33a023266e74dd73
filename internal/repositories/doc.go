// Package repositories implements SQLite persistence.
//
// [Open] creates the database file and applies the embedded migrations from the shared package.
//
// Key Implementations:
//   - [TokenRepository] : OAuth token cache keyed by service name, so scheduled and headless runs reuse
//     the refresh token instead of repeating the browser flow.
//
// The sync watermark is deliberately not stored here: it lives in memory for the life of the process.
package repositories
