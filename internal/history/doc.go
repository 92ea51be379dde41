// Package history records completed downloads in a small SQLite database.
//
// Entries are listed most recent first and capped at a configured maximum;
// adding beyond the cap drops the oldest rows in the same transaction.
// Search matches title, channel or URL case-insensitively.
package history
