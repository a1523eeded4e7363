// Package storage manages downloaded media files on disk.
//
// The Manager type creates the output directory, writes media atomically
// via a temp-file rename, and keeps an in-memory set of saved filenames so
// repeat downloads of the same post can be skipped cheaply. Existing files
// are scanned on startup so the duplicate check survives restarts.
package storage
