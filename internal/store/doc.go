// Package store provides SQLite-backed persistence for accounts,
// private chat threads, and the media library.
//
// # Private Threads
//
// A thread is identified by its normalized user pair (low ID, high ID),
// backed by a UNIQUE index. ResolveThread is the only way to obtain one:
// it finds the existing thread or creates it, and resolves the
// create/create race by re-reading the winner's row, so concurrent
// resolution for the same pair always converges on a single thread.
//
// # Messages
//
// Messages persist before any broadcast happens; reads return them
// ordered by creation time so a rejoining participant sees the thread in
// the order it was written.
//
// # Media
//
// Media rows carry a public flag; the store returns records as-is and
// the HTTP layer enforces owner-only visibility of private items. Likes
// are one row per (media, user) pair, so a like count is always a count
// of distinct users. Deleting a media item cascades to its likes,
// comments, and category links.
package store
