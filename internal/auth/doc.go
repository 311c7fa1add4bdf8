// Package auth provides account registration, bcrypt password
// verification, and cookie-backed server-side sessions.
//
// Sessions are opaque UUIDs stored in SQLite; the cookie carries only
// the ID. Login failures return ErrInvalidCredentials for both unknown
// usernames and wrong passwords. RequireUser and OptionalUser wrap
// handlers and expose the resolved identity through UserFromContext and
// SessionFromContext.
package auth
