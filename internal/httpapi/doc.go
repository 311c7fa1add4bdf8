// Package httpapi serves the JSON API for accounts, the chatbot, and
// the media library.
//
// Routes use method-qualified ServeMux patterns, so a wrong method gets
// 405 from the router itself. Authentication is a session cookie;
// endpoints that work both ways (the chatbot, public media reads) use
// OptionalUser and branch on whether an identity is present.
//
// The chatbot endpoint deliberately answers 200 when the LLM backend
// fails: the fixed fallback string is the reply the user sees, and only
// internal storage failures surface as 500.
//
// Private media items are reported as 404 to anyone but their owner, so
// the API never confirms that a hidden item exists.
package httpapi
