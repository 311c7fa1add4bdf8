// Package room provides the group publish/subscribe substrate that chat
// messages and presence snapshots ride on.
//
// # Rooms and Keys
//
// A room is a logical broadcast group identified by a string key. The
// public room uses the fixed PublicKey; each private pair of users gets a
// deterministic key from PrivateKey, which sorts the two numeric ids so
// both sides of the conversation derive the same key.
//
// # Events
//
// Two event kinds flow through a room, modeled as a tagged union (Event
// with a Kind discriminator) rather than loose maps:
//
//   - chat_message: a line of chat with its sender's username
//   - user_list: a sorted snapshot of public-room usernames
//
// # Delivery Semantics
//
// Publish delivers each event atomically to every channel joined to the
// key at publish time, including the publisher's own channel if joined.
// Delivery across distinct publishes is unordered; there is no replay for
// late joiners. Sends never block: a subscriber whose channel is full
// misses that event. Publishing to an empty room is a no-op.
package room
