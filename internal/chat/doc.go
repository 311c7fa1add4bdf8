// Package chat serves the WebSocket endpoints for the public room and
// private two-party threads.
//
// # Connection Model
//
// Each connection gets two goroutines: the read pump processes inbound
// frames strictly in arrival order, and the write pump is the only
// goroutine that writes the socket, draining a buffered send channel.
// Fan-out to a slow connection drops events rather than stalling the
// room. Teardown is funneled through a sync.Once, so a read error, a
// write error, and an explicit close can all race without double-
// running the disconnect cleanup.
//
// # Public Room
//
// Every authenticated user shares one room. Joining and leaving update
// the presence tracker and push a sorted user_list snapshot to
// everyone. A frame that isn't valid JSON with a non-empty message is
// logged and dropped; the connection stays open.
//
// Messages starting with "@bot " (case-insensitive) are assistant
// queries: the requester sees their own message echoed and then the
// assistant's reply, keyed to their session's conversation history.
// The rest of the room sees neither.
//
// # Private Threads
//
// /ws/chat/{userID} connects the caller to their thread with that peer.
// The thread row is resolved (or created) before the upgrade, and each
// message is persisted before it fans out, so no message is ever
// delivered that a rejoin wouldn't replay. "@bot" queries work exactly
// as in the public room: routed to the assistant, visible only to the
// requester, and never persisted to the thread.
package chat
