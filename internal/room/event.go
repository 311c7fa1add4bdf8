// ABOUTME: Tagged event union carried by the room broadcaster
// ABOUTME: Defines the wire shapes for chat messages and presence snapshots

package room

// Kind discriminates the event types that flow through a room.
type Kind string

const (
	// KindChatMessage is a chat line from a user or the assistant.
	KindChatMessage Kind = "chat_message"
	// KindUserList is a sorted snapshot of public-room usernames.
	KindUserList Kind = "user_list"
)

// Event is the single payload type delivered to room subscribers.
// Exactly one of the kind-specific field sets is populated; subscribers
// and clients dispatch on Type.
type Event struct {
	Type Kind `json:"type"`

	// chat_message fields
	Message  string `json:"message,omitempty"`
	Username string `json:"username,omitempty"`

	// user_list fields
	Users []string `json:"users,omitempty"`
}

// ChatMessage builds a chat_message event.
func ChatMessage(username, message string) Event {
	return Event{Type: KindChatMessage, Message: message, Username: username}
}

// UserList builds a user_list event from an already-sorted username slice.
func UserList(users []string) Event {
	return Event{Type: KindUserList, Users: users}
}
