package domain

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message within a session's history. Immutable once appended.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Session is a server-side conversational context keyed by an opaque UUID.
// The session store exclusively owns Session values; handlers only ever see
// copies of the turn history.
type Session struct {
	ID         string
	Turns      []Turn
	CreatedAt  time.Time
	LastActive time.Time
}
