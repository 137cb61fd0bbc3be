package model

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single entry in the conversation transcript. Messages are
// never modified after they are appended to a Session.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
