package domain

// ChatType distinguishes personal conversations from groups and channels.
type ChatType string

const (
	ChatPersonal ChatType = "personal"
	ChatGroup    ChatType = "group"
	ChatChannel  ChatType = "channel"
)

// Creatable reports whether a chat of this type can be created from the client.
func (t ChatType) Creatable() bool {
	return t == ChatGroup || t == ChatChannel
}

// Chat is an entry of the chat list.
type Chat struct {
	ID          int64    `json:"id"`
	Type        ChatType `json:"type"`
	Name        string   `json:"name"`
	Username    string   `json:"username,omitempty"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	LastMessage string   `json:"last_message,omitempty"`
	Time        string   `json:"time,omitempty"`
	Unread      int      `json:"unread"`
	Online      bool     `json:"online"`
	Members     int      `json:"members,omitempty"`
	Subscribers int      `json:"subscribers,omitempty"`
}

// ChatTab is a chat list filter tab.
type ChatTab string

const (
	TabAll      ChatTab = "all"
	TabGroups   ChatTab = "groups"
	TabChannels ChatTab = "channels"
)

// Matches reports whether a chat belongs under the tab.
func (t ChatTab) Matches(c Chat) bool {
	switch t {
	case TabGroups:
		return c.Type == ChatGroup
	case TabChannels:
		return c.Type == ChatChannel
	default:
		return true
	}
}

// Sender tells who wrote a message from the point of view of the session owner.
type Sender string

const (
	SenderMe    Sender = "me"
	SenderOther Sender = "other"
)

// Message is a chat message held locally by the open conversation.
type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
	Time   string `json:"time"`
}

// SelectedChat is the conversation currently open in the chats view.
type SelectedChat struct {
	Chat     Chat      `json:"chat"`
	Messages []Message `json:"messages"`
	Draft    string    `json:"draft"`
}
