package kudos

// A UserRecord is a registered user's entry in the user directory. The
// credential is the opaque secret presented to the ledger when a transfer is
// made on the user's behalf.
type UserRecord struct {
	ID            string
	Username      string
	Credential    string
	Notifications *NotificationSettings
}

// SendThreshold returns the user's send-direction notification threshold, or
// nil when none is set.
func (u UserRecord) SendThreshold() *int {
	if u.Notifications == nil {
		return nil
	}
	return u.Notifications.Send
}

// ReceiveThreshold returns the user's receive-direction notification
// threshold, or nil when none is set.
func (u UserRecord) ReceiveThreshold() *int {
	if u.Notifications == nil {
		return nil
	}
	return u.Notifications.Receive
}

// NotificationSettings holds per-direction notification thresholds. A nil
// threshold means always notify, NeverNotify means never, and any other value
// N means notify only for amounts of at least N.
type NotificationSettings struct {
	Send    *int
	Receive *int
}

// An Emoji identifies a reaction emoji the way the platform reported it:
// custom emoji carry a platform id, unicode emoji only a name.
type Emoji struct {
	Name string
	ID   string
}

// An EmojiDefinition assigns a point value to a configured emoji. An empty
// MessageTemplate means the recipient message uses the default template.
type EmojiDefinition struct {
	Identifier      string
	Value           int
	MessageTemplate string
}

// A User is a fully resolved platform user.
type User struct {
	ID       string
	Username string
}

// A Message is a fully resolved platform message.
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	URL       string
}

// A UserHandle is a two-state reference to a platform user: either just the
// id needed to fetch the user, or the already resolved user. Callers must
// resolve the handle before reading anything beyond the id.
type UserHandle struct {
	ID string

	full *User
}

// UserRef returns an unresolved handle for the given platform user id.
func UserRef(id string) UserHandle {
	return UserHandle{ID: id}
}

// ResolvedUser returns a handle that already carries the full user.
func ResolvedUser(u User) UserHandle {
	return UserHandle{ID: u.ID, full: &u}
}

// Resolved returns the full user and whether the handle carries one.
func (h UserHandle) Resolved() (User, bool) {
	if h.full == nil {
		return User{}, false
	}
	return *h.full, true
}

// A MessageHandle is a two-state reference to a platform message, mirroring
// UserHandle. GuildID is carried so the adapter can build the message URL
// when resolving.
type MessageHandle struct {
	ID        string
	ChannelID string
	GuildID   string

	full *Message
}

// MessageRef returns an unresolved handle for the given message.
func MessageRef(guildID, channelID, messageID string) MessageHandle {
	return MessageHandle{ID: messageID, ChannelID: channelID, GuildID: guildID}
}

// ResolvedMessage returns a handle that already carries the full message.
func ResolvedMessage(guildID string, m Message) MessageHandle {
	return MessageHandle{ID: m.ID, ChannelID: m.ChannelID, GuildID: guildID, full: &m}
}

// Resolved returns the full message and whether the handle carries one.
func (h MessageHandle) Resolved() (Message, bool) {
	if h.full == nil {
		return Message{}, false
	}
	return *h.full, true
}

// A ReactionEvent is one reaction-added platform event. It lives only for the
// duration of a single HandleReaction call and is never persisted.
type ReactionEvent struct {
	Emoji   Emoji
	Reactor UserHandle
	Message MessageHandle
}
