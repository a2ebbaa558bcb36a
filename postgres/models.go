package postgres

import (
	"time"

	"github.com/kudoslabs/discord-kudos-bot/kudos"
)

// A user represents a registered user in the database. The primary key is the
// platform user id; notify columns are NULL until the user sets a threshold.
type user struct {
	ID            string    `bun:",pk"`
	Username      string    `bun:",notnull"`
	APIKey        string    `bun:"api_key,notnull"`
	NotifySend    *int      `bun:"notify_send"`
	NotifyReceive *int      `bun:"notify_receive"`
	CreatedAt     time.Time `bun:",nullzero,default:now()"`
}

func (u user) Record() kudos.UserRecord {
	rec := kudos.UserRecord{
		ID:         u.ID,
		Username:   u.Username,
		Credential: u.APIKey,
	}
	if u.NotifySend != nil || u.NotifyReceive != nil {
		rec.Notifications = &kudos.NotificationSettings{
			Send:    u.NotifySend,
			Receive: u.NotifyReceive,
		}
	}
	return rec
}

func fromRecord(rec kudos.UserRecord) user {
	u := user{
		ID:       rec.ID,
		Username: rec.Username,
		APIKey:   rec.Credential,
	}
	if rec.Notifications != nil {
		u.NotifySend = rec.Notifications.Send
		u.NotifyReceive = rec.Notifications.Receive
	}
	return u
}
