package redis

import (
	"encoding/json"

	"github.com/kudoslabs/discord-kudos-bot/kudos"
)

// A user represents a cached user record. Notification settings are stored as
// a JSON blob in a single hash field; the empty string means none are set.
type user struct {
	ID            string `redis:"id"`
	Username      string `redis:"username"`
	APIKey        string `redis:"api_key"`
	Notifications string `redis:"notifications"`
}

func (u user) Record() (kudos.UserRecord, error) {
	rec := kudos.UserRecord{
		ID:         u.ID,
		Username:   u.Username,
		Credential: u.APIKey,
	}
	if u.Notifications != "" {
		rec.Notifications = &kudos.NotificationSettings{}
		if err := json.Unmarshal([]byte(u.Notifications), rec.Notifications); err != nil {
			return kudos.UserRecord{}, err
		}
	}
	return rec, nil
}

func fromRecord(rec kudos.UserRecord) (user, error) {
	u := user{
		ID:       rec.ID,
		Username: rec.Username,
		APIKey:   rec.Credential,
	}
	if rec.Notifications != nil {
		raw, err := json.Marshal(rec.Notifications)
		if err != nil {
			return user{}, err
		}
		u.Notifications = string(raw)
	}
	return u, nil
}
