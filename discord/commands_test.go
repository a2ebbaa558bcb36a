package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/neilotoole/slogt"

	"github.com/kudoslabs/discord-kudos-bot/kudos"
)

func TestCommands_login(t *testing.T) {
	tests := []struct {
		name       string
		balanceErr error
		upsertErr  error
		wantReply  string
		wantErr    bool
		wantStored *kudos.UserRecord
	}{
		{
			name:      "OK",
			wantReply: "Logged in as someone. Reactions now move kudos on your behalf.",
			wantStored: &kudos.UserRecord{
				ID:         "u1",
				Username:   "someone",
				Credential: "key-1",
			},
		},
		{
			name:       "BadKey",
			balanceErr: errors.New("ledger responded 401"),
			wantReply:  "Could not verify your API key. Double-check it and try again.",
			wantErr:    true,
		},
		{
			name:      "StoreError",
			upsertErr: errors.New("connection refused"),
			wantErr:   true,
			wantStored: &kudos.UserRecord{
				ID:         "u1",
				Username:   "someone",
				Credential: "key-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &testStore{
				T:         t,
				upsertErr: tt.upsertErr,
			}
			c := &Commands{
				Logger: slogt.New(t),
				Store:  store,
				Ledger: &testLedger{T: t, err: tt.balanceErr},
			}

			reply, err := c.login(context.Background(), "u1", options{
				strs: map[string]string{"username": "someone", "api_key": "key-1"},
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("Got error %v, wantErr %t", err, tt.wantErr)
			}
			if reply != tt.wantReply {
				t.Errorf("Got reply %q, want %q", reply, tt.wantReply)
			}
			if diff := cmp.Diff(store.upserted, tt.wantStored); diff != "" {
				t.Errorf("Stored record diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestCommands_balance(t *testing.T) {
	tests := []struct {
		name       string
		store      *testStore
		balance    int
		balanceErr error
		wantReply  string
		wantErr    bool
	}{
		{
			name: "OK",
			store: &testStore{
				rec: &kudos.UserRecord{ID: "u1", Username: "someone", Credential: "key-1"},
			},
			balance:   12500,
			wantReply: "You have 12,500 kudos.",
		},
		{
			name:      "NotLoggedIn",
			store:     &testStore{},
			wantReply: "You are not logged in. Please use /login first.",
		},
		{
			name: "LedgerError",
			store: &testStore{
				rec: &kudos.UserRecord{ID: "u1", Username: "someone", Credential: "key-1"},
			},
			balanceErr: errors.New("connection refused"),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.store.T = t
			ledger := &testLedger{T: t, balance: tt.balance, err: tt.balanceErr, wantKey: "key-1"}
			c := &Commands{
				Logger: slogt.New(t),
				Store:  tt.store,
				Ledger: ledger,
			}

			reply, err := c.balance(context.Background(), "u1", options{})

			if (err != nil) != tt.wantErr {
				t.Fatalf("Got error %v, wantErr %t", err, tt.wantErr)
			}
			if reply != tt.wantReply {
				t.Errorf("Got reply %q, want %q", reply, tt.wantReply)
			}
		})
	}
}

func TestCommands_muteNotifications(t *testing.T) {
	registered := func() *testStore {
		return &testStore{
			rec: &kudos.UserRecord{ID: "u1", Username: "someone", Credential: "key-1"},
		}
	}

	tests := []struct {
		name         string
		store        *testStore
		opts         options
		wantReply    string
		wantSettings *kudos.NotificationSettings
	}{
		{
			name:  "MuteSend",
			store: registered(),
			opts: options{
				strs: map[string]string{"direction": "send"},
				ints: map[string]int64{},
			},
			wantReply:    "You will no longer get send notifications.",
			wantSettings: &kudos.NotificationSettings{Send: intp(kudos.NeverNotify)},
		},
		{
			name:  "ThresholdReceive",
			store: registered(),
			opts: options{
				strs: map[string]string{"direction": "receive"},
				ints: map[string]int64{"threshold": 1500},
			},
			wantReply:    "You will only get receive notifications for amounts of at least 1,500.",
			wantSettings: &kudos.NotificationSettings{Receive: intp(1500)},
		},
		{
			name:  "MuteBoth",
			store: registered(),
			opts: options{
				strs: map[string]string{"direction": "both"},
				ints: map[string]int64{},
			},
			wantReply: "You will no longer get kudos notifications.",
			wantSettings: &kudos.NotificationSettings{
				Send:    intp(kudos.NeverNotify),
				Receive: intp(kudos.NeverNotify),
			},
		},
		{
			name: "KeepsOtherDirection",
			store: &testStore{
				rec: &kudos.UserRecord{
					ID:            "u1",
					Username:      "someone",
					Credential:    "key-1",
					Notifications: &kudos.NotificationSettings{Receive: intp(500)},
				},
			},
			opts: options{
				strs: map[string]string{"direction": "send"},
				ints: map[string]int64{},
			},
			wantReply: "You will no longer get send notifications.",
			wantSettings: &kudos.NotificationSettings{
				Send:    intp(kudos.NeverNotify),
				Receive: intp(500),
			},
		},
		{
			name:  "NegativeThreshold",
			store: registered(),
			opts: options{
				strs: map[string]string{"direction": "send"},
				ints: map[string]int64{"threshold": -5},
			},
			wantReply: "The threshold must be a positive amount.",
		},
		{
			name:  "NotLoggedIn",
			store: &testStore{},
			opts: options{
				strs: map[string]string{"direction": "send"},
				ints: map[string]int64{},
			},
			wantReply: "You are not logged in. Please use /login first.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.store.T = t
			c := &Commands{
				Logger: slogt.New(t),
				Store:  tt.store,
				Ledger: &testLedger{T: t},
			}

			reply, err := c.muteNotifications(context.Background(), "u1", tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if reply != tt.wantReply {
				t.Errorf("Got reply %q, want %q", reply, tt.wantReply)
			}
			if diff := cmp.Diff(tt.store.settings, tt.wantSettings); diff != "" {
				t.Errorf("Stored settings diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestCommandKinds(t *testing.T) {
	want := []string{"login", "balance", "mute-notifications"}
	for _, name := range want {
		if _, ok := commandKinds[name]; !ok {
			t.Errorf("Command %q is not dispatchable", name)
		}
	}
	if len(commandKinds) != len(want) {
		t.Errorf("Got %d commands, want %d", len(commandKinds), len(want))
	}
}

func TestAPIName(t *testing.T) {
	tests := []struct {
		name  string
		emoji kudos.Emoji
		want  string
	}{
		{name: "Unicode", emoji: kudos.Emoji{Name: "👏"}, want: "👏"},
		{name: "Custom", emoji: kudos.Emoji{Name: "party_gold", ID: "112233"}, want: "party_gold:112233"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apiName(tt.emoji); got != tt.want {
				t.Errorf("Got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageURL(t *testing.T) {
	got := messageURL("g1", "c1", "m1")
	want := "https://discord.com/channels/g1/c1/m1"
	if got != want {
		t.Errorf("Got %q, want %q", got, want)
	}
}

type testStore struct {
	T *testing.T

	rec       *kudos.UserRecord
	upsertErr error

	upserted *kudos.UserRecord
	settings *kudos.NotificationSettings
}

func (s *testStore) GetUser(_ context.Context, userID string) (kudos.UserRecord, error) {
	if s.rec == nil || s.rec.ID != userID {
		return kudos.UserRecord{}, kudos.ErrUserNotFound
	}
	return *s.rec, nil
}

func (s *testStore) UpsertUser(_ context.Context, rec kudos.UserRecord) error {
	s.upserted = &rec
	return s.upsertErr
}

func (s *testStore) SetNotifications(_ context.Context, userID string, n *kudos.NotificationSettings) error {
	if s.rec == nil || s.rec.ID != userID {
		return kudos.ErrUserNotFound
	}
	s.settings = n
	return nil
}

type testLedger struct {
	T *testing.T

	balance int
	err     error
	wantKey string
}

func (l *testLedger) Balance(_ context.Context, credential string) (int, error) {
	if l.wantKey != "" && credential != l.wantKey {
		l.T.Errorf("Got credential %q, want %q", credential, l.wantKey)
	}
	if l.err != nil {
		return 0, l.err
	}
	return l.balance, nil
}
