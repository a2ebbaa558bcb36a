// Package postgres stores the user directory in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/kudoslabs/discord-kudos-bot/kudos"
)

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and pings it to ensure the connection is
// working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// GetUser returns the directory record for a platform user id.
// kudos.ErrUserNotFound marks an unregistered user.
func (pg *Postgres) GetUser(ctx context.Context, userID string) (kudos.UserRecord, error) {
	var u user
	err := pg.bun.NewSelect().
		Model(&u).
		Where("id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return kudos.UserRecord{}, kudos.ErrUserNotFound
	}
	if err != nil {
		return kudos.UserRecord{}, fmt.Errorf("select user: %w", err)
	}
	return u.Record(), nil
}

// UpsertUser creates the record for a platform user or, for a repeated login,
// replaces the linked ledger account. Notification settings survive a
// re-login untouched.
func (pg *Postgres) UpsertUser(ctx context.Context, rec kudos.UserRecord) error {
	u := fromRecord(rec)
	_, err := pg.bun.NewInsert().
		Model(&u).
		On("CONFLICT (id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("api_key = EXCLUDED.api_key").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// SetNotifications replaces the user's notification thresholds. A nil
// settings restores the always-notify default.
func (pg *Postgres) SetNotifications(ctx context.Context, userID string, n *kudos.NotificationSettings) error {
	var send, receive *int
	if n != nil {
		send = n.Send
		receive = n.Receive
	}
	res, err := pg.bun.NewUpdate().
		Model((*user)(nil)).
		Set("notify_send = ?", send).
		Set("notify_receive = ?", receive).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update notifications: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return kudos.ErrUserNotFound
	}
	return nil
}
