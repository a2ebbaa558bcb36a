// Package kudos implements the reaction-to-kudos workflow: qualifying emoji
// reactions become kudos transfers between registered users, recorded by a
// remote ledger.
package kudos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrUserNotFound reports that a platform user has no directory record.
	// It marks an unregistered user, not a lookup failure.
	ErrUserNotFound = errors.New("user not registered")

	// ErrUserNotInCache reports a directory cache miss.
	ErrUserNotInCache = errors.New("user not in cache")

	// ErrInsufficientFunds reports that the ledger rejected a transfer
	// because the sender's balance cannot cover it.
	ErrInsufficientFunds = errors.New("not enough kudos")
)

// User-facing texts. Delivery of any of these is best-effort.
const (
	loginPromptText      = "You are not logged in. Please use /login in the server."
	recipientMissingText = "You can't give kudos to this user because they are not logged in."
	insufficientText     = "You don't have enough kudos."
)

// A Directory provides read access to registered user records. GetUser
// returns ErrUserNotFound for platform users without a record.
type Directory interface {
	GetUser(ctx context.Context, userID string) (UserRecord, error)
}

// A DirectoryCache is a best-effort cache in front of the Directory. GetUser
// returns ErrUserNotInCache on a miss.
type DirectoryCache interface {
	GetUser(ctx context.Context, userID string) (UserRecord, error)
	PutUser(ctx context.Context, rec UserRecord) error
	DeleteUser(ctx context.Context, userID string) error
}

// A Gateway issues authenticated kudos transfers against the remote ledger.
// Transfer returns nil on success, ErrInsufficientFunds (possibly wrapped)
// when the ledger rejects the transfer for lack of balance, and any other
// error for infrastructure failures. The Bot calls it at most once per event
// and never retries.
type Gateway interface {
	Transfer(ctx context.Context, recipientUsername string, amount int, credential string) error
}

// A Platform is the chat-platform seam: resolving partial objects, retracting
// reaction markers and delivering direct messages.
type Platform interface {
	ResolveMessage(ctx context.Context, ref MessageHandle) (Message, error)
	ResolveUser(ctx context.Context, ref UserHandle) (User, error)
	RemoveReaction(ctx context.Context, ev ReactionEvent) error
	SendDM(ctx context.Context, userID, text string) error
	SendRichDM(ctx context.Context, userID, text string) error
	Mention(userID string) string
}

// Bot coordinates a reaction event end to end: emoji resolution, party
// lookups, the transfer call and the outcome notifications. One HandleReaction
// call handles exactly one event; events are independent of each other.
type Bot struct {
	Logger    *slog.Logger
	Registry  *EmojiRegistry
	Directory Directory
	Cache     DirectoryCache // optional
	Gateway   Gateway
	Platform  Platform
	Renderer  Renderer

	dms sync.WaitGroup
}

// HandleReaction runs the workflow for one reaction-added event. It never
// returns an error: every failure is terminal for this event only and is
// logged. The reaction marker is retracted on every outcome except a
// successful transfer, where it stays on the message.
func (b *Bot) HandleReaction(ctx context.Context, ev ReactionEvent) {
	def, ok := b.Registry.Resolve(ev.Emoji)
	if !ok {
		return
	}

	msg, err := b.resolveMessage(ctx, ev.Message)
	if err != nil {
		b.Logger.Error("Could not resolve message", "message_id", ev.Message.ID, "error", err.Error())
		b.removeReaction(ctx, ev)
		return
	}
	reactor, err := b.resolveUser(ctx, ev.Reactor)
	if err != nil {
		b.Logger.Error("Could not resolve reacting user", "user_id", ev.Reactor.ID, "error", err.Error())
		b.removeReaction(ctx, ev)
		return
	}

	// Self-kudos is rejected silently.
	if reactor.ID == msg.AuthorID {
		b.removeReaction(ctx, ev)
		return
	}

	sender, err := b.lookupUser(ctx, reactor.ID)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			b.Logger.Error("Sender lookup failed", "user_id", reactor.ID, "error", err.Error())
			b.removeReaction(ctx, ev)
			return
		}
		b.removeReaction(ctx, ev)
		b.notify(ctx, reactor.ID, loginPromptText)
		return
	}
	recipient, err := b.lookupUser(ctx, msg.AuthorID)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			b.Logger.Error("Recipient lookup failed", "user_id", msg.AuthorID, "error", err.Error())
			b.removeReaction(ctx, ev)
			return
		}
		b.removeReaction(ctx, ev)
		b.notify(ctx, reactor.ID, recipientMissingText)
		return
	}

	// Rendered before the transfer so a template problem cannot strand a
	// completed transfer.
	received := b.Renderer.Render(def.MessageTemplate, map[string]any{
		"amount":       FormatAmount(def.Value),
		"user_mention": b.Platform.Mention(sender.ID) + " ",
		"message_url":  msg.URL,
	})

	notifySender := ShouldNotify(sender.SendThreshold(), def.Value)
	notifyRecipient := ShouldNotify(recipient.ReceiveThreshold(), def.Value)

	err = b.Gateway.Transfer(ctx, recipient.Username, def.Value, sender.Credential)
	switch {
	case err == nil:
		if notifySender {
			b.notify(ctx, sender.ID, fmt.Sprintf("You have given %s %s kudos.",
				b.Platform.Mention(recipient.ID), FormatAmount(def.Value)))
		}
		if notifyRecipient {
			b.notifyRich(ctx, recipient.ID, received)
		}
	case errors.Is(err, ErrInsufficientFunds):
		b.removeReaction(ctx, ev)
		b.notify(ctx, sender.ID, insufficientText)
	default:
		b.Logger.Error("Transfer failed",
			"sender", sender.ID, "recipient", recipient.ID, "amount", def.Value, "error", err.Error())
		b.removeReaction(ctx, ev)
	}
}

// Wait blocks until all detached notification sends have finished. Called on
// shutdown so in-flight DMs are not cut off.
func (b *Bot) Wait() {
	b.dms.Wait()
}

func (b *Bot) resolveMessage(ctx context.Context, ref MessageHandle) (Message, error) {
	if m, ok := ref.Resolved(); ok {
		return m, nil
	}
	return b.Platform.ResolveMessage(ctx, ref)
}

func (b *Bot) resolveUser(ctx context.Context, ref UserHandle) (User, error) {
	if u, ok := ref.Resolved(); ok {
		return u, nil
	}
	return b.Platform.ResolveUser(ctx, ref)
}

// lookupUser reads a user record through the cache. Cache failures only
// degrade to a direct directory read.
func (b *Bot) lookupUser(ctx context.Context, userID string) (UserRecord, error) {
	if b.Cache != nil {
		rec, err := b.Cache.GetUser(ctx, userID)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrUserNotInCache) {
			b.Logger.Error("Cache lookup failed, trying directory", "user_id", userID, "error", err.Error())
		}
	}
	rec, err := b.Directory.GetUser(ctx, userID)
	if err != nil {
		return UserRecord{}, err
	}
	if b.Cache != nil {
		if err := b.Cache.PutUser(ctx, rec); err != nil {
			b.Logger.Error("Could not cache user record", "user_id", userID, "error", err.Error())
		}
	}
	return rec, nil
}

func (b *Bot) removeReaction(ctx context.Context, ev ReactionEvent) {
	if err := b.Platform.RemoveReaction(ctx, ev); err != nil {
		b.Logger.Error("Could not remove reaction",
			"message_id", ev.Message.ID, "user_id", ev.Reactor.ID, "error", err.Error())
	}
}

// notify delivers a plain direct message on a detached task. Failures land in
// the log and never alter the event's outcome.
func (b *Bot) notify(ctx context.Context, userID, text string) {
	b.detach(ctx, userID, func(ctx context.Context) error {
		return b.Platform.SendDM(ctx, userID, text)
	})
}

// notifyRich is notify with rich (embedded) content.
func (b *Bot) notifyRich(ctx context.Context, userID, text string) {
	b.detach(ctx, userID, func(ctx context.Context) error {
		return b.Platform.SendRichDM(ctx, userID, text)
	})
}

func (b *Bot) detach(ctx context.Context, userID string, send func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	b.dms.Add(1)
	go func() {
		defer b.dms.Done()
		if err := send(ctx); err != nil {
			b.Logger.Error("Could not deliver DM", "user_id", userID, "error", err.Error())
		}
	}()
}
