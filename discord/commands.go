package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/kudoslabs/discord-kudos-bot/kudos"
)

// commandKind enumerates the slash commands the bot registers. Dispatch goes
// through this closed set, never through raw command names.
type commandKind int

const (
	cmdLogin commandKind = iota
	cmdBalance
	cmdMuteNotifications
)

// The command names users see.
const (
	loginName   = "login"
	balanceName = "balance"
	muteName    = "mute-notifications"
)

var commandKinds = map[string]commandKind{
	loginName:   cmdLogin,
	balanceName: cmdBalance,
	muteName:    cmdMuteNotifications,
}

const genericErrorReply = "Something went wrong. Please try again later."

// A DirectoryStore is the read/write user directory the command surface
// shares with the reaction workflow.
type DirectoryStore interface {
	GetUser(ctx context.Context, userID string) (kudos.UserRecord, error)
	UpsertUser(ctx context.Context, rec kudos.UserRecord) error
	SetNotifications(ctx context.Context, userID string, n *kudos.NotificationSettings) error
}

// A Ledger exposes the balance endpoint used for login verification and the
// balance command.
type Ledger interface {
	Balance(ctx context.Context, credential string) (int, error)
}

// Commands implements the slash-command surface: login, balance and
// mute-notifications. All replies are ephemeral.
type Commands struct {
	Logger *slog.Logger
	Store  DirectoryStore
	Cache  kudos.DirectoryCache // optional, invalidated on writes
	Ledger Ledger

	once     sync.Once
	handlers map[commandKind]handlerFunc
}

type handlerFunc func(ctx context.Context, userID string, opts options) (string, error)

func (c *Commands) setup() {
	c.handlers = map[commandKind]handlerFunc{
		cmdLogin:             c.login,
		cmdBalance:           c.balance,
		cmdMuteNotifications: c.muteNotifications,
	}
}

// register creates the application commands globally.
func (c *Commands) register(dg *discordgo.Session) error {
	defs := []*discordgo.ApplicationCommand{
		{
			Name:        loginName,
			Description: "Link your kudos account to receive and give kudos",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "username",
					Description: "Your kudos account username",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "api_key",
					Description: "Your kudos API key",
					Required:    true,
				},
			},
		},
		{
			Name:        balanceName,
			Description: "Show your current kudos balance",
		},
		{
			Name:        muteName,
			Description: "Mute kudos notifications or raise their threshold",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "direction",
					Description: "Which notifications to change",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "send", Value: "send"},
						{Name: "receive", Value: "receive"},
						{Name: "both", Value: "both"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "threshold",
					Description: "Only notify for amounts of at least this; omit to mute entirely",
				},
			},
		},
	}

	appID := dg.State.User.ID
	for _, def := range defs {
		if _, err := dg.ApplicationCommandCreate(appID, "", def); err != nil {
			return fmt.Errorf("register %s: %w", def.Name, err)
		}
	}
	return nil
}

// handleInteraction dispatches one slash-command invocation and replies
// ephemerally. Unknown interactions are ignored.
func (c *Commands) handleInteraction(dg *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	c.once.Do(c.setup)

	data := i.ApplicationCommandData()
	kind, ok := commandKinds[data.Name]
	if !ok {
		return
	}
	userID := interactionUserID(i)
	if userID == "" {
		return
	}

	reply, err := c.handlers[kind](context.Background(), userID, parseOptions(data.Options))
	if err != nil {
		c.Logger.Error("Command failed", "command", data.Name, "user_id", userID, "error", err.Error())
		if reply == "" {
			reply = genericErrorReply
		}
	}

	err = dg.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		c.Logger.Error("Could not respond to interaction", "command", data.Name, "error", err.Error())
	}
}

func (c *Commands) login(ctx context.Context, userID string, opts options) (string, error) {
	username := opts.str("username")
	key := opts.str("api_key")

	// Verify the key before storing it so a typo fails here, not on the
	// first transfer.
	if _, err := c.Ledger.Balance(ctx, key); err != nil {
		return "Could not verify your API key. Double-check it and try again.",
			fmt.Errorf("verify credential: %w", err)
	}

	err := c.Store.UpsertUser(ctx, kudos.UserRecord{
		ID:         userID,
		Username:   username,
		Credential: key,
	})
	if err != nil {
		return "", fmt.Errorf("store user: %w", err)
	}
	c.invalidate(ctx, userID)

	return fmt.Sprintf("Logged in as %s. Reactions now move kudos on your behalf.", username), nil
}

func (c *Commands) balance(ctx context.Context, userID string, _ options) (string, error) {
	rec, err := c.Store.GetUser(ctx, userID)
	if errors.Is(err, kudos.ErrUserNotFound) {
		return "You are not logged in. Please use /login first.", nil
	}
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}

	n, err := c.Ledger.Balance(ctx, rec.Credential)
	if err != nil {
		return "", fmt.Errorf("fetch balance: %w", err)
	}
	return fmt.Sprintf("You have %s kudos.", kudos.FormatAmount(n)), nil
}

func (c *Commands) muteNotifications(ctx context.Context, userID string, opts options) (string, error) {
	direction := opts.str("direction")
	threshold := kudos.NeverNotify
	if v, ok := opts.integer("threshold"); ok {
		threshold = int(v)
	}
	if threshold < 0 && threshold != kudos.NeverNotify {
		return "The threshold must be a positive amount.", nil
	}

	rec, err := c.Store.GetUser(ctx, userID)
	if errors.Is(err, kudos.ErrUserNotFound) {
		return "You are not logged in. Please use /login first.", nil
	}
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}

	settings := rec.Notifications
	if settings == nil {
		settings = &kudos.NotificationSettings{}
	}
	switch direction {
	case "send":
		settings.Send = intp(threshold)
	case "receive":
		settings.Receive = intp(threshold)
	case "both":
		settings.Send = intp(threshold)
		settings.Receive = intp(threshold)
	default:
		return "Unknown direction. Use send, receive or both.", nil
	}

	if err := c.Store.SetNotifications(ctx, userID, settings); err != nil {
		return "", fmt.Errorf("store notifications: %w", err)
	}
	c.invalidate(ctx, userID)

	if threshold == kudos.NeverNotify {
		return fmt.Sprintf("You will no longer get %s notifications.", describeDirection(direction)), nil
	}
	return fmt.Sprintf("You will only get %s notifications for amounts of at least %s.",
		describeDirection(direction), kudos.FormatAmount(threshold)), nil
}

// invalidate drops the cached record after a directory write. Best-effort:
// the cache TTL bounds how long a failure here can matter.
func (c *Commands) invalidate(ctx context.Context, userID string) {
	if c.Cache == nil {
		return
	}
	if err := c.Cache.DeleteUser(ctx, userID); err != nil {
		c.Logger.Error("Could not invalidate cached user", "user_id", userID, "error", err.Error())
	}
}

func describeDirection(direction string) string {
	if direction == "both" {
		return "kudos"
	}
	return direction
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// options holds the decoded option values of one invocation.
type options struct {
	strs map[string]string
	ints map[string]int64
}

func parseOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	o := options{
		strs: make(map[string]string),
		ints: make(map[string]int64),
	}
	for _, opt := range opts {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			o.strs[opt.Name] = opt.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			o.ints[opt.Name] = opt.IntValue()
		}
	}
	return o
}

func (o options) str(name string) string {
	return o.strs[name]
}

func (o options) integer(name string) (int64, bool) {
	v, ok := o.ints[name]
	return v, ok
}

func intp(n int) *int {
	return &n
}
