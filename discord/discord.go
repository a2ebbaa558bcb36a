// Package discord adapts the kudos workflow to the Discord gateway and REST
// API.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/kudoslabs/discord-kudos-bot/kudos"
)

// Session wraps a discordgo session. It feeds reaction events to a kudos.Bot
// and implements kudos.Platform for the bot's outbound needs.
type Session struct {
	Logger *slog.Logger

	dg *discordgo.Session
}

// New creates a Discord session for the given bot token. The session is not
// connected until Open is called.
func New(token string, logger *slog.Logger) (*Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions
	return &Session{
		Logger: logger,
		dg:     dg,
	}, nil
}

// Open connects to the gateway, routes reaction events to bot and
// interactions to commands, and registers the slash commands. Each reaction
// event is handled on its own goroutine so a slow downstream call never
// blocks the event stream.
func (s *Session) Open(bot *kudos.Bot, commands *Commands) error {
	s.dg.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		go bot.HandleReaction(context.Background(), reactionEvent(r))
	})
	s.dg.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		commands.handleInteraction(s.dg, i)
	})

	if err := s.dg.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	if err := commands.register(s.dg); err != nil {
		s.dg.Close()
		return fmt.Errorf("register commands: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (s *Session) Close() error {
	return s.dg.Close()
}

// reactionEvent translates a gateway reaction-added payload. The message is
// always a partial reference; the reacting user is resolved already when the
// gateway included the guild member.
func reactionEvent(r *discordgo.MessageReactionAdd) kudos.ReactionEvent {
	ev := kudos.ReactionEvent{
		Emoji:   kudos.Emoji{Name: r.Emoji.Name, ID: r.Emoji.ID},
		Reactor: kudos.UserRef(r.UserID),
		Message: kudos.MessageRef(r.GuildID, r.ChannelID, r.MessageID),
	}
	if r.Member != nil && r.Member.User != nil {
		ev.Reactor = kudos.ResolvedUser(kudos.User{
			ID:       r.Member.User.ID,
			Username: r.Member.User.Username,
		})
	}
	return ev
}

// ResolveMessage fetches the full message behind a partial reference.
func (s *Session) ResolveMessage(ctx context.Context, ref kudos.MessageHandle) (kudos.Message, error) {
	m, err := s.dg.ChannelMessage(ref.ChannelID, ref.ID, discordgo.WithContext(ctx))
	if err != nil {
		return kudos.Message{}, fmt.Errorf("fetch message: %w", err)
	}
	msg := kudos.Message{
		ID:        m.ID,
		ChannelID: ref.ChannelID,
		URL:       messageURL(ref.GuildID, ref.ChannelID, ref.ID),
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
	}
	return msg, nil
}

// ResolveUser fetches the full user behind a partial reference.
func (s *Session) ResolveUser(ctx context.Context, ref kudos.UserHandle) (kudos.User, error) {
	u, err := s.dg.User(ref.ID, discordgo.WithContext(ctx))
	if err != nil {
		return kudos.User{}, fmt.Errorf("fetch user: %w", err)
	}
	return kudos.User{
		ID:       u.ID,
		Username: u.Username,
	}, nil
}

// RemoveReaction retracts the reacting user's emoji from the message.
func (s *Session) RemoveReaction(ctx context.Context, ev kudos.ReactionEvent) error {
	err := s.dg.MessageReactionRemove(ev.Message.ChannelID, ev.Message.ID, apiName(ev.Emoji), ev.Reactor.ID,
		discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("remove reaction: %w", err)
	}
	return nil
}

// SendDM delivers a plain direct message.
func (s *Session) SendDM(ctx context.Context, userID, text string) error {
	ch, err := s.dg.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create dm channel: %w", err)
	}
	if _, err := s.dg.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send dm: %w", err)
	}
	return nil
}

// SendRichDM delivers a direct message as an embed.
func (s *Session) SendRichDM(ctx context.Context, userID, text string) error {
	ch, err := s.dg.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create dm channel: %w", err)
	}
	embed := &discordgo.MessageEmbed{Description: text}
	if _, err := s.dg.ChannelMessageSendEmbed(ch.ID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send embed dm: %w", err)
	}
	return nil
}

// Mention returns Discord's mention syntax for a user id.
func (s *Session) Mention(userID string) string {
	return "<@" + userID + ">"
}

func messageURL(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// apiName is the emoji identifier the REST API expects: the bare name for
// unicode emoji, name:id for custom emoji.
func apiName(e kudos.Emoji) string {
	if e.ID == "" {
		return e.Name
	}
	return e.Name + ":" + e.ID
}
