// Package config loads the bot's TOML configuration.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/kudoslabs/discord-kudos-bot/kudos"
)

// Config is everything the bot needs at startup.
type Config struct {
	Discord  Discord  `toml:"discord"`
	Postgres Postgres `toml:"postgres"`
	Redis    Redis    `toml:"redis"`
	Ledger   Ledger   `toml:"ledger"`
	Kudos    Kudos    `toml:"kudos"`
}

type Discord struct {
	Token string `toml:"token"`
}

type Postgres struct {
	ConnString string `toml:"connection_string"`
}

type Redis struct {
	Address string `toml:"address"`
}

type Ledger struct {
	BaseURL string `toml:"base_url"`
}

// Kudos configures the emoji registry and message rendering.
type Kudos struct {
	// UseEmojiNames selects matching reactions on the emoji name instead
	// of the platform-assigned emoji id.
	UseEmojiNames  bool             `toml:"use_emoji_names"`
	DefaultMessage string           `toml:"default_message"`
	Emojis         map[string]Emoji `toml:"emojis"`
}

// Emoji is one entry of the emoji table, keyed by its identifier.
type Emoji struct {
	Value   int    `toml:"value"`
	Message string `toml:"message"`
}

// Load decodes and validates the TOML configuration at path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	if c.Ledger.BaseURL == "" {
		return fmt.Errorf("ledger.base_url is required")
	}
	if c.Kudos.DefaultMessage == "" {
		return fmt.Errorf("kudos.default_message is required")
	}
	if len(c.Kudos.Emojis) == 0 {
		return fmt.Errorf("at least one kudos.emojis entry is required")
	}
	for id, e := range c.Kudos.Emojis {
		if e.Value <= 0 {
			return fmt.Errorf("kudos.emojis.%s: value must be positive", id)
		}
	}
	return nil
}

// EmojiDefinitions converts the emoji table into registry definitions.
func (k Kudos) EmojiDefinitions() []kudos.EmojiDefinition {
	defs := make([]kudos.EmojiDefinition, 0, len(k.Emojis))
	for id, e := range k.Emojis {
		defs = append(defs, kudos.EmojiDefinition{
			Identifier:      id,
			Value:           e.Value,
			MessageTemplate: e.Message,
		})
	}
	return defs
}
