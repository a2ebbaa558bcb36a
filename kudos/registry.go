package kudos

// An EmojiRegistry maps emoji identifiers to their configured point values.
// It is built once at startup and read-only afterwards.
type EmojiRegistry struct {
	defs   map[string]EmojiDefinition
	byName bool
}

// NewEmojiRegistry builds a registry from the configured definitions. When
// matchByName is true events are matched on the emoji name, otherwise on the
// platform-assigned emoji id.
func NewEmojiRegistry(defs []EmojiDefinition, matchByName bool) *EmojiRegistry {
	m := make(map[string]EmojiDefinition, len(defs))
	for _, def := range defs {
		m[def.Identifier] = def
	}
	return &EmojiRegistry{defs: m, byName: matchByName}
}

// Resolve looks up the definition for a reaction emoji. A miss means the
// emoji does not award kudos and the event should be ignored.
func (r *EmojiRegistry) Resolve(e Emoji) (EmojiDefinition, bool) {
	id := e.ID
	if r.byName {
		id = e.Name
	}
	def, ok := r.defs[id]
	return def, ok
}
