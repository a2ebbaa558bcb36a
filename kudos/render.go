package kudos

import (
	"github.com/valyala/fasttemplate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	placeholderStart = "{{"
	placeholderEnd   = "}}"
)

// A Renderer produces recipient-facing message text by literal placeholder
// substitution. Values are inserted verbatim, without any escaping: they may
// contain platform mention syntax that has to survive as-is.
type Renderer struct {
	// Default is the template used when an emoji has none of its own.
	Default string
}

// Render substitutes {{name}} placeholders in tmpl with the given values. An
// empty tmpl falls back to the default template. Placeholders without a value
// are dropped.
func (r Renderer) Render(tmpl string, values map[string]any) string {
	if tmpl == "" {
		tmpl = r.Default
	}
	return fasttemplate.ExecuteString(tmpl, placeholderStart, placeholderEnd, values)
}

var amounts = message.NewPrinter(language.English)

// FormatAmount formats a kudos amount with en-US digit grouping, e.g. 1500
// becomes "1,500".
func FormatAmount(n int) string {
	return amounts.Sprintf("%d", n)
}
