package kudos

import "testing"

func TestRenderer_Render(t *testing.T) {
	tests := []struct {
		name   string
		def    string
		tmpl   string
		values map[string]any
		want   string
	}{
		{
			name: "VerbatimValues",
			tmpl: "{{user_mention}} sent {{amount}}",
			values: map[string]any{
				"user_mention": "<@42> ",
				"amount":       "1,500",
			},
			want: "<@42>  sent 1,500",
		},
		{
			name: "NoEscaping",
			tmpl: "{{user_mention}}gave you kudos: {{message_url}}",
			values: map[string]any{
				"user_mention": "<@99> ",
				"message_url":  "https://example.com/a?b=1&c=<2>",
			},
			want: "<@99> gave you kudos: https://example.com/a?b=1&c=<2>",
		},
		{
			name: "EmptyTemplateFallsBackToDefault",
			def:  "You got {{amount}} kudos!",
			tmpl: "",
			values: map[string]any{
				"amount": "10",
			},
			want: "You got 10 kudos!",
		},
		{
			name: "UnknownPlaceholderDropped",
			tmpl: "hello {{nobody}}world",
			values: map[string]any{
				"amount": "10",
			},
			want: "hello world",
		},
		{
			name:   "NoPlaceholders",
			tmpl:   "plain text",
			values: map[string]any{},
			want:   "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Renderer{Default: tt.def}
			if got := r.Render(tt.tmpl, tt.values); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{n: 0, want: "0"},
		{n: 7, want: "7"},
		{n: 1500, want: "1,500"},
		{n: 1234567, want: "1,234,567"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.n); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
