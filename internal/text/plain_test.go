package text

import "testing"

func TestPlain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text untouched", "Drink water.", "Drink water."},
		{"header and bold", "## Diet Tips\n**Protein at every meal.** Eggs keep you full.", "Diet Tips\nProtein at every meal. Eggs keep you full."},
		{"bullets", "- one\n* two\n+ three", "• one\n• two\n• three"},
		{"nested bullet keeps indent", "- outer\n  - inner", "• outer\n  • inner"},
		{"italic", "Try *box breathing* or _stretching_.", "Try box breathing or stretching."},
		{"snake case kept", "use my_var_name here", "use my_var_name here"},
		{"links", "[guide](https://x.io) and [https://a.b](https://a.b)", "guide (https://x.io) and https://a.b"},
		{"image", "![plate](https://x.io/p.png)", "plate"},
		{"inline code", "Run `go test` now", "Run go test now"},
		{"code fence", "```go\nfmt.Println()\n```", "fmt.Println()"},
		{"escaped markers", `\*not italic\*`, "*not italic*"},
		{"strike and html", "~~old~~ <b>new</b>", "old new"},
		{"blockquote", "> stay hydrated", "stay hydrated"},
		{"table", "| Item | Price |\n|---|---|\n| Mat | $20 |", "Item | Price\nMat | $20"},
		{"horizontal rule", "above\n---\nbelow", "above\n\nbelow"},
		{"blank lines collapsed", "one\n\n\n\ntwo", "one\n\ntwo"},
		{"invisible and control chars", "a\u200bb  c\x07d\r\ne", "ab c d\ne"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Plain(tc.in); got != tc.want {
				t.Errorf("Plain(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
