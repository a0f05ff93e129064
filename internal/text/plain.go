// Package text converts model output to plain text suitable for chat
// clients that do not render markdown.
package text

import (
	"regexp"
	"strings"
)

var (
	invisibleReplacer = strings.NewReplacer(
		"\u200B", "", "\u200C", "", "\u200D", "", "\u2060", "", "\uFEFF", "",
		"\u00AD", "", "\u202A", "", "\u202B", "", "\u202C", "", "\u202D", "", "\u202E", "",
		"\u2028", "\n", "\u2029", "\n\n", "\r\n", "\n", "\r", "\n",
	)

	// Escaped markdown characters are parked on private-use runes while the
	// markup is stripped.
	escapeReplacer = strings.NewReplacer(
		`\*`, "\uE001", `\_`, "\uE002", "\\`", "\uE003", `\#`, "\uE004", `\[`, "\uE005", `\]`, "\uE006",
	)
	unescapeReplacer = strings.NewReplacer(
		"\uE001", "*", "\uE002", "_", "\uE003", "`", "\uE004", "#", "\uE005", "[", "\uE006", "]",
	)

	controlChars   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	codeFence      = regexp.MustCompile("(?m)^```[a-zA-Z0-9_+-]*\\s*$")
	inlineCode     = regexp.MustCompile("`([^`\n]+)`")
	image          = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	link           = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	header         = regexp.MustCompile(`(?m)^#{1,6}\s+(.+?)\s*#*$`)
	bold           = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	italic         = regexp.MustCompile(`(^|[^\w*])\*([^*\n]+)\*|(^|[^\w])_([^_\n]+)_`)
	strike         = regexp.MustCompile(`~~(.+?)~~`)
	blockquote     = regexp.MustCompile(`(?m)^>\s?`)
	bullet         = regexp.MustCompile(`(?m)^(\s*)[*+-]\s+`)
	horizontalRule = regexp.MustCompile(`(?m)^\s*([*_-]\s*){3,}$`)
	tableRule      = regexp.MustCompile(`(?m)^\|?(\s*:?-{3,}:?\s*\|)+\s*:?-*:?\s*$\n?`)
	htmlTag        = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	blankLines     = regexp.MustCompile(`\n{3,}`)
)

// Plain strips markdown from s, keeps list structure with bullet marks and
// normalizes whitespace. Link targets are kept in parentheses.
func Plain(s string) string {
	if s == "" {
		return ""
	}

	s = invisibleReplacer.Replace(s)
	s = controlChars.ReplaceAllString(s, " ")
	s = escapeReplacer.Replace(s)

	s = codeFence.ReplaceAllString(s, "")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = image.ReplaceAllString(s, "$1")
	s = link.ReplaceAllStringFunc(s, func(m string) string {
		g := link.FindStringSubmatch(m)
		if g[1] == g[2] {
			return g[2]
		}
		return g[1] + " (" + g[2] + ")"
	})
	s = tableRule.ReplaceAllString(s, "")
	s = horizontalRule.ReplaceAllString(s, "")
	s = header.ReplaceAllString(s, "$1")
	s = bullet.ReplaceAllString(s, "$1• ")
	s = bold.ReplaceAllString(s, "$1$2")
	s = italic.ReplaceAllString(s, "$1$2$3$4")
	s = strike.ReplaceAllString(s, "$1")
	s = blockquote.ReplaceAllString(s, "")
	s = htmlTag.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = tidyLine(l)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(unescapeReplacer.Replace(s))
}

// tidyLine collapses runs of spaces and table pipes, keeping leading
// indentation.
func tidyLine(l string) string {
	trimmed := strings.TrimLeft(l, " \t")
	indent := l[:len(l)-len(trimmed)]

	if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(strings.TrimSpace(trimmed), "|") {
		cells := strings.Split(strings.Trim(strings.TrimSpace(trimmed), "|"), "|")
		for i, c := range cells {
			cells[i] = strings.TrimSpace(c)
		}
		trimmed = strings.Join(cells, " | ")
	}

	return strings.TrimRight(indent+strings.Join(strings.Fields(trimmed), " "), " ")
}
