// Package kanban maps markdown documents to board structures and back.
// Level-2 headings become lanes, checkbox bullets become cards, and an
// optional trailing settings marker carries a quoted JSON payload.
package kanban

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tailscale/hujson"
)

// settingsMarker introduces the quoted settings payload at the end of a board.
const settingsMarker = "Kanban:settings"

var (
	cardLinkRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	cardTagRe  = regexp.MustCompile(`#([a-zA-Z0-9_-]+)`)
)

// CardLink is a wiki-style link inside a card.
type CardLink struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Card is one checkbox item within a lane.
type Card struct {
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Links     []CardLink `json:"links"`
	Tags      []string   `json:"tags"`
}

// Lane is a named column holding cards in order.
type Lane struct {
	Title string `json:"title"`
	Items []Card `json:"items"`
}

// Board is the in-memory form of a kanban markdown document. It is
// request-scoped: constructed fresh from text on every read and serialized
// back on every write — the markdown file is the durable state.
type Board struct {
	Lanes    []Lane         `json:"lanes"`
	Settings map[string]any `json:"settings"`
}

// Parse builds a board from markdown text. Parsing never fails: a malformed
// settings payload degrades to an empty settings map and lane extraction
// continues regardless.
func Parse(content string) *Board {
	board := &Board{
		Lanes:    []Lane{},
		Settings: parseSettings(content),
	}

	lines := strings.Split(content, "\n")
	var current *Lane
	flush := func() {
		if current != nil {
			board.Lanes = append(board.Lanes, *current)
			current = nil
		}
	}

	var cardLines []string
	flushCard := func() {
		if current == nil || len(cardLines) == 0 {
			return
		}
		current.Items = append(current.Items, newCard(cardLines))
		cardLines = nil
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "## "):
			flushCard()
			flush()
			current = &Lane{Title: strings.TrimSpace(line[3:]), Items: []Card{}}
		case strings.Contains(line, settingsMarker):
			flushCard()
			flush()
		case current == nil:
			// Text before the first lane heading is ignored.
		case isCardLine(line):
			flushCard()
			cardLines = []string{line}
		case len(cardLines) > 0:
			// Card text runs until the next bullet line or end of lane.
			cardLines = append(cardLines, line)
		}
	}
	flushCard()
	flush()

	return board
}

// isCardLine reports whether a line opens a card: "- [ ] ", "- [x] " or
// "- [X] " followed by at least one character of text.
func isCardLine(line string) bool {
	if len(line) < 7 || !strings.HasPrefix(line, "- [") {
		return false
	}
	status := line[3]
	return (status == ' ' || status == 'x' || status == 'X') && line[4] == ']' && line[5] == ' '
}

func newCard(lines []string) Card {
	first := lines[0]
	completed := first[3] == 'x' || first[3] == 'X'

	text := first[6:]
	if len(lines) > 1 {
		text += "\n" + strings.Join(lines[1:], "\n")
	}
	text = strings.TrimSpace(text)

	return Card{
		Text:      text,
		Completed: completed,
		Links:     cardLinks(text),
		Tags:      cardTags(text),
	}
}

// cardLinks extracts wiki-style links from the card text. This is kanban-local
// on purpose: cards keep the path/title split rather than the generic
// text/url link shape.
func cardLinks(text string) []CardLink {
	out := []CardLink{}
	for _, m := range cardLinkRe.FindAllStringSubmatch(text, -1) {
		raw := m[1]
		if target, title, ok := strings.Cut(raw, "|"); ok {
			out = append(out, CardLink{Path: strings.TrimSpace(target), Title: strings.TrimSpace(title)})
		} else {
			trimmed := strings.TrimSpace(raw)
			out = append(out, CardLink{Path: trimmed, Title: trimmed})
		}
	}
	return out
}

func cardTags(text string) []string {
	out := []string{}
	for _, m := range cardTagRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// parseSettings extracts the quoted JSON payload following the settings
// marker. The payload may span lines, contain escaped quotes, and carry
// //-style comments; any failure yields an empty map.
func parseSettings(content string) map[string]any {
	idx := strings.Index(content, settingsMarker)
	if idx < 0 {
		return map[string]any{}
	}
	rest := content[idx+len(settingsMarker):]
	open := strings.Index(rest, `"`)
	if open < 0 {
		return map[string]any{}
	}
	payload, ok := quotedPayload(rest[open+1:])
	if !ok {
		return map[string]any{}
	}

	payload = strings.ReplaceAll(payload, `\"`, `"`)

	standardized, err := hujson.Standardize([]byte(payload))
	if err != nil {
		return map[string]any{}
	}
	var settings map[string]any
	if err := json.Unmarshal(standardized, &settings); err != nil || settings == nil {
		return map[string]any{}
	}
	return settings
}

// quotedPayload scans for the closing quote: the first '"' that is followed
// only by whitespace up to the end of its line. Quotes inside the JSON are
// always followed by more JSON, so they never terminate the payload.
func quotedPayload(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '"' {
			continue
		}
		j := i + 1
		for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\r') {
			j++
		}
		if j == len(s) || s[j] == '\n' {
			return s[:i], true
		}
	}
	return "", false
}

// Generate serializes a board back to markdown. parse(generate(b)) reproduces
// b for any board whose card text contains no literal bullet-looking lines.
func Generate(b *Board) string {
	var sb strings.Builder
	for _, lane := range b.Lanes {
		sb.WriteString("## ")
		sb.WriteString(lane.Title)
		sb.WriteString("\n")
		for _, card := range lane.Items {
			status := " "
			if card.Completed {
				status = "x"
			}
			sb.WriteString("- [")
			sb.WriteString(status)
			sb.WriteString("] ")
			sb.WriteString(card.Text)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(b.Settings) > 0 {
		payload, err := json.Marshal(b.Settings)
		if err == nil {
			sb.WriteString(settingsMarker)
			sb.WriteString(" \"")
			sb.Write(payload)
			sb.WriteString("\"\n")
		}
	}
	return sb.String()
}
