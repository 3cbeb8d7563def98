package kanban

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleBoard = `## Todo
- [ ] Write the report #urgent
- [x] Read [[notes/research|Research]] first

## Done
- [x] Kickoff meeting

Kanban:settings "{\"kanban-plugin\": \"board\", \"show-checkboxes\": true}"
`

func TestParseLanes(t *testing.T) {
	board := Parse(sampleBoard)

	if got := len(board.Lanes); got != 2 {
		t.Fatalf("lanes = %d, want 2", got)
	}
	if board.Lanes[0].Title != "Todo" || board.Lanes[1].Title != "Done" {
		t.Fatalf("lane titles = %q, %q", board.Lanes[0].Title, board.Lanes[1].Title)
	}
	if got := len(board.Lanes[0].Items); got != 2 {
		t.Fatalf("Todo cards = %d, want 2", got)
	}

	first := board.Lanes[0].Items[0]
	if first.Completed {
		t.Errorf("first card marked completed")
	}
	if diff := cmp.Diff([]string{"urgent"}, first.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	second := board.Lanes[0].Items[1]
	if !second.Completed {
		t.Errorf("second card not completed")
	}
	wantLinks := []CardLink{{Path: "notes/research", Title: "Research"}}
	if diff := cmp.Diff(wantLinks, second.Links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSettings(t *testing.T) {
	board := Parse(sampleBoard)

	want := map[string]any{"kanban-plugin": "board", "show-checkboxes": true}
	if diff := cmp.Diff(want, board.Settings); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSettingsWithComments(t *testing.T) {
	content := "## Lane\n- [ ] Card\n\n" +
		"Kanban:settings \"{\n" +
		"  // plugin identifier\n" +
		"  \\\"kanban-plugin\\\": \\\"board\\\",\n" +
		"}\"\n"
	board := Parse(content)

	want := map[string]any{"kanban-plugin": "board"}
	if diff := cmp.Diff(want, board.Settings); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSettingsMalformed(t *testing.T) {
	board := Parse("## Lane\n- [ ] Card\n\nKanban:settings \"{not json\"\n")

	if len(board.Settings) != 0 {
		t.Errorf("settings = %v, want empty", board.Settings)
	}
	if len(board.Lanes) != 1 || len(board.Lanes[0].Items) != 1 {
		t.Errorf("lanes survived malformed settings incorrectly: %+v", board.Lanes)
	}
}

func TestParseMultilineCard(t *testing.T) {
	board := Parse("## Lane\n- [ ] First line\n  second line\n- [ ] Next\n")

	if got := len(board.Lanes[0].Items); got != 2 {
		t.Fatalf("cards = %d, want 2", got)
	}
	if got := board.Lanes[0].Items[0].Text; got != "First line\n  second line" {
		t.Errorf("card text = %q", got)
	}
}

func TestParseIgnoresPreamble(t *testing.T) {
	board := Parse("# Title\n\nsome intro text\n- [ ] stray card\n\n## Lane\n- [ ] Real\n")

	if got := len(board.Lanes); got != 1 {
		t.Fatalf("lanes = %d, want 1", got)
	}
	if got := len(board.Lanes[0].Items); got != 1 {
		t.Fatalf("cards = %d, want 1", got)
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	board := Parse(sampleBoard)
	again := Parse(Generate(board))

	if diff := cmp.Diff(board, again); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestGenerateNoSettings(t *testing.T) {
	board := &Board{Lanes: []Lane{{Title: "Lane", Items: []Card{{Text: "Card"}}}}, Settings: map[string]any{}}

	out := Generate(board)
	if strings.Contains(out, settingsMarker) {
		t.Errorf("settings marker emitted for empty settings:\n%s", out)
	}
	if want := "## Lane\n- [ ] Card\n\n"; out != want {
		t.Errorf("generated = %q, want %q", out, want)
	}
}

func TestAddCard(t *testing.T) {
	board := Parse(sampleBoard)

	board.AddCard("Todo", "New task #later", false)
	items := board.Lanes[0].Items
	if got := len(items); got != 3 {
		t.Fatalf("cards = %d, want 3", got)
	}
	if diff := cmp.Diff([]string{"later"}, items[2].Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	board.AddCard("Backlog", "Brand new lane", false)
	if got := len(board.Lanes); got != 3 {
		t.Fatalf("lanes = %d, want 3", got)
	}
	if board.Lanes[2].Title != "Backlog" {
		t.Errorf("new lane title = %q", board.Lanes[2].Title)
	}
}

func TestDeleteCard(t *testing.T) {
	board := Parse(sampleBoard)

	board.DeleteCard("Todo", "", 0)
	if got := len(board.Lanes[0].Items); got != 1 {
		t.Fatalf("cards after index delete = %d, want 1", got)
	}

	board.DeleteCard("Todo", board.Lanes[0].Items[0].Text, -1)
	if got := len(board.Lanes[0].Items); got != 0 {
		t.Fatalf("cards after text delete = %d, want 0", got)
	}

	// Misses are silent.
	board.DeleteCard("Todo", "no such card", 99)
	board.DeleteCard("No such lane", "x", 0)
}

func TestMoveCard(t *testing.T) {
	board := Parse(sampleBoard)

	if err := board.MoveCard("Todo", 0, "Done", 0); err != nil {
		t.Fatalf("MoveCard: %v", err)
	}
	if got := len(board.Lanes[0].Items); got != 1 {
		t.Errorf("source cards = %d, want 1", got)
	}
	if got := board.Lanes[1].Items[0].Text; got != "Write the report #urgent" {
		t.Errorf("moved card = %q", got)
	}

	// Target lane created on demand, index clamped.
	if err := board.MoveCard("Done", 0, "Archive", 42); err != nil {
		t.Fatalf("MoveCard to new lane: %v", err)
	}
	if board.Lanes[2].Title != "Archive" || len(board.Lanes[2].Items) != 1 {
		t.Errorf("archive lane = %+v", board.Lanes[2])
	}
}

func TestMoveCardInvalidSource(t *testing.T) {
	board := Parse(sampleBoard)

	if err := board.MoveCard("Todo", 9, "Done", 0); err == nil {
		t.Error("expected error for out-of-range source index")
	}
	if err := board.MoveCard("Nope", 0, "Done", 0); err == nil {
		t.Error("expected error for missing source lane")
	}
}

func TestUpdateCard(t *testing.T) {
	board := Parse(sampleBoard)

	text := "Rewritten [[plan]] #revised"
	done := true
	board.UpdateCard("Todo", 0, CardUpdate{Text: &text, Completed: &done})

	card := board.Lanes[0].Items[0]
	if card.Text != text || !card.Completed {
		t.Errorf("card = %+v", card)
	}
	if diff := cmp.Diff([]string{"revised"}, card.Tags); diff != "" {
		t.Errorf("tags not re-derived (-want +got):\n%s", diff)
	}
	if len(card.Links) != 1 || card.Links[0].Path != "plan" {
		t.Errorf("links not re-derived: %+v", card.Links)
	}

	// Out-of-range and missing lane are silent.
	board.UpdateCard("Todo", 42, CardUpdate{Completed: &done})
	board.UpdateCard("Nope", 0, CardUpdate{Completed: &done})
}
