package kanban

import (
	"fmt"

	"github.com/starford/wunjo/internal/apperr"
)

// CardUpdate carries the fields of a card to overwrite. Nil fields are
// left untouched.
type CardUpdate struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// AddCard appends a card to the lane with the given title, creating the
// lane if no lane matches.
func (b *Board) AddCard(laneTitle, text string, completed bool) {
	card := Card{
		Text:      text,
		Completed: completed,
		Links:     cardLinks(text),
		Tags:      cardTags(text),
	}
	for i := range b.Lanes {
		if b.Lanes[i].Title == laneTitle {
			b.Lanes[i].Items = append(b.Lanes[i].Items, card)
			return
		}
	}
	b.Lanes = append(b.Lanes, Lane{Title: laneTitle, Items: []Card{card}})
}

// DeleteCard removes a card from a lane, matched by index when the index is
// in range, otherwise by the first card whose text equals text. A miss is
// silent: deleting what is already gone is not an error.
func (b *Board) DeleteCard(laneTitle, text string, index int) {
	for i := range b.Lanes {
		if b.Lanes[i].Title != laneTitle {
			continue
		}
		items := b.Lanes[i].Items
		if index >= 0 && index < len(items) {
			b.Lanes[i].Items = append(items[:index], items[index+1:]...)
			return
		}
		for j, card := range items {
			if card.Text == text {
				b.Lanes[i].Items = append(items[:j], items[j+1:]...)
				return
			}
		}
		return
	}
}

// MoveCard moves the card at fromIndex in the source lane to toIndex in the
// target lane. The target index is clamped to the lane bounds, and a missing
// target lane is created. An out-of-range source is an invalid operation.
func (b *Board) MoveCard(fromLane string, fromIndex int, toLane string, toIndex int) error {
	src := -1
	for i := range b.Lanes {
		if b.Lanes[i].Title == fromLane {
			src = i
			break
		}
	}
	if src < 0 || fromIndex < 0 || fromIndex >= len(b.Lanes[src].Items) {
		return fmt.Errorf("kanban: no card at %s[%d]: %w", fromLane, fromIndex, apperr.ErrInvalidOperation)
	}

	card := b.Lanes[src].Items[fromIndex]
	b.Lanes[src].Items = append(b.Lanes[src].Items[:fromIndex], b.Lanes[src].Items[fromIndex+1:]...)

	dst := -1
	for i := range b.Lanes {
		if b.Lanes[i].Title == toLane {
			dst = i
			break
		}
	}
	if dst < 0 {
		b.Lanes = append(b.Lanes, Lane{Title: toLane, Items: []Card{}})
		dst = len(b.Lanes) - 1
	}

	items := b.Lanes[dst].Items
	if toIndex < 0 {
		toIndex = 0
	}
	if toIndex > len(items) {
		toIndex = len(items)
	}
	items = append(items, Card{})
	copy(items[toIndex+1:], items[toIndex:])
	items[toIndex] = card
	b.Lanes[dst].Items = items
	return nil
}

// UpdateCard overwrites the non-nil fields of the card at index in the lane.
// Links and tags are re-derived when the text changes. A missing lane or
// index is silent.
func (b *Board) UpdateCard(laneTitle string, index int, update CardUpdate) {
	for i := range b.Lanes {
		if b.Lanes[i].Title != laneTitle {
			continue
		}
		if index < 0 || index >= len(b.Lanes[i].Items) {
			return
		}
		card := &b.Lanes[i].Items[index]
		if update.Text != nil {
			card.Text = *update.Text
			card.Links = cardLinks(card.Text)
			card.Tags = cardTags(card.Text)
		}
		if update.Completed != nil {
			card.Completed = *update.Completed
		}
		return
	}
}
