package compare

import "github.com/maltedev/product-compare/internal/models"

func SelectionKey(platform models.Platform, id models.ProductID) string {
	return string(platform) + "_" + string(id)
}

// Selection tracks checked cards by checkbox key. Any number of cards on
// either platform may be checked at once.
type Selection struct {
	checked map[string]bool
}

func NewSelection() *Selection {
	return &Selection{checked: make(map[string]bool)}
}

// Toggle flips the card and reports its new state.
func (s *Selection) Toggle(key string) bool {
	s.Set(key, !s.checked[key])
	return s.checked[key]
}

func (s *Selection) Set(key string, checked bool) {
	if checked {
		s.checked[key] = true
		return
	}
	delete(s.checked, key)
}

func (s *Selection) IsChecked(key string) bool {
	return s.checked[key]
}

// Count reports distinct checked keys.
func (s *Selection) Count() int {
	return len(s.checked)
}

func (s *Selection) SelectAll(rows []Row) {
	for _, row := range rows {
		for _, card := range row.Cards() {
			s.checked[card.Key()] = true
		}
	}
}

func (s *Selection) UnselectAll() {
	clear(s.checked)
}

// SelectFirst checks the first card in document order, if any.
func (s *Selection) SelectFirst(rows []Row) {
	for _, row := range rows {
		if cards := row.Cards(); len(cards) > 0 {
			s.checked[cards[0].Key()] = true
			return
		}
	}
}

// Entries lists checked cards in document order (row by row, momo before
// pchome). A product rendered on several rows is listed once.
func (s *Selection) Entries(rows []Row) []models.SelectionEntry {
	var entries []models.SelectionEntry
	seen := make(map[string]bool)

	for _, row := range rows {
		for _, card := range row.Cards() {
			key := card.Key()
			if !s.checked[key] || seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, card.Entry())
		}
	}

	return entries
}
