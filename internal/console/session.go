package console

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strings"
	"sync"

	"github.com/maltedev/product-compare/internal/compare"
	"github.com/maltedev/product-compare/internal/models"
)

var ErrCardNotRendered = errors.New("card is not on the page")

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a one-shot banner shown on the next page render.
type Notice struct {
	Kind string
	Text string
}

// Session is the operator's page state: the rendered rows, what is checked,
// the uncertainty scores typed so far and the active search.
type Session struct {
	mu sync.Mutex

	state       *compare.State
	momoIndex   string
	rows        []compare.Row
	rendered    map[string]bool
	selection   *compare.Selection
	uncertainty map[models.ProductID]int
	rejected    map[models.ProductID]string
	search      string
	notice      *Notice
}

func NewSession(state *compare.State) *Session {
	s := &Session{state: state}
	// "all" never fails
	_ = s.render(compare.AllMomo)
	return s
}

// render rebuilds the rows and drops everything tied to the previous layout.
func (s *Session) render(momoIndex string) error {
	rows, err := compare.BuildRows(s.state, momoIndex)
	if err != nil {
		momoIndex = compare.AllMomo
		rows, _ = compare.BuildRows(s.state, momoIndex)
	}

	s.momoIndex = momoIndex
	s.rows = rows
	s.rendered = make(map[string]bool)
	for _, row := range rows {
		for _, card := range row.Cards() {
			s.rendered[card.Key()] = true
		}
	}
	s.selection = compare.NewSelection()
	s.uncertainty = make(map[models.ProductID]int)
	s.rejected = make(map[models.ProductID]string)

	return err
}

// SetMomoIndex re-renders for a new momo filter and checks the first card.
// An invalid index falls back to "all" and the error is returned.
func (s *Session) SetMomoIndex(momoIndex string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.render(momoIndex)
	s.selection.SelectFirst(s.rows)
	return err
}

func (s *Session) MomoIndex() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.momoIndex
}

func (s *Session) Toggle(platform models.Platform, id models.ProductID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := compare.SelectionKey(platform, id)
	if !s.rendered[key] {
		return false, fmt.Errorf("%w: %s", ErrCardNotRendered, key)
	}
	return s.selection.Toggle(key), nil
}

func (s *Session) SetChecked(platform models.Platform, id models.ProductID, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := compare.SelectionKey(platform, id)
	if !s.rendered[key] {
		return fmt.Errorf("%w: %s", ErrCardNotRendered, key)
	}
	s.selection.Set(key, checked)
	return nil
}

func (s *Session) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.SelectAll(s.rows)
}

func (s *Session) UnselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.UnselectAll()
}

func (s *Session) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Count()
}

// SetUncertainty stores a 1-100 score for a rendered pchome product. A bad
// value clears the field and is remembered for the validation hint. An empty
// value just clears it.
func (s *Session) SetUncertainty(id models.ProductID, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.rendered[compare.SelectionKey(models.PlatformPchome, id)] {
		return fmt.Errorf("%w: pchome %s", ErrCardNotRendered, id)
	}

	return s.setUncertaintyLocked(id, raw)
}

func (s *Session) setUncertaintyLocked(id models.ProductID, raw string) error {
	delete(s.uncertainty, id)
	delete(s.rejected, id)

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	v, err := compare.ParseUncertainty(raw)
	if err != nil {
		s.rejected[id] = err.Error()
		return err
	}
	s.uncertainty[id] = v
	return nil
}

// UncertaintyField is the form field carrying the score typed for a pchome
// card.
func UncertaintyField(id models.ProductID) string {
	return "uncertainty_" + string(id)
}

// ApplyUncertaintyInputs stores every uncertainty_<id> field in form for the
// rendered pchome cards. Cards without a field keep their stored value. All
// fields are applied; the first invalid one is returned.
func (s *Session) ApplyUncertaintyInputs(form url.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, row := range s.rows {
		if row.Pchome == nil {
			continue
		}
		values, ok := form[UncertaintyField(row.Pchome.ID)]
		if !ok || len(values) == 0 {
			continue
		}
		if err := s.setUncertaintyLocked(row.Pchome.ID, values[0]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Session) Uncertainty(id models.ProductID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.uncertainty[id]
	return v, ok
}

func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
}

func (s *Session) Flash(kind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = &Notice{Kind: kind, Text: text}
}

func (s *Session) takeNotice() *Notice {
	n := s.notice
	s.notice = nil
	return n
}

// BuildExport runs the export pipeline over the current selection.
func (s *Session) BuildExport() (*compare.Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.selection.Entries(s.rows)
	return compare.BuildExport(s.state, entries, maps.Clone(s.uncertainty))
}

func (s *Session) ResolveLabelTarget(mode compare.LabelMode, input string) (*compare.LabelTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return compare.ResolveLabelTarget(s.state, mode, input)
}
