package console

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"

	"github.com/maltedev/product-compare/internal/compare"
)

type MomoOption struct {
	Value    string
	Label    string
	Selected bool
}

type CardView struct {
	*compare.Card
	Checked       bool
	TitleHTML     template.HTML
	FallbackImage string
}

type RowView struct {
	Index            int
	Momo             *CardView
	Pchome           *CardView
	Visible          bool
	Uncertainty      string
	UncertaintyError string
}

// PageView is everything page.html needs.
type PageView struct {
	MomoCount     int
	PchomeCount   int
	SelectedCount int
	MomoIndex     string
	MomoOptions   []MomoOption
	Rows          []RowView
	SearchTerm    string
	SearchLabel   string
	Notice        *Notice

	MomoJSON      template.JS
	PchomeJSON    template.JS
	MaxLengthJSON template.JS
}

// View snapshots the session for rendering and consumes the pending notice.
func (s *Session) View() (*PageView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	momoJSON, err := scriptJSON(s.state.Momo)
	if err != nil {
		return nil, err
	}
	pchomeJSON, err := scriptJSON(s.state.Pchome)
	if err != nil {
		return nil, err
	}
	maxLengthJSON, err := scriptJSON(s.state.MaxLength)
	if err != nil {
		return nil, err
	}

	search := compare.Search(s.rows, s.search)

	view := &PageView{
		MomoCount:     len(s.state.Momo),
		PchomeCount:   len(s.state.Pchome),
		SelectedCount: s.selection.Count(),
		MomoIndex:     s.momoIndex,
		SearchTerm:    search.Term,
		SearchLabel:   search.Label(),
		Notice:        s.takeNotice(),
		MomoJSON:      momoJSON,
		PchomeJSON:    pchomeJSON,
		MaxLengthJSON: maxLengthJSON,
	}

	view.MomoOptions = append(view.MomoOptions, MomoOption{
		Value:    compare.AllMomo,
		Label:    "全部 MOMO 商品",
		Selected: s.momoIndex == compare.AllMomo,
	})
	for i, p := range s.state.Momo {
		value := strconv.Itoa(i + 1)
		view.MomoOptions = append(view.MomoOptions, MomoOption{
			Value:    value,
			Label:    fmt.Sprintf("%d. %s", i+1, p.Title),
			Selected: s.momoIndex == value,
		})
	}

	view.Rows = make([]RowView, len(s.rows))
	for i, row := range s.rows {
		rv := RowView{Index: row.Index, Visible: search.Visible[i]}
		if row.Momo != nil {
			rv.Momo = &CardView{
				Card:          row.Momo,
				Checked:       s.selection.IsChecked(row.Momo.Key()),
				TitleHTML:     template.HTML(template.HTMLEscapeString(row.Momo.Title)),
				FallbackImage: compare.BrokenImage,
			}
		}
		if row.Pchome != nil {
			rv.Pchome = &CardView{
				Card:          row.Pchome,
				Checked:       s.selection.IsChecked(row.Pchome.Key()),
				TitleHTML:     compare.Highlight(row.Pchome.Title, search.Term),
				FallbackImage: compare.BrokenImage,
			}
			if v, ok := s.uncertainty[row.Pchome.ID]; ok {
				rv.Uncertainty = strconv.Itoa(v)
			}
			rv.UncertaintyError = s.rejected[row.Pchome.ID]
		}
		view.Rows[i] = rv
	}

	return view, nil
}

// scriptJSON encodes v for a <script type="application/json"> block, which
// html/template treats as a JS context. As template.JS the value is emitted
// verbatim; json.Marshal already escapes <, > and & so it cannot close the tag.
func scriptJSON(v any) (template.JS, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode page data: %w", err)
	}
	return template.JS(data), nil
}
