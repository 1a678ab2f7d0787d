package compare

import (
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
)

type SearchResult struct {
	Term    string
	Visible []bool
	Matches int
	Total   int
}

// Label is the "N / total" counter shown next to the search box.
func (r SearchResult) Label() string {
	return fmt.Sprintf("%d / %d", r.Matches, r.Total)
}

// Search filters rows by a case-insensitive substring of the pchome title.
// An empty term shows every row.
func Search(rows []Row, term string) SearchResult {
	term = strings.TrimSpace(term)
	result := SearchResult{
		Term:    term,
		Visible: make([]bool, len(rows)),
		Total:   len(rows),
	}

	needle := strings.ToLower(term)
	for i, row := range rows {
		visible := term == "" ||
			(row.Pchome != nil && strings.Contains(strings.ToLower(row.Pchome.Title), needle))
		result.Visible[i] = visible
		if visible {
			result.Matches++
		}
	}

	return result
}

// Highlight escapes text and wraps every case-insensitive match of term in
// <mark class="highlight">, keeping the original casing.
func Highlight(text, term string) template.HTML {
	term = strings.TrimSpace(term)
	if term == "" {
		return template.HTML(html.EscapeString(text))
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		b.WriteString(`<mark class="highlight">`)
		b.WriteString(html.EscapeString(text[loc[0]:loc[1]]))
		b.WriteString(`</mark>`)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))

	return template.HTML(b.String())
}
