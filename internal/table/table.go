// Package table derives the visible results table from classification
// results and the user's view state (search, sort and page).
//
// Everything here is pure: State transitions return new values and Build
// never mutates its input.
package table

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/csvclassify/internal/model"
)

// PageSize is the fixed number of rows per page.
const PageSize = 10

// State is the user-controlled part of the table view.
type State struct {
	Search     string `json:"search"`
	SortColumn string `json:"sortColumn,omitempty"` // empty means unsorted
	SortDesc   bool   `json:"sortDesc"`
	Page       int    `json:"page"` // 1-based
}

// NewState returns the initial view state.
func NewState() State {
	return State{Page: 1}
}

// WithSearch sets the search term and returns to the first page.
func (s State) WithSearch(term string) State {
	s.Search = term
	s.Page = 1
	return s
}

// WithSort sorts by col. Requesting the current column flips the direction;
// a new column starts ascending.
func (s State) WithSort(col string) State {
	if col == "" {
		return s
	}
	if s.SortColumn == col {
		s.SortDesc = !s.SortDesc
		return s
	}
	s.SortColumn = col
	s.SortDesc = false
	return s
}

// WithPage moves to page n, clamped to [1, max(totalPages, 1)].
func (s State) WithPage(n, totalPages int) State {
	s.Page = clampPage(n, totalPages)
	return s
}

// Reset returns the initial state.
func (s State) Reset() State {
	return NewState()
}

// PageItem is one pager control: a page number or an ellipsis.
type PageItem struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// View is the derived table ready for rendering.
type View struct {
	State      State          `json:"state"`
	Columns    []string       `json:"columns"`
	Rows       []model.Result `json:"rows"`
	Total      int            `json:"total"`
	Filtered   int            `json:"filtered"`
	TotalPages int            `json:"totalPages"`
	Page       int            `json:"page"`
	Start      int            `json:"start"` // 1-based, 0 when empty
	End        int            `json:"end"`
	PageItems  []PageItem     `json:"pageItems,omitempty"`
}

// ShowPager reports whether pagination controls should be rendered.
func (v View) ShowPager() bool {
	return v.TotalPages > 1
}

// HasPrev reports whether a previous page exists.
func (v View) HasPrev() bool {
	return v.Page > 1
}

// HasNext reports whether a next page exists.
func (v View) HasNext() bool {
	return v.Page < v.TotalPages
}

// Build filters, sorts and paginates results according to st.
func Build(results []model.Result, st State) View {
	filtered := Filter(results, st.Search)
	sorted := Sort(filtered, st.SortColumn, st.SortDesc)

	totalPages := TotalPages(len(sorted))
	page := clampPage(st.Page, totalPages)
	st.Page = page

	lo := (page - 1) * PageSize
	hi := min(lo+PageSize, len(sorted))
	var rows []model.Result
	if lo < len(sorted) {
		rows = sorted[lo:hi]
	}

	v := View{
		State:      st,
		Columns:    Columns(results),
		Rows:       rows,
		Total:      len(results),
		Filtered:   len(sorted),
		TotalPages: totalPages,
		Page:       page,
	}
	if len(rows) > 0 {
		v.Start = lo + 1
		v.End = hi
	}
	if totalPages > 1 {
		v.PageItems = PageItems(page, totalPages)
	}
	return v
}

// Columns returns the union of keys across results in first-seen order.
func Columns(results []model.Result) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range results {
		for _, k := range r.Fields.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}

// Filter keeps results where any field's display string contains term,
// compared case-insensitively. An empty term keeps everything.
func Filter(results []model.Result, term string) []model.Result {
	if term == "" {
		return slices.Clone(results)
	}

	lower := cases.Lower(language.Und)
	needle := lower.String(term)

	out := make([]model.Result, 0, len(results))
	for _, r := range results {
		for _, k := range r.Fields.Keys() {
			v, _ := r.Fields.Get(k)
			if strings.Contains(lower.String(v.String()), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Sort returns a stably sorted copy of results ordered by col. Results
// missing col sort last in either direction. An empty col keeps the input
// order.
func Sort(results []model.Result, col string, desc bool) []model.Result {
	out := slices.Clone(results)
	if col == "" {
		return out
	}

	slices.SortStableFunc(out, func(a, b model.Result) int {
		av, aok := a.Fields.Get(col)
		bv, bok := b.Fields.Get(col)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		c := compareValues(av, bv)
		if desc {
			return -c
		}
		return c
	})
	return out
}

func compareValues(a, b model.Value) int {
	af, aNum := a.Float()
	bf, bNum := b.Float()
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(a.String(), b.String())
}

// TotalPages returns ceil(n / PageSize).
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// PageItems returns the pager controls for the current page: first and
// last page always, up to three or four neighbours in between, and
// ellipses where pages are skipped.
func PageItems(current, total int) []PageItem {
	if total < 1 {
		return nil
	}
	item := func(p int) PageItem {
		return PageItem{Page: p, Current: p == current}
	}

	items := []PageItem{item(1)}
	if total == 1 {
		return items
	}

	if current > 3 && total > 5 {
		items = append(items, PageItem{Ellipsis: true})
	}

	var lo, hi int
	switch {
	case total <= 5:
		lo, hi = 2, total-1
	case current <= 3:
		lo, hi = 2, 5
	case current >= total-2:
		lo, hi = total-4, total-1
	default:
		lo, hi = current-1, current+1
	}
	for p := lo; p <= hi; p++ {
		items = append(items, item(p))
	}

	if current < total-2 && total > 5 {
		items = append(items, PageItem{Ellipsis: true})
	}

	return append(items, item(total))
}

func clampPage(n, totalPages int) int {
	if n < 1 {
		return 1
	}
	if maxPage := max(totalPages, 1); n > maxPage {
		return maxPage
	}
	return n
}
