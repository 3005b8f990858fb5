package templates

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/csvclassify/internal/model"
	"github.com/JonMunkholm/csvclassify/internal/table"
)

// ResultsCard renders the classified rows with search, sort, pagination,
// export and, when available, evaluation metrics.
func ResultsCard(p ShellParams) templ.Component {
	return component(func(ctx context.Context, h *html) {
		v := p.Snap.Table

		h.raw(`<section class="card results" id="results"><div class="card-header"><div><h2>Classification Results</h2>`)
		h.raw(`<p class="muted">`)
		h.text(strconv.Itoa(v.Total) + " rows classified • Click export to download results")
		h.raw(`</p></div><div class="card-actions">`)
		if p.Snap.Metrics != nil {
			h.raw(`<button type="button" class="secondary" data-toggle="metrics">Show Metrics</button>`)
		} else {
			h.raw(`<button type="button" class="secondary" disabled>Show Metrics</button>`)
		}
		h.raw(`<a class="button success" href="/export" download>Export CSV</a>`)
		h.raw(`</div></div>`)

		if p.Snap.Metrics != nil {
			h.component(ctx, Metrics(*p.Snap.Metrics))
		}
		h.component(ctx, ResultsTable(v, p.Location))
		h.raw(`</section>`)
	})
}

// Metrics renders evaluation figures. It starts hidden and is revealed by
// the Show Metrics button.
func Metrics(m model.Metrics) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<dl class="metrics" id="metrics" hidden>`)
		h.raw(`<div><dt>Accuracy</dt><dd>`)
		h.text(table.FormatConfidence(m.Accuracy))
		h.raw(`</dd></div><div><dt>F1 (macro)</dt><dd>`)
		h.text(fmt.Sprintf("%.3f", m.F1Macro))
		h.raw(`</dd></div><div><dt>Runtime</dt><dd>`)
		h.text(fmt.Sprintf("%.2fs", m.RuntimeSec))
		h.raw(`</dd></div></dl>`)
	})
}

// ResultsTable renders one page of v.
func ResultsTable(v table.View, loc *time.Location) templ.Component {
	return component(func(ctx context.Context, h *html) {
		if v.Total == 0 {
			h.raw(`<div class="empty"><h3>No Results Yet</h3>`)
			h.raw(`<p>Upload a CSV file and click classify to see results here</p></div>`)
			return
		}

		h.raw(`<div class="toolbar"><form class="search" action="/results/search" method="post" data-enhance data-live>`)
		h.raw(`<input type="search" name="q" placeholder="Search results..." autocomplete="off"`)
		h.attr("value", v.State.Search)
		h.raw(`></form><span class="muted">`)
		h.text(fmt.Sprintf("%d of %d results", v.Filtered, v.Total))
		h.raw(`</span></div>`)

		h.raw(`<form id="sort-form" action="/results/sort" method="post" data-enhance></form>`)
		h.raw(`<div class="table-wrap"><table><thead><tr>`)
		for _, col := range v.Columns {
			h.raw(`<th><button type="submit" form="sort-form" name="column" class="sort"`)
			h.attr("value", col)
			h.raw(`>`)
			h.text(table.HeaderLabel(col))
			if v.State.SortColumn == col {
				if v.State.SortDesc {
					h.raw(` <span aria-label="descending">↓</span>`)
				} else {
					h.raw(` <span aria-label="ascending">↑</span>`)
				}
			}
			h.raw(`</button></th>`)
		}
		h.raw(`</tr></thead><tbody>`)

		if len(v.Rows) == 0 {
			h.rawf(`<tr><td colspan="%d" class="empty-row">No matching results</td></tr>`, max(len(v.Columns), 1))
		}
		for _, row := range v.Rows {
			h.raw(`<tr>`)
			for _, col := range v.Columns {
				h.raw(`<td>`)
				h.component(ctx, Cell(row, col, loc))
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></div>`)

		if v.ShowPager() {
			h.component(ctx, Pager(v))
		}
	})
}

// Cell renders one value. Classification, confidence and timestamp fields
// get their dedicated presentation when they carry the expected type.
func Cell(r model.Result, col string, loc *time.Location) templ.Component {
	return component(func(_ context.Context, h *html) {
		val, ok := r.Fields.Get(col)
		if !ok || val.Kind() == model.KindNull {
			return
		}
		switch col {
		case model.FieldClassification:
			if s, ok := val.Text(); ok {
				h.raw(`<span`)
				h.attr("class", "badge badge-"+table.Badge(s))
				h.raw(`>`)
				h.text(s)
				h.raw(`</span>`)
				return
			}
		case model.FieldConfidence:
			if f, ok := val.Float(); ok {
				h.raw(`<span`)
				h.attr("class", "confidence confidence-"+string(table.ConfidenceTier(f)))
				h.raw(`>`)
				h.text(table.FormatConfidence(f))
				h.raw(`</span>`)
				return
			}
		case model.FieldTimestamp, model.FieldProcessedAt:
			if s, ok := val.Text(); ok {
				h.raw(`<time`)
				h.attr("datetime", s)
				h.attr("title", s)
				h.raw(`>`)
				h.text(table.FormatTimestamp(s, loc))
				h.raw(`</time>`)
				return
			}
		}
		h.text(val.String())
	})
}

// Pager renders the page summary and navigation.
func Pager(v table.View) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<nav class="pager" aria-label="Pagination"><span class="muted">`)
		h.text(fmt.Sprintf("Showing %d to %d of %d results", v.Start, v.End, v.Filtered))
		h.raw(`</span><form action="/results/page" method="post" data-enhance>`)

		pageButton(h, v.Page-1, "Previous", !v.HasPrev(), false)
		for _, item := range v.PageItems {
			if item.Ellipsis {
				h.raw(`<span class="ellipsis">...</span>`)
				continue
			}
			pageButton(h, item.Page, strconv.Itoa(item.Page), false, item.Current)
		}
		pageButton(h, v.Page+1, "Next", !v.HasNext(), false)

		h.raw(`</form></nav>`)
	})
}

func pageButton(h *html, page int, label string, disabled, current bool) {
	h.raw(`<button type="submit" name="page"`)
	h.attr("value", strconv.Itoa(page))
	if current {
		h.raw(` class="current" aria-current="page"`)
	}
	if disabled {
		h.raw(` disabled`)
	}
	h.raw(`>`)
	h.text(label)
	h.raw(`</button>`)
}
