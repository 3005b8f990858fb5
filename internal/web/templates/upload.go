package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
)

// UploadCard renders the drop zone and, once a file is loaded, its summary
// with the classify and clear controls.
func UploadCard(p ShellParams) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<section class="card upload"><h2>Upload CSV File</h2>`)
		h.raw(`<p class="muted">Select or drag and drop your CSV file to begin classification</p>`)

		h.raw(`<form class="dropzone" action="/upload" method="post" enctype="multipart/form-data" data-enhance data-autosubmit>`)
		h.raw(`<label for="file-input"><span class="dropzone-idle">Drag and drop your file here, or click to browse</span>`)
		h.raw(`<span class="dropzone-active">Drop your CSV file here!</span></label>`)
		h.raw(`<input id="file-input" type="file" name="file" accept=".csv,text/csv" required>`)
		h.raw(`<noscript><button type="submit">Upload</button></noscript>`)
		h.raw(`<p class="muted small">Supported format: CSV files only</p>`)
		h.raw(`<p class="muted small">Maximum file size: `)
		h.text(formatMB(p.MaxFileSize))
		h.raw(`</p></form>`)

		snap := p.Snap
		if snap.HasFile() {
			h.raw(`<div class="file-summary"><div><p class="file-name">`)
			h.text(snap.File.Name)
			h.raw(`</p><p class="file-meta">`)
			h.text(strconv.Itoa(snap.Rows) + " rows • " + snap.File.SizeKB())
			h.raw(`</p></div><div class="file-actions">`)

			h.raw(`<form action="/classify" method="post" data-enhance><button type="submit" class="primary"`)
			if snap.Classifying {
				h.raw(` disabled aria-busy="true">Classifying...`)
			} else {
				h.raw(`>Classify`)
			}
			h.raw(`</button></form>`)

			h.raw(`<form action="/clear" method="post" data-enhance><button type="submit" class="danger">Clear</button></form>`)
			h.raw(`</div></div>`)
		}
		h.raw(`</section>`)
	})
}

func formatMB(n int64) string {
	mb := float64(n) / (1024 * 1024)
	if mb == float64(int64(mb)) {
		return strconv.FormatInt(int64(mb), 10) + "MB"
	}
	return strconv.FormatFloat(mb, 'f', 1, 64) + "MB"
}
