package templates

import (
	"context"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/csvclassify/internal/core"
)

// ShellParams is everything the page shell needs to render a session.
type ShellParams struct {
	Snap        core.Snapshot
	Location    *time.Location
	MaxFileSize int64
}

// ShellID is the element swapped by partial updates.
const ShellID = "shell"

// Page renders the full HTML document.
func Page(p ShellParams) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>CSV Classification Platform</title>`)
		h.raw(`<link rel="stylesheet" href="/static/app.css">`)
		h.raw(`<script src="/static/app.js" defer></script>`)
		h.raw(`</head><body><main class="container">`)
		h.raw(`<header class="hero"><h1>CSV Classification Platform</h1>`)
		h.raw(`<p>Upload your CSV files, classify them, and export the results seamlessly</p></header>`)
		h.component(ctx, Shell(p))
		h.raw(`</main></body></html>`)
	})
}

// Shell renders the swappable application area.
func Shell(p ShellParams) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<div`)
		h.attr("id", ShellID)
		h.raw(`>`)
		if p.Snap.Notice != nil {
			h.component(ctx, Notice(*p.Snap.Notice))
		}
		h.component(ctx, UploadCard(p))
		if p.Snap.Classified {
			h.component(ctx, ResultsCard(p))
		}
		if !p.Snap.HasFile() {
			h.component(ctx, Instructions())
		}
		h.raw(`</div>`)
	})
}

// Instructions is shown until a file has been uploaded.
func Instructions() templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<section class="card intro"><h3>Get Started with CSV Classification</h3>`)
		h.raw(`<p>Upload your CSV file using the upload area above to begin the classification process</p>`)
		h.raw(`<ol class="steps">`)
		h.raw(`<li><strong>Upload</strong><span>Select your CSV file</span></li>`)
		h.raw(`<li><strong>Classify</strong><span>The service labels your data</span></li>`)
		h.raw(`<li><strong>Export</strong><span>Download your results</span></li>`)
		h.raw(`</ol></section>`)
	})
}
