package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/csvclassify/internal/session"
)

// Notice renders a one-shot status message.
func Notice(n session.Notice) templ.Component {
	return component(func(_ context.Context, h *html) {
		role := "status"
		if n.Level == session.LevelError {
			role = "alert"
		}
		h.raw(`<div`)
		h.attr("class", "notice notice-"+string(n.Level))
		h.attr("role", role)
		h.raw(`><p class="notice-message">`)
		h.text(n.Message)
		h.raw(`</p>`)
		if n.Action != "" {
			h.raw(`<p class="notice-action">`)
			h.text(n.Action)
			h.raw(`</p>`)
		}
		if n.Code != "" {
			h.raw(`<p class="notice-code">Error code: `)
			h.text(n.Code)
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
	})
}

// ErrorAlert renders an error fragment for requests that have no page to
// return to.
func ErrorAlert(message, action, code string) templ.Component {
	return Notice(session.Notice{
		Level:   session.LevelError,
		Message: message,
		Action:  action,
		Code:    code,
	})
}
