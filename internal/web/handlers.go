package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvclassify/internal/core"
	"github.com/JonMunkholm/csvclassify/internal/export"
	"github.com/JonMunkholm/csvclassify/internal/session"
	"github.com/JonMunkholm/csvclassify/internal/table"
	"github.com/JonMunkholm/csvclassify/internal/upload"
	"github.com/JonMunkholm/csvclassify/internal/web/templates"
)

// multipartOverhead is allowed on top of the file size limit for the form
// envelope.
const multipartOverhead = 1 << 20

// handleIndex renders the full page for the current session.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.State(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := templates.Page(s.shellParams(st)).Render(r.Context(), w); err != nil {
		slog.Error("render page", "error", err)
		return
	}
	s.ackNotice(st)
}

// handleHealth reports liveness and classification capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"classification": s.service.LimiterStatus(),
	})
}

// handleState returns the session snapshot as JSON.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.State(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, st)
}

// handleUpload accepts a multipart "file" field and makes it the session's
// current upload.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.service.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, upload.ErrFileTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("parse upload form: %w", upload.ErrNoFile))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, upload.ErrNoFile)
		return
	}
	defer file.Close()

	st, err := s.service.Upload(r.Context(), sessionID(r), upload.Selection{
		Name:    header.Filename,
		Size:    header.Size,
		Content: file,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, st)
}

// handleClassify sends the uploaded file for classification and waits for
// the results and metrics.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Classify(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, st)
}

// handleClear discards the session's upload and results.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Clear(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, st)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Search(sessionID(r), r.FormValue("q"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, st)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Sort(sessionID(r), r.FormValue("column"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, st)
}

// handlePage moves to the requested page. Out-of-range and malformed
// values are clamped by the table.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(strings.TrimSpace(r.FormValue("page")))
	if err != nil {
		n = 1
	}
	st, err := s.service.Page(sessionID(r), n)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, st)
}

// handleResults returns a read-only view of the session's results built
// from query parameters: q, sort, desc and page.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.State(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	view := table.State{
		Search:     q.Get("q"),
		SortColumn: q.Get("sort"),
		SortDesc:   q.Get("desc") == "true" || q.Get("desc") == "1",
		Page:       parseIntParam(r, "page", 1),
	}
	writeJSON(w, http.StatusOK, table.Build(st.Results, view))
}

// handleExport downloads the session's results as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.service.Export(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Warn("export write failed", "error", err)
	}
}

// respondState answers a successful action: JSON clients get the snapshot,
// HTMX requests get the shell partial and plain form posts are redirected
// home.
func (s *Server) respondState(w http.ResponseWriter, r *http.Request, st session.State) {
	switch {
	case wantsJSON(r):
		writeJSON(w, http.StatusOK, core.NewSnapshot(st))
		s.ackNotice(st)
	case isHTMX(r):
		s.renderShell(w, r, st, http.StatusOK)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// renderShell writes the shell partial and marks its notice as shown.
func (s *Server) renderShell(w http.ResponseWriter, r *http.Request, st session.State, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Shell(s.shellParams(st)).Render(r.Context(), w); err != nil {
		slog.Error("render shell", "error", err)
		return
	}
	s.ackNotice(st)
}

func (s *Server) shellParams(st session.State) templates.ShellParams {
	return templates.ShellParams{
		Snap:        core.NewSnapshot(st),
		Location:    s.loc,
		MaxFileSize: s.service.MaxFileSize(),
	}
}

// ackNotice clears the notice delivered with st. A notice raised by a
// concurrent request in the meantime is kept for the next render.
func (s *Server) ackNotice(st session.State) {
	if st.Notice == nil {
		return
	}
	if _, err := s.service.AckNotice(st.ID, *st.Notice); err != nil {
		slog.Debug("ack notice", "session_id", st.ID, "error", err)
	}
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
