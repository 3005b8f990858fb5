// Package session holds the per-browser application state and the single
// reducer that applies user actions to it.
//
// Every transition goes through Reduce. Nothing else mutates a State, which
// keeps the upload, classify and view flows from stepping on each other.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/csvclassify/internal/classifier"
	"github.com/JonMunkholm/csvclassify/internal/model"
	"github.com/JonMunkholm/csvclassify/internal/table"
	"github.com/JonMunkholm/csvclassify/internal/tabular"
	"github.com/JonMunkholm/csvclassify/internal/upload"
)

// Level is the severity of a Notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notice is a one-shot message shown to the user after an action.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code,omitempty"`
}

// State is everything the application knows about one browser session.
type State struct {
	ID string

	File  *upload.File
	Data  []byte
	Table tabular.Table

	Results []model.Result
	Meta    map[string]json.RawMessage
	Metrics *model.Metrics

	View        table.State
	Classifying bool

	// Generation increments whenever the upload is replaced or cleared.
	// Completions carrying an older generation are discarded.
	Generation uint64

	Notice *Notice
}

// New returns the empty state for session id.
func New(id string) State {
	return State{ID: id, View: table.NewState()}
}

// HasFile reports whether an upload has been accepted.
func (s State) HasFile() bool {
	return s.File != nil && s.Table.Len() > 0
}

// Classified reports whether results are present.
func (s State) Classified() bool {
	return len(s.Results) > 0
}

// Action is a user or system event applied by Reduce.
type Action interface {
	action()
}

type (
	// FileAccepted replaces the current upload.
	FileAccepted struct{ Upload *upload.Accepted }

	// Cleared resets the session to empty.
	Cleared struct{}

	// ClassifyStarted marks a classify request as in flight.
	ClassifyStarted struct{ Generation uint64 }

	// ClassifySucceeded stores the results of a classify request.
	ClassifySucceeded struct {
		Generation uint64
		Response   *classifier.ClassifyResponse
	}

	// ClassifyFailed ends an in-flight request without results.
	ClassifyFailed struct {
		Generation uint64
		Notice     Notice
	}

	// EvaluateSucceeded stores metrics for the current results.
	EvaluateSucceeded struct {
		Generation uint64
		Metrics    *model.Metrics
	}

	// EvaluateFailed ends the request with results but no metrics.
	EvaluateFailed struct{ Generation uint64 }

	SearchChanged struct{ Term string }
	SortRequested struct{ Column string }
	PageRequested struct{ Page int }

	// NoticeRaised shows a message without changing anything else.
	NoticeRaised struct{ Notice Notice }

	// NoticeShown drops the pending notice if it is still the one that was
	// rendered. A notice raised after the render stays pending.
	NoticeShown struct{ Notice Notice }
)

func (FileAccepted) action()      {}
func (Cleared) action()           {}
func (ClassifyStarted) action()   {}
func (ClassifySucceeded) action() {}
func (ClassifyFailed) action()    {}
func (EvaluateSucceeded) action() {}
func (EvaluateFailed) action()    {}
func (SearchChanged) action()     {}
func (SortRequested) action()     {}
func (PageRequested) action()     {}
func (NoticeRaised) action()      {}
func (NoticeShown) action()       {}

// Reduce applies a to s and returns the new state.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case FileAccepted:
		if a.Upload == nil {
			return s
		}
		file := a.Upload.File
		next := New(s.ID)
		next.File = &file
		next.Data = a.Upload.Data
		next.Table = a.Upload.Table
		next.Generation = s.Generation + 1
		next.Notice = &Notice{
			Level:   LevelSuccess,
			Message: fmt.Sprintf(`File "%s" uploaded successfully!`, file.Name),
		}
		return next

	case Cleared:
		next := New(s.ID)
		next.Generation = s.Generation + 1
		next.Notice = &Notice{Level: LevelInfo, Message: "All data cleared"}
		return next

	case ClassifyStarted:
		if a.Generation != s.Generation {
			return s
		}
		s.Classifying = true
		return s

	case ClassifySucceeded:
		if a.Generation != s.Generation || a.Response == nil {
			return s
		}
		s.Results = a.Response.Results
		s.Meta = a.Response.Meta
		s.Metrics = nil
		s.View = s.View.Reset()
		s.Notice = &Notice{
			Level:   LevelSuccess,
			Message: fmt.Sprintf("Successfully classified %d rows", len(a.Response.Results)),
		}
		return s

	case ClassifyFailed:
		if a.Generation != s.Generation {
			return s
		}
		s.Classifying = false
		notice := a.Notice
		s.Notice = &notice
		return s

	case EvaluateSucceeded:
		if a.Generation != s.Generation {
			return s
		}
		s.Classifying = false
		s.Metrics = a.Metrics
		return s

	case EvaluateFailed:
		if a.Generation != s.Generation {
			return s
		}
		s.Classifying = false
		s.Metrics = nil
		return s

	case SearchChanged:
		s.View = s.View.WithSearch(a.Term)
		return s

	case SortRequested:
		s.View = s.View.WithSort(a.Column)
		return s

	case PageRequested:
		v := table.Build(s.Results, s.View)
		s.View = s.View.WithPage(a.Page, v.TotalPages)
		return s

	case NoticeRaised:
		notice := a.Notice
		s.Notice = &notice
		return s

	case NoticeShown:
		if s.Notice != nil && *s.Notice == a.Notice {
			s.Notice = nil
		}
		return s
	}
	return s
}
