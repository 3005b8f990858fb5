package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/csvclassify/internal/classifier"
	"github.com/JonMunkholm/csvclassify/internal/export"
	"github.com/JonMunkholm/csvclassify/internal/logging"
	"github.com/JonMunkholm/csvclassify/internal/model"
	"github.com/JonMunkholm/csvclassify/internal/session"
	"github.com/JonMunkholm/csvclassify/internal/upload"
)

// ErrNoFile is returned when classification is requested before a file has
// been uploaded.
var ErrNoFile = errors.New("no file uploaded")

// Classifier is the remote classification service.
type Classifier interface {
	Classify(ctx context.Context, name string, content io.Reader) (*classifier.ClassifyResponse, error)
	Evaluate(ctx context.Context, results []model.Result) (*model.Metrics, error)
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	MaxFileSize   int64
	MaxConcurrent int
	MaxWait       time.Duration
	ExportMode    export.Mode
}

// Service orchestrates the upload, classify and export workflow for every
// browser session.
type Service struct {
	store      *session.Store
	uploads    *upload.Coordinator
	client     Classifier
	limiter    *ClassifyLimiter
	inflight   singleflight.Group
	exportMode export.Mode
	now        func() time.Time
}

// NewService creates a new Service instance.
func NewService(client Classifier, store *session.Store, opts Options) *Service {
	mode := opts.ExportMode
	if mode == "" {
		mode = export.ModeCompat
	}
	return &Service{
		store:      store,
		uploads:    upload.NewCoordinator(opts.MaxFileSize),
		client:     client,
		limiter:    NewClassifyLimiter(opts.MaxConcurrent, opts.MaxWait),
		exportMode: mode,
		now:        time.Now,
	}
}

// MaxFileSize returns the upload size limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.uploads.MaxSize()
}

// Session returns the state for id, starting a new session when id is
// unknown or expired. Callers must use the returned state's ID.
func (s *Service) Session(id string) session.State {
	return s.store.Ensure(id)
}

// State returns the current state for id.
func (s *Service) State(id string) (session.State, error) {
	st, ok := s.store.Get(id)
	if !ok {
		return session.State{}, session.ErrNotFound
	}
	return st, nil
}

// Upload validates and parses sel and makes it the session's current file,
// discarding any previous results. A rejected file leaves the session
// unchanged.
func (s *Service) Upload(ctx context.Context, id string, sel upload.Selection) (session.State, error) {
	log := logging.WithFields(ctx, clientAttrs(ctx)...).With("file", sel.Name, "size", sel.Size)

	if _, ok := s.store.Get(id); !ok {
		return session.State{}, session.ErrNotFound
	}

	acc, err := s.uploads.Accept(sel)
	if err != nil {
		log.Info("upload rejected", "error", err)
		return session.State{}, err
	}

	st, err := s.store.Dispatch(id, session.FileAccepted{Upload: acc})
	if err != nil {
		return session.State{}, err
	}

	log.Info("upload accepted",
		"rows", acc.Table.Len(),
		"columns", len(acc.Table.Columns),
	)
	return st, nil
}

// Classify sends the session's file to the classification service and then
// requests metrics for the results. A metrics failure is logged and leaves
// the results in place.
//
// Repeated calls for the same upload while a request is in flight wait for
// that request instead of starting another one.
func (s *Service) Classify(ctx context.Context, id string) (session.State, error) {
	st, ok := s.store.Get(id)
	if !ok {
		return session.State{}, session.ErrNotFound
	}
	if !st.HasFile() {
		return st, ErrNoFile
	}

	key := id + "/" + strconv.FormatUint(st.Generation, 10)
	// The shared call must outlive any one caller's request.
	callCtx := context.WithoutCancel(ctx)

	_, err, shared := s.inflight.Do(key, func() (any, error) {
		return nil, s.classify(callCtx, st)
	})
	if shared {
		logging.FromContext(ctx).Debug("joined in-flight classification", "generation", st.Generation)
	}

	latest, ok := s.store.Get(id)
	if !ok {
		return session.State{}, session.ErrNotFound
	}
	return latest, err
}

func (s *Service) classify(ctx context.Context, st session.State) error {
	gen := st.Generation
	log := logging.WithFields(ctx, clientAttrs(ctx)...).With(
		"file", st.File.Name,
		"generation", gen,
	)

	if err := s.limiter.Acquire(ctx); err != nil {
		log.Warn("classification rejected", "error", err, "limiter", s.limiter.Status())
		return err
	}
	defer s.limiter.Release()

	if _, err := s.store.Dispatch(st.ID, session.ClassifyStarted{Generation: gen}); err != nil {
		return err
	}

	start := time.Now()
	resp, err := s.client.Classify(ctx, st.File.Name, bytes.NewReader(st.Data))
	if err != nil {
		err = fmt.Errorf("classify failed: %w", err)
		log.Error("classification failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		s.dispatch(st.ID, session.ClassifyFailed{Generation: gen, Notice: noticeFor(err)})
		return err
	}
	log.Info("classification completed",
		"results", len(resp.Results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.dispatch(st.ID, session.ClassifySucceeded{Generation: gen, Response: resp})

	evalStart := time.Now()
	metrics, err := s.client.Evaluate(ctx, resp.Results)
	if err != nil {
		log.Warn("evaluation failed, results kept without metrics",
			"error", fmt.Errorf("evaluate failed: %w", err),
			"duration_ms", time.Since(evalStart).Milliseconds(),
		)
		s.dispatch(st.ID, session.EvaluateFailed{Generation: gen})
		return nil
	}
	log.Info("evaluation completed",
		"accuracy", metrics.Accuracy,
		"f1_macro", metrics.F1Macro,
		"runtime_sec", metrics.RuntimeSec,
	)
	s.dispatch(st.ID, session.EvaluateSucceeded{Generation: gen, Metrics: metrics})
	return nil
}

// dispatch applies a completion. The session may have expired while the
// request was in flight, in which case the result is dropped.
func (s *Service) dispatch(id string, a session.Action) {
	_, _ = s.store.Dispatch(id, a)
}

// Clear discards the session's file, results and metrics.
func (s *Service) Clear(ctx context.Context, id string) (session.State, error) {
	st, err := s.store.Dispatch(id, session.Cleared{})
	if err == nil {
		logging.FromContext(ctx).Info("session cleared")
	}
	return st, err
}

// Search sets the results search term.
func (s *Service) Search(id, term string) (session.State, error) {
	return s.store.Dispatch(id, session.SearchChanged{Term: term})
}

// Sort sorts results by column, toggling direction on repeat.
func (s *Service) Sort(id, column string) (session.State, error) {
	return s.store.Dispatch(id, session.SortRequested{Column: column})
}

// Page moves the results table to page n.
func (s *Service) Page(id string, n int) (session.State, error) {
	return s.store.Dispatch(id, session.PageRequested{Page: n})
}

// AckNotice clears shown if it is still the session's pending notice.
func (s *Service) AckNotice(id string, shown session.Notice) (session.State, error) {
	return s.store.Dispatch(id, session.NoticeShown{Notice: shown})
}

// Notify shows err to the user as the session's notice.
func (s *Service) Notify(id string, err error) (session.State, error) {
	return s.store.Dispatch(id, session.NoticeRaised{Notice: noticeFor(err)})
}

// Export encodes the session's results as CSV and returns the download
// file name with the content.
func (s *Service) Export(ctx context.Context, id string) (string, []byte, error) {
	st, ok := s.store.Get(id)
	if !ok {
		return "", nil, session.ErrNotFound
	}

	data, err := export.Encode(st.Results, s.exportMode)
	if err != nil {
		return "", nil, err
	}

	name := export.Filename(s.now())
	logging.FromContext(ctx).Info("results exported",
		"file", name,
		"rows", len(st.Results),
		"bytes", len(data),
		"mode", s.exportMode,
	)
	return name, data, nil
}

// LimiterStatus reports classification concurrency.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// Drain waits for in-flight classifications to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func noticeFor(err error) session.Notice {
	msg := MapError(err)
	return session.Notice{
		Level:   session.LevelError,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
}
