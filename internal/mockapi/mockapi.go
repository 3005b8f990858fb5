// Package mockapi is a stand-in classification service for local
// development. It answers the same two endpoints the real service exposes
// with synthetic labels and computes metrics against a ground-truth column
// when one is present.
package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/encoding/unicode"

	"github.com/JonMunkholm/csvclassify/internal/classifier"
	"github.com/JonMunkholm/csvclassify/internal/logging"
	"github.com/JonMunkholm/csvclassify/internal/model"
	"github.com/JonMunkholm/csvclassify/internal/tabular"
)

// Labels are assigned to rows in rotation.
var Labels = []string{"Category A", "Category B", "Category C", "Category D"}

// DefaultLabelColumn is the ground-truth column used by /classify/order.
const DefaultLabelColumn = "label"

const maxUploadSize = 32 << 20

// Config configures the mock service.
type Config struct {
	LabelColumn string
	Seed        uint64 // 0 selects a time-based seed
}

// Server implements the mock classification endpoints.
type Server struct {
	labelColumn string
	now         func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a mock server.
func New(cfg Config) *Server {
	label := cfg.LabelColumn
	if label == "" {
		label = DefaultLabelColumn
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Server{
		labelColumn: label,
		now:         time.Now,
		rng:         rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// Routes returns the mock service's HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post(classifier.ClassifyPath, s.handleClassifyFile)
	r.Post(classifier.DefaultEvaluatePath, s.handleClassifyOrder)
	return r
}

func (s *Server) handleClassifyFile(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".csv") {
		writeError(w, http.StatusBadRequest, "File must be CSV format")
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read file")
		return
	}
	text, err := unicode.UTF8BOM.NewDecoder().String(string(raw))
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is not valid text")
		return
	}

	tbl := tabular.Parse(text)
	if len(tbl.Columns) == 0 {
		writeError(w, http.StatusBadRequest, "Empty CSV file")
		return
	}

	results := s.classify(tbl)
	log.Info("mock classification", "file", header.Filename, "rows", len(results))

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"total":   len(results),
		"model":   "mock",
	})
}

// classify labels every row: source columns, then classification,
// confidence in [0.6, 1.0) and a UTC timestamp.
func (s *Server) classify(tbl tabular.Table) []model.Result {
	stamp := s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]model.Result, 0, tbl.Len())
	for i, row := range tbl.Rows {
		rec := model.NewRecord(len(tbl.Columns) + 3)
		for j, v := range row.Values() {
			rec.Set(tbl.Columns[j], model.String(v))
		}
		rec.Set(model.FieldClassification, model.String(Labels[i%len(Labels)]))
		rec.Set(model.FieldConfidence, model.Number(s.rng.Float64()*0.4+0.6))
		rec.Set(model.FieldTimestamp, model.String(stamp))
		results = append(results, model.NewResult(rec))
	}
	return results
}

var errNoGroundTruth = errors.New("no ground-truth column")

func (s *Server) handleClassifyOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var results []model.Result
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadSize)).Decode(&results); err != nil {
		writeError(w, http.StatusBadRequest, "Body must be a JSON array of results")
		return
	}

	metrics, err := Score(results, s.labelColumn)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%v %q", err, s.labelColumn))
		return
	}
	metrics.RuntimeSec = time.Since(start).Seconds()

	slog.Debug("mock evaluation", "results", len(results), "accuracy", metrics.Accuracy)
	writeJSON(w, http.StatusOK, map[string]any{"metrics": metrics})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
