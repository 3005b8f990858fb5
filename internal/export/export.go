// Package export serialises classification results to CSV for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/csvclassify/internal/model"
)

// ErrNoResults is returned when there is nothing to export.
var ErrNoResults = errors.New("no results to export")

// ContentType is the media type of an exported file.
const ContentType = "text/csv;charset=utf-8"

// Mode selects how cells containing the delimiter are quoted.
type Mode string

const (
	// ModeCompat writes values as a browser stringifies them: objects as
	// "[object Object]" and arrays as their elements joined by commas.
	// Cells containing a comma are wrapped in double quotes without
	// escaping embedded quotes. Files written this way do not round-trip
	// through the upload parser.
	ModeCompat Mode = "compat"
	// ModeRFC4180 quotes per RFC 4180.
	ModeRFC4180 Mode = "rfc4180"
)

// ParseMode returns the Mode named by s.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeCompat:
		return ModeCompat, nil
	case ModeRFC4180:
		return m, nil
	default:
		return "", fmt.Errorf("unknown export mode %q (expected %s or %s)", s, ModeCompat, ModeRFC4180)
	}
}

// Encode renders results as CSV. The header is the key sequence of the
// first result; every row is written in that key order with missing keys
// as empty cells. Lines are joined with "\n" and there is no trailing
// newline.
func Encode(results []model.Result, mode Mode) ([]byte, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	header := results[0].Fields.Keys()
	if mode == ModeRFC4180 {
		rows := make([][]string, 0, len(results)+1)
		rows = append(rows, header)
		for _, r := range results {
			rows = append(rows, cells(r, header))
		}
		return encodeRFC4180(rows)
	}
	return encodeCompat(results, header), nil
}

func cells(r model.Result, header []string) []string {
	out := make([]string, len(header))
	for i, k := range header {
		v, ok := r.Fields.Get(k)
		if !ok || v.Kind() == model.KindNull {
			continue
		}
		out[i] = v.String()
	}
	return out
}

func encodeCompat(results []model.Result, header []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(header, ","))

	for _, r := range results {
		buf.WriteByte('\n')
		for i, k := range header {
			if i > 0 {
				buf.WriteByte(',')
			}
			v, ok := r.Fields.Get(k)
			if !ok || v.Kind() == model.KindNull {
				continue
			}
			s := compatText(v)
			if strings.Contains(s, ",") {
				s = `"` + s + `"`
			}
			buf.WriteString(s)
		}
	}
	return buf.Bytes()
}

// compatText renders v the way String(v) does in a browser. Nulls inside
// arrays become empty elements.
func compatText(v model.Value) string {
	if v.Kind() != model.KindRaw {
		return v.String()
	}
	raw := v.String()
	if strings.HasPrefix(raw, "{") {
		return "[object Object]"
	}

	var elems []model.Value
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return raw
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		if e.Kind() != model.KindNull {
			parts[i] = compatText(e)
		}
	}
	return strings.Join(parts, ",")
}

func encodeRFC4180(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Filename returns the download name for an export made at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("classification_results_%d.csv", now.UnixMilli())
}
