package table

import (
	"fmt"
	"time"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// Palette lists the badge colours for classification labels in index order.
var Palette = []string{"blue", "purple", "green", "orange", "pink"}

// Badge returns the palette colour for a classification label. The index
// is the sum of the label's UTF-16 code units modulo the palette size, so
// a label always gets the same colour.
func Badge(label string) string {
	sum := 0
	for _, u := range utf16.Encode([]rune(label)) {
		sum += int(u)
	}
	return Palette[sum%len(Palette)]
}

// Tier is a confidence band.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// ConfidenceTier bands a confidence score: >= 0.8 high, >= 0.6 medium,
// otherwise low.
func ConfidenceTier(c float64) Tier {
	switch {
	case c >= 0.8:
		return TierHigh
	case c >= 0.6:
		return TierMedium
	default:
		return TierLow
	}
}

// FormatConfidence renders c as a percentage with one decimal.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%.1f%%", c*100)
}

// TimestampLayout is the display layout for timestamp cells.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// FormatTimestamp parses an ISO-8601 timestamp and renders it in loc.
// Unparsable input renders as "Invalid Date".
func FormatTimestamp(s string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		pl := time.UTC
		if layout == timestampLayouts[1] {
			pl = loc
		}
		if t, err := time.ParseInLocation(layout, s, pl); err == nil {
			return t.In(loc).Format(TimestampLayout)
		}
	}
	return "Invalid Date"
}

// HeaderLabel upper-cases the first character of a column name.
func HeaderLabel(col string) string {
	r, size := utf8.DecodeRuneInString(col)
	if r == utf8.RuneError {
		return col
	}
	return string(unicode.ToUpper(r)) + col[size:]
}
