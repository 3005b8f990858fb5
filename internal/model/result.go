package model

import "encoding/json"

// Well-known result fields added by the classification service.
const (
	FieldClassification = "classification"
	FieldConfidence     = "confidence"
	FieldTimestamp      = "timestamp"
	FieldProcessedAt    = "processedAt"
)

// Result is one classified row. Fields holds everything the service
// returned, in wire order; the named fields are extracted from it when the
// corresponding value has the expected type.
type Result struct {
	Fields Record

	Classification *string
	Confidence     *float64 // nil when absent or not numeric
	Timestamp      *string  // "timestamp", falling back to "processedAt"
}

// NewResult wraps fields and extracts the named classification fields.
// Confidence is not range checked.
func NewResult(fields Record) Result {
	res := Result{Fields: fields}

	if v, ok := fields.Get(FieldClassification); ok {
		if s, ok := v.Text(); ok {
			res.Classification = &s
		}
	}
	if v, ok := fields.Get(FieldConfidence); ok {
		if f, ok := v.Float(); ok {
			res.Confidence = &f
		}
	}
	for _, key := range []string{FieldTimestamp, FieldProcessedAt} {
		if v, ok := fields.Get(key); ok {
			if s, ok := v.Text(); ok {
				res.Timestamp = &s
				break
			}
		}
	}

	return res
}

// MarshalJSON encodes the result as its underlying record.
func (r Result) MarshalJSON() ([]byte, error) {
	return r.Fields.MarshalJSON()
}

// UnmarshalJSON decodes a result object.
func (r *Result) UnmarshalJSON(data []byte) error {
	var fields Record
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = NewResult(fields)
	return nil
}

// Metrics are aggregate figures computed by the evaluation endpoint over a
// batch of results.
type Metrics struct {
	Accuracy   float64 `json:"accuracy"`
	F1Macro    float64 `json:"f1_macro"`
	RuntimeSec float64 `json:"runtime_sec"`
}
