// Package model defines the records exchanged with the classification
// service: loosely typed values, order-preserving records, classification
// results and evaluation metrics.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the JSON type a Value was decoded from.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindRaw // object or array, kept verbatim
)

// Value is a single field of a result record.
type Value struct {
	kind Kind
	str  string
	num  float64
	lit  string // original number literal, kept for lossless re-encoding
	b    bool
	raw  json.RawMessage
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// Kind reports the value's JSON type.
func (v Value) Kind() Kind {
	return v.kind
}

// Float returns the numeric value when v is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the string value when v is a string.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// String renders v the way it is shown in the table and searched:
// strings verbatim, numbers in shortest form, composites as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindRaw:
		return string(v.raw)
	default:
		return "null"
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if v.lit != "" {
			return []byte(v.lit), nil
		}
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("unsupported number: %v", v.num)
		}
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	case KindRaw:
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case 'n':
		if string(data) != "null" {
			return fmt.Errorf("invalid value %q", data)
		}
		*v = Null()
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = Value{kind: KindRaw, raw: buf.Bytes()}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", data, err)
		}
		*v = Value{kind: KindNumber, num: f, lit: n.String()}
	}
	return nil
}

// formatNumber mirrors the shortest round-trip formatting browsers use for
// numbers: plain decimal notation between 1e-6 and 1e21, exponent otherwise.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e-0", "e-", 1)
		s = strings.Replace(s, "e+0", "e+", 1)
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
