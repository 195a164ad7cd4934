package driveconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	// KindRaw covers nested objects and arrays, which are carried through untouched.
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindRaw:
		return "raw"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is one JSON value of the document. raw is the exact JSON text, so
// values read from disk are written back byte for byte.
type Value struct {
	kind Kind
	raw  string
}

var errNotFinite = errors.New("value is not a finite number")

func IntValue(v int) Value {
	return Value{kind: KindInt, raw: strconv.Itoa(v)}
}

// FloatValue always renders a fractional part so the value reads back as a
// float, not an int.
func FloatValue(v float64) (Value, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}, errNotFinite
	}

	raw := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(raw, ".eE") {
		raw += ".0"
	}
	return Value{kind: KindFloat, raw: raw}, nil
}

func BoolValue(v bool) Value {
	return Value{kind: KindBool, raw: strconv.FormatBool(v)}
}

func StringValue(v string) Value {
	raw, _ := json.Marshal(v)
	return Value{kind: KindString, raw: string(raw)}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) Raw() string {
	return v.raw
}

func (v Value) Int() (int, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	i, err := strconv.Atoi(v.raw)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Float accepts any JSON number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindInt && v.kind != KindFloat {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.raw == "true", true
}

func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	var s string
	if err := json.Unmarshal([]byte(v.raw), &s); err != nil {
		return "", false
	}
	return s, true
}
