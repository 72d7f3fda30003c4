package engine

import (
	"fmt"
	"strconv"
)

// Kind tags the case held by a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindDouble
	KindString
	KindBool
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	default:
		return "unknown"
	}
}

// Value is the closed set of property values exchanged with the engine.
// The zero Value is Absent.
type Value struct {
	kind Kind
	d    float64
	s    string
	b    bool
	i    int64
}

func Absent() Value          { return Value{} }
func Double(v float64) Value { return Value{kind: KindDouble, d: v} }
func String(v string) Value  { return Value{kind: KindString, s: v} }
func Bool(v bool) Value      { return Value{kind: KindBool, b: v} }
func Int(v int64) Value      { return Value{kind: KindInt, i: v} }

func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the engine produced no value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Double returns the value when it holds a double.
func (v Value) Double() (float64, bool) {
	if v.kind != KindDouble {
		return 0, false
	}
	return v.d, true
}

func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Empty reports whether the value renders as an empty string. Properties the
// engine has not populated yet come back empty.
func (v Value) Empty() bool {
	return v.String() == ""
}

// AsInt converts numeric and numeric-string values, mirroring how the engine
// reports integer properties as text over its string interface.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindDouble:
		return int64(v.d), true
	case KindString:
		n, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(v.s, 64)
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsBool accepts flags, integers and the engine's "yes"/"no" strings.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindDouble:
		return v.d != 0
	case KindString:
		return v.s == "yes" || v.s == "true" || v.s == "1"
	}
	return false
}

// String formats the value the way the engine's string interface expects.
func (v Value) String() string {
	switch v.kind {
	case KindDouble:
		return strconv.FormatFloat(v.d, 'f', -1, 64)
	case KindString:
		return v.s
	case KindBool:
		if v.b {
			return "yes"
		}
		return "no"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	}
	return ""
}

// GoString is used by %#v in logs and test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("engine.Value{%s:%q}", v.kind, v.String())
}

// FromAny wraps the dynamic values produced by engine bindings. Anything
// outside the closed set becomes Absent.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Absent()
	case Value:
		return t
	case float64:
		return Double(t)
	case float32:
		return Double(float64(t))
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	}
	return Absent()
}
