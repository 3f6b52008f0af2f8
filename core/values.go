package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
)

const (
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"
)

type ValueKind string

const (
	ValueNull     ValueKind = "null"
	ValueText     ValueKind = "text"
	ValueNumber   ValueKind = "number"
	ValueBoolean  ValueKind = "boolean"
	ValueDateTime ValueKind = "datetime"
)

// Value is the tagged scalar exchanged between the field mapper and the
// orchestration layer. The zero Value is null.
type Value struct {
	kind    ValueKind
	text    string
	number  float64
	boolean bool
	instant time.Time
}

func NullValue() Value { return Value{kind: ValueNull} }

func TextValue(text string) Value { return Value{kind: ValueText, text: text} }

func NumberValue(number float64) Value { return Value{kind: ValueNumber, number: number} }

func BoolValue(flag bool) Value { return Value{kind: ValueBoolean, boolean: flag} }

func DateTimeValue(instant time.Time) Value { return Value{kind: ValueDateTime, instant: instant} }

// ValueOf coerces a decoded JSON scalar into a Value.
func ValueOf(raw any) Value {
	switch typed := raw.(type) {
	case nil:
		return NullValue()
	case Value:
		return typed
	case *Value:
		if typed == nil {
			return NullValue()
		}
		return *typed
	case string:
		return TextValue(typed)
	case bool:
		return BoolValue(typed)
	case float64:
		return NumberValue(typed)
	case float32:
		return NumberValue(float64(typed))
	case int:
		return NumberValue(float64(typed))
	case int32:
		return NumberValue(float64(typed))
	case int64:
		return NumberValue(float64(typed))
	case uint64:
		return NumberValue(float64(typed))
	case gojson.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return TextValue(typed.String())
		}
		return NumberValue(parsed)
	case time.Time:
		return DateTimeValue(typed)
	default:
		return TextValue(fmt.Sprint(typed))
	}
}

func (v Value) Kind() ValueKind {
	if v.kind == "" {
		return ValueNull
	}
	return v.kind
}

func (v Value) IsNull() bool { return v.Kind() == ValueNull }

// String renders the value the way the remote API stores scalars.
func (v Value) String() string {
	switch v.Kind() {
	case ValueText:
		return v.text
	case ValueNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case ValueBoolean:
		return strconv.FormatBool(v.boolean)
	case ValueDateTime:
		return v.instant.Format(DateTimeLayout)
	default:
		return ""
	}
}

// Number coerces the value to a float. Text is parsed; booleans map to 0/1.
func (v Value) Number() (float64, bool) {
	switch v.Kind() {
	case ValueNumber:
		return v.number, true
	case ValueBoolean:
		if v.boolean {
			return 1, true
		}
		return 0, true
	case ValueText:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || math.IsNaN(parsed) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Truthy is the loose boolean reading: "", "0", "false", "no", "off",
// zero numbers, zero instants and null are false.
func (v Value) Truthy() bool {
	switch v.Kind() {
	case ValueBoolean:
		return v.boolean
	case ValueNumber:
		return v.number != 0
	case ValueText:
		switch strings.ToLower(strings.TrimSpace(v.text)) {
		case "", "0", "false", "no", "off":
			return false
		}
		return true
	case ValueDateTime:
		return !v.instant.IsZero()
	default:
		return false
	}
}

func (v Value) Time() (time.Time, bool) {
	if v.Kind() != ValueDateTime {
		return time.Time{}, false
	}
	return v.instant, true
}

// Raw returns the JSON friendly scalar.
func (v Value) Raw() any {
	switch v.Kind() {
	case ValueText:
		return v.text
	case ValueNumber:
		return v.number
	case ValueBoolean:
		return v.boolean
	case ValueDateTime:
		return v.instant.Format(DateTimeLayout)
	default:
		return nil
	}
}

// Equal is strict: same kind and same payload.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case ValueText:
		return v.text == other.text
	case ValueNumber:
		return v.number == other.number
	case ValueBoolean:
		return v.boolean == other.boolean
	case ValueDateTime:
		return v.instant.Equal(other.instant)
	default:
		return true
	}
}

// LooselyEqual compares across kinds: numbers against numeric text, and
// everything else by its string rendering.
func (v Value) LooselyEqual(other Value) bool {
	if v.Equal(other) {
		return true
	}
	if v.IsNull() || other.IsNull() {
		return false
	}
	left, leftOK := v.Number()
	right, rightOK := other.Number()
	if leftOK && rightOK && (v.Kind() == ValueNumber || other.Kind() == ValueNumber) {
		return left == right
	}
	return v.String() == other.String()
}

func (v Value) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(v.Raw())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// ObjectData is the generic object exchanged with the orchestration layer,
// keyed by field identifier.
type ObjectData map[string]Value
