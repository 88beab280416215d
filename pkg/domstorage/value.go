package domstorage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value is a typed preference value. The concrete Go type of the wrapped
// value fixes its kind: int, int64, float64, bool, string, or []string
// (a string set). The zero Value is invalid.
type Value struct {
	v any
}

// NewValue wraps v, rejecting types the store cannot persist.
func NewValue(v any) (Value, error) {
	switch v.(type) {
	case int, int64, float64, bool, string, []string:
		return Value{v: v}, nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

// Native returns the wrapped Go value.
func (v Value) Native() any { return v.v }

// Kind names the stored type, as used in mismatch reports.
func (v Value) Kind() string {
	switch v.v.(type) {
	case int:
		return "int"
	case int64:
		return "int64"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case string:
		return "string"
	case []string:
		return "string set"
	default:
		return fmt.Sprintf("%T", v.v)
	}
}

// Text renders the value to its wire form. String sets join their elements
// with commas.
func (v Value) Text() string {
	switch t := v.v.(type) {
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// parseAs converts text into a value of the same kind as anchor. A text
// that cannot be faithfully parsed into the anchor's type is an error.
func parseAs(text string, anchor Value) (Value, error) {
	switch anchor.v.(type) {
	case int:
		n, err := strconv.Atoi(text)
		if err != nil {
			return Value{}, err
		}
		return Value{v: n}, nil
	case int64:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return Value{v: n}, nil
	case float64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, err
		}
		return Value{v: f}, nil
	case bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Value{}, err
		}
		return Value{v: b}, nil
	case string:
		return Value{v: text}, nil
	case []string:
		if text == "" {
			return Value{v: []string{}}, nil
		}
		return Value{v: strings.Split(text, ",")}, nil
	default:
		return Value{}, fmt.Errorf("unsupported anchor type %T", anchor.v)
	}
}

// persistedValue is the on-disk shape: the kind tag keeps int/int64 and
// string/string-set values distinguishable across a reload.
type persistedValue struct {
	Type  string    `yaml:"type"`
	Value yaml.Node `yaml:"value"`
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	var node yaml.Node
	if err := node.Encode(v.v); err != nil {
		return nil, err
	}
	return persistedValue{Type: v.Kind(), Value: node}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var p persistedValue
	if err := node.Decode(&p); err != nil {
		return err
	}

	switch p.Type {
	case "int":
		var n int
		if err := p.Value.Decode(&n); err != nil {
			return err
		}
		v.v = n
	case "int64":
		var n int64
		if err := p.Value.Decode(&n); err != nil {
			return err
		}
		v.v = n
	case "float64":
		var f float64
		if err := p.Value.Decode(&f); err != nil {
			return err
		}
		v.v = f
	case "bool":
		var b bool
		if err := p.Value.Decode(&b); err != nil {
			return err
		}
		v.v = b
	case "string":
		var s string
		if err := p.Value.Decode(&s); err != nil {
			return err
		}
		v.v = s
	case "string set":
		var set []string
		if err := p.Value.Decode(&set); err != nil {
			return err
		}
		v.v = set
	default:
		return fmt.Errorf("unknown value type %q", p.Type)
	}
	return nil
}

// sortedKeys returns the keys of m in lexical order, for deterministic
// listings.
func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
