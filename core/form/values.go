package form

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// HoneypotField is a hidden input real users never fill in.
const HoneypotField = "website"

// Values holds submitted form fields keyed by input name. Nested fields use dotted names ("money.amount").
type Values url.Values

// Get returns the first value of `field`, trimmed.
func (v Values) Get(field string) string {
	if vals := v[field]; len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

// All returns the non-empty values of `field`, trimmed, in submission order.
func (v Values) All(field string) []string {
	vals := make([]string, 0, len(v[field]))
	for _, val := range v[field] {
		if val = strings.TrimSpace(val); val != "" {
			vals = append(vals, val)
		}
	}
	return vals
}

// Checked reports whether the single checkbox `field` was ticked.
func (v Values) Checked(field string) bool {
	switch strings.ToLower(v.Get(field)) {
	case "", "false", "off", "0", "no":
		return false
	}
	return true
}

// Has reports whether any value of `field` equals `option`.
func (v Values) Has(field, option string) bool {
	for _, val := range v.All(field) {
		if val == option {
			return true
		}
	}
	return false
}

// IsSpam reports whether the honeypot field was filled in.
func IsSpam(v Values) bool {
	return v.Get(HoneypotField) != ""
}

// FromMap flattens a decoded JSON object into Values.
// Nested objects produce dotted names, lists produce repeated values and true booleans produce "on".
func FromMap(m map[string]interface{}) Values {
	v := make(Values)
	flatten(v, "", m)
	return v
}

func flatten(v Values, prefix string, m map[string]interface{}) {
	for key, val := range m {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		switch val := val.(type) {
		case map[string]interface{}:
			flatten(v, name, val)
		case []interface{}:
			for _, item := range val {
				if s, ok := scalar(item); ok {
					v[name] = append(v[name], s)
				}
			}
		default:
			if s, ok := scalar(val); ok {
				v[name] = append(v[name], s)
			}
		}
	}
}

func scalar(val interface{}) (string, bool) {
	switch val := val.(type) {
	case string:
		return val, true
	case bool:
		if val {
			return "on", true
		}
		return "", false
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	}
	return "", false
}

// Nest groups dotted field names into sub-objects: "money.amount" becomes {"money": {"amount": ...}}.
// Fields listed in `lists` always hold a []string; other fields hold their first value.
func Nest(v Values, lists ...string) map[string]interface{} {
	isList := make(map[string]bool, len(lists))
	for _, l := range lists {
		isList[l] = true
	}

	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names) // parents before children

	out := make(map[string]interface{})
	for _, name := range names {
		var val interface{}
		if isList[name] {
			val = v.All(name)
		} else {
			val = v.Get(name)
		}

		parts := strings.Split(name, ".")
		node := out
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]interface{})
			if !ok {
				child = make(map[string]interface{})
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = val
	}
	return out
}
