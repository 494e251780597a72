// Package toolproto implements the line-oriented encoding the agent uses to
// request a tool invocation inside free-form model output:
//
//	TOOL_CALL:<tool_name>:key1=value1:key2=value2
//
// The encoding is a best-effort heuristic, not a typed schema. Values made of
// decimal digits only are coerced to integers; everything else stays a
// string. Because ':' is both the field separator and a legal character
// inside a value, a segment without '=' is treated as a continuation of the
// previous value and rejoined with ':' (so URLs survive). A value containing
// both ':' and '=' still decodes ambiguously; that is the documented limit of
// this format.
package toolproto

import (
	"sort"
	"strconv"
	"strings"
)

// Sentinel marks a line as an encoded tool call.
const Sentinel = "TOOL_CALL"

const delimiter = ":"

// Call is a decoded tool invocation request. Args values are string or int.
type Call struct {
	Tool string
	Args map[string]any
}

// IsCall reports whether text begins with the protocol sentinel. This is the
// routing predicate; it deliberately does not validate the rest of the line.
func IsCall(text string) bool {
	return strings.HasPrefix(text, Sentinel+delimiter)
}

// Decode parses a tool call out of text. Text that does not begin with the
// sentinel decodes to no call (ok=false); that is not an error. A sentinel
// line without a tool name also decodes to no call.
func Decode(text string) (Call, bool) {
	if !IsCall(text) {
		return Call{}, false
	}
	rest := strings.TrimPrefix(text, Sentinel+delimiter)
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	segments := strings.Split(rest, delimiter)
	name := strings.TrimSpace(segments[0])
	if name == "" {
		return Call{}, false
	}

	raw := make(map[string]string)
	lastKey := ""
	for _, seg := range segments[1:] {
		key, value, ok := strings.Cut(seg, "=")
		key = strings.TrimSpace(key)
		if ok && key != "" {
			raw[key] = value
			lastKey = key
			continue
		}
		// No '=' in this segment: it is the tail of the previous value,
		// split off by a ':' inside the value itself.
		if lastKey != "" {
			raw[lastKey] = raw[lastKey] + delimiter + seg
		}
	}

	args := make(map[string]any, len(raw))
	for k, v := range raw {
		args[k] = coerce(v)
	}
	return Call{Tool: name, Args: args}, true
}

// Encode renders a call in the wire format, arguments in sorted key order so
// encode/decode round-trips are deterministic.
func Encode(c Call) string {
	parts := []string{Sentinel, c.Tool}
	keys := make([]string, 0, len(c.Args))
	for k := range c.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+formatValue(c.Args[k]))
	}
	return strings.Join(parts, delimiter)
}

func coerce(v string) any {
	if v == "" {
		return v
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return v
		}
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return v
	}
	return n
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}
