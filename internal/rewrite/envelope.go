package rewrite

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/lib/pq"
)

// Envelope renders text as a single-key JSON object: {"<key>": "<text>"}.
// With escape off the text is inserted verbatim.
func Envelope(key, text string, escape bool) string {
	if escape {
		return `{` + jsonString(key) + `: ` + jsonString(text) + `}`
	}
	return `{"` + key + `": "` + text + `"}`
}

// jsonString encodes s as a JSON string without HTML escaping.
func jsonString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// castLiteral quotes value as a SQL string literal followed by ::castType.
func castLiteral(value, castType string) string {
	return strings.TrimLeft(pq.QuoteLiteral(value), " ") + "::" + castType
}
