// Package textenc converts dump files between a named text encoding and
// the UTF-8 strings the rewriter works on.
package textenc

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/dshills/sqldumpfix/internal/errors"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "utf-8"

// Codec decodes and encodes one text encoding.
type Codec struct {
	name string
	enc  encoding.Encoding // nil for UTF-8
}

// Lookup returns the codec for a WHATWG encoding label such as "utf-8",
// "latin1" or "windows-1258". An empty name selects UTF-8.
func Lookup(name string) (*Codec, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" {
		label = DefaultEncoding
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, errors.UnknownEncodingError(name)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = label
	}
	if canonical == "utf-8" {
		return &Codec{name: canonical}, nil
	}
	return &Codec{name: canonical, enc: enc}, nil
}

// Name returns the canonical encoding name.
func (c *Codec) Name() string {
	return c.name
}

// Decode converts data to a UTF-8 string. UTF-8 input is validated and
// returned unchanged, byte order mark included.
func (c *Codec) Decode(data []byte) (string, error) {
	if c.enc == nil {
		if !utf8.Valid(data) {
			return "", errors.InvalidByteSequenceError(c.name, nil).
				WithDetailf("first invalid byte at offset %d", invalidOffset(data))
		}
		return string(data), nil
	}
	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.InvalidByteSequenceError(c.name, err)
	}
	return string(out), nil
}

// Encode converts s back to the codec's encoding.
func (c *Codec) Encode(s string) ([]byte, error) {
	if c.enc == nil {
		return []byte(s), nil
	}
	out, err := c.enc.NewEncoder().String(s)
	if err != nil {
		return nil, errors.UntranslatableCharacterError(c.name, err)
	}
	return []byte(out), nil
}

func invalidOffset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
