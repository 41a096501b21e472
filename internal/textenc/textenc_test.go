package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/sqldumpfix/internal/errors"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "utf-8"},
		{"UTF-8", "utf-8"},
		{"utf8", "utf-8"},
		{"latin1", "windows-1252"},
		{"windows-1258", "windows-1258"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := Lookup(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c.Name())
		})
	}

	_, err := Lookup("klingon")
	require.Error(t, err)
	assert.True(t, errors.IsError(err, errors.InvalidParameterValue))
}

func TestUTF8PassThrough(t *testing.T) {
	c, err := Lookup("utf-8")
	require.NoError(t, err)

	input := []byte("\xef\xbb\xbfINSERT INTO tools VALUES (1, 'k', 'Tên', 'Công cụ', 5, 'gemini');\r\n")
	s, err := c.Decode(input)
	require.NoError(t, err)
	assert.Equal(t, string(input), s)

	out, err := c.Encode(s)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestUTF8Invalid(t *testing.T) {
	c, err := Lookup("utf-8")
	require.NoError(t, err)

	_, err = c.Decode([]byte("abc\xffdef"))
	require.Error(t, err)
	assert.True(t, errors.IsError(err, errors.CharacterNotInRepertoire))
	assert.Contains(t, err.Error(), "offset 3")
}

func TestLatin1RoundTrip(t *testing.T) {
	c, err := Lookup("latin1")
	require.NoError(t, err)

	s, err := c.Decode([]byte("caf\xe9"))
	require.NoError(t, err)
	assert.Equal(t, "café", s)

	out, err := c.Encode(s)
	require.NoError(t, err)
	assert.Equal(t, []byte("caf\xe9"), out)

	_, err = c.Encode("漢字")
	require.Error(t, err)
	assert.True(t, errors.IsError(err, errors.UntranslatableCharacter))
}
