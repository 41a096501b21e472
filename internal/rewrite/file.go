package rewrite

import (
	"os"
	"time"

	"github.com/dshills/sqldumpfix/internal/errors"
	"github.com/dshills/sqldumpfix/internal/log"
	"github.com/dshills/sqldumpfix/internal/textenc"
)

// ReadDocument reads the whole file at path and decodes it with codec.
func ReadDocument(path string, codec *textenc.Codec) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.FileError(err, "read", path)
	}
	text, err := codec.Decode(data)
	if err != nil {
		return "", errors.GetError(err).WithPath(path)
	}
	return text, nil
}

// WriteDocument encodes text with codec and writes it to path, creating or
// truncating the file.
func WriteDocument(path string, text string, codec *textenc.Codec) error {
	data, err := codec.Encode(text)
	if err != nil {
		return errors.GetError(err).WithPath(path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.FileError(err, "write", path)
	}
	return nil
}

// RewriteFile reads src, rewrites it and writes the result to dst. src and
// dst may name the same file.
func (r *Rewriter) RewriteFile(src, dst string, codec *textenc.Codec) (*Result, error) {
	start := time.Now()
	defer log.Latency(r.logger, start, "rewrite_file")

	input, err := ReadDocument(src, codec)
	if err != nil {
		return nil, err
	}

	res := r.Rewrite(input)

	if err := WriteDocument(dst, res.Output, codec); err != nil {
		return nil, err
	}

	r.logger.Info("dump rewritten",
		log.String("source", src),
		log.String("destination", dst),
		log.String("encoding", codec.Name()),
		log.Int("lines", res.Stats.Lines),
		log.Int("target_lines", res.Stats.TargetLines),
		log.Int("fields_rewritten", res.Stats.FieldsRewritten),
		log.Int("already_json", res.Stats.AlreadyJSON),
		log.Int("unmatched", res.Stats.Unmatched),
	)
	return res, nil
}
