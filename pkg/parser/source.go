package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultMaxBytes bounds how much of an export is read into memory.
const DefaultMaxBytes = 64 << 20

var (
	// ErrNotText is returned when the input is not decodable text.
	ErrNotText = errors.New("input is not a text file")

	// ErrTooLarge is returned when the input exceeds the size limit.
	ErrTooLarge = errors.New("input exceeds size limit")
)

// ReadExport reads and decodes the export at path.
// A maxBytes of zero or less means DefaultMaxBytes.
func ReadExport(ctx context.Context, path string, maxBytes int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return "", fmt.Errorf("opening export %s: %w", path, err)
	}
	defer f.Close()

	text, err := Decode(f, maxBytes)
	if err != nil {
		return "", fmt.Errorf("reading export %s: %w", path, err)
	}
	return text, nil
}

// Decode reads r to the end and returns its content as UTF-8 text.
// A leading UTF-8 or UTF-16 byte order mark selects the encoding and is
// stripped; without one the input must already be valid UTF-8.
func Decode(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(raw)) > maxBytes {
		return "", fmt.Errorf("%w (%d bytes)", ErrTooLarge, maxBytes)
	}

	data := raw
	if hasUTF16BOM(raw) {
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		if data, _, err = transform.Bytes(dec, raw); err != nil {
			return "", fmt.Errorf("%w: %v", ErrNotText, err)
		}
	} else {
		data = bytes.TrimPrefix(raw, utf8BOM)
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: invalid UTF-8", ErrNotText)
		}
	}

	if bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("%w: contains NUL bytes", ErrNotText)
	}

	return string(data), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func hasUTF16BOM(b []byte) bool {
	return len(b) >= 2 && ((b[0] == 0xFE && b[1] == 0xFF) || (b[0] == 0xFF && b[1] == 0xFE))
}
