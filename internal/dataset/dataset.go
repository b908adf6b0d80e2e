// Package dataset validates uploaded tables before they are sent upstream.
package dataset

import (
	"bytes"
	"encoding/csv"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"data-chatter/internal/session"
)

var (
	ErrNotCSV   = errors.New("uploaded file is not a CSV file")
	ErrTooLarge = errors.New("uploaded file is too large")
	ErrEmpty    = errors.New("uploaded file has no header row")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// IsCSV reports whether the file name or MIME type denote a CSV file.
func IsCSV(name, mimeType string) bool {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		switch mt {
		case "text/csv", "application/csv":
			return true
		}
	}
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// Prepare checks that data is a well-formed CSV table no larger than
// maxBytes and returns it re-serialised in canonical form.
func Prepare(name, mimeType string, data []byte, maxBytes int) (session.Dataset, error) {
	if !IsCSV(name, mimeType) {
		return session.Dataset{}, ErrNotCSV
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return session.Dataset{}, ErrTooLarge
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return session.Dataset{}, errors.Wrap(ErrNotCSV, err.Error())
		}
		if err := w.Write(rec); err != nil {
			return session.Dataset{}, errors.Wrap(err, "write csv")
		}
		rows++
	}
	if rows == 0 {
		return session.Dataset{}, ErrEmpty
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return session.Dataset{}, errors.Wrap(err, "flush csv")
	}

	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		name += ".csv"
	}
	return session.Dataset{Name: name, Data: buf.Bytes()}, nil
}
