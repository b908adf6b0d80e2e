package artifact

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"
)

// Canonicalize decodes an image in any registered format and re-encodes it
// as PNG.
func Canonicalize(raw []byte) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", errors.Wrap(err, "decode image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, format, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), format, nil
}
