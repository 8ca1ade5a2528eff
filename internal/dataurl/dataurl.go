// Package dataurl decodes base64 data URLs produced by canvas.toDataURL.
package dataurl

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
)

// PNGPrefix is the prefix every successful render result starts with.
const PNGPrefix = "data:image/png;base64,"

// Decoded holds the payload of a parsed data URL.
type Decoded struct {
	MIME string
	Data []byte
}

// Parse splits and base64-decodes a data URL.
func Parse(u string) (Decoded, error) {
	rest, ok := strings.CutPrefix(u, "data:")
	if !ok {
		return Decoded{}, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Decoded{}, fmt.Errorf("malformed data URL: missing payload")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return Decoded{}, fmt.Errorf("unsupported data URL encoding: %q", meta)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Decoded{}, fmt.Errorf("decode data URL payload: %w", err)
	}
	return Decoded{MIME: mime, Data: data}, nil
}

// DecodePNG parses a PNG data URL and reports the image dimensions without
// fully decoding pixel data.
func DecodePNG(u string) ([]byte, int, int, error) {
	dec, err := Parse(u)
	if err != nil {
		return nil, 0, 0, err
	}
	if dec.MIME != "image/png" {
		return nil, 0, 0, fmt.Errorf("unexpected MIME type %q; want image/png", dec.MIME)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(dec.Data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode PNG header: %w", err)
	}
	return dec.Data, cfg.Width, cfg.Height, nil
}
