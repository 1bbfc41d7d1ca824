// Package image handles the stored image representation: data-URL payloads,
// EXIF metadata, and downscaling of oversized uploads.
package image

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// EncodeDataURL wraps raw image bytes into a data-URL payload, sniffing the
// media type from the content.
func EncodeDataURL(data []byte) string {
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a data-URL payload into its media type and raw bytes.
func DecodeDataURL(payload string) (string, []byte, error) {
	if !strings.HasPrefix(payload, "data:") {
		return "", nil, fmt.Errorf("not a data URL")
	}
	comma := strings.IndexByte(payload, ',')
	if comma < 0 {
		return "", nil, fmt.Errorf("malformed data URL: missing payload separator")
	}
	meta := payload[len("data:"):comma]
	mime := meta
	if semi := strings.IndexByte(meta, ';'); semi >= 0 {
		mime = meta[:semi]
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("unsupported data URL encoding %q", meta)
	}
	data, err := base64.StdEncoding.DecodeString(payload[comma+1:])
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode data URL payload: %w", err)
	}
	return mime, data, nil
}
