package storage

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// EncodeDataURI 将二进制编码为 data URI，MIME 由内容推断
// EncodeDataURI encodes payload as data:<mime>;base64,<data>
func EncodeDataURI(payload []byte) string {
	mime := http.DetectContentType(payload)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

// DecodeDataURI 解析 base64 data URI
// DecodeDataURI returns the MIME type and payload of a base64 data URI
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	header, data, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data uri has no payload")
	}
	mime, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data uri is not base64")
	}
	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	if mime == "" {
		mime = "text/plain"
	}
	return mime, payload, nil
}
