// Package datauri parses and builds RFC 2397 base64 data URIs.
package datauri

import (
	"encoding/base64"
	"errors"
	"strings"
)

const scheme = "data:"

var (
	ErrMissingScheme = errors.New("data uri must start with data:")
	ErrMalformed     = errors.New("data uri must have the form data:<mime>;base64,<payload>")
	ErrMissingMIME   = errors.New("data uri must declare a mime type")
	ErrNotBase64     = errors.New("data uri payload is not valid base64")
)

// URI is a decoded data URI.
type URI struct {
	MIMEType string
	Params   map[string]string
	Data     []byte
}

// HasScheme reports whether s starts with the data: scheme.
func HasScheme(s string) bool {
	return len(s) >= len(scheme) && strings.EqualFold(s[:len(scheme)], scheme)
}

// Parse decodes s. Only base64-encoded payloads are accepted.
func Parse(s string) (URI, error) {
	s = strings.TrimSpace(s)
	if !HasScheme(s) {
		return URI{}, ErrMissingScheme
	}
	header, payload, ok := strings.Cut(s[len(scheme):], ",")
	if !ok {
		return URI{}, ErrMalformed
	}

	parts := strings.Split(header, ";")
	if len(parts) < 2 || !strings.EqualFold(strings.TrimSpace(parts[len(parts)-1]), "base64") {
		return URI{}, ErrMalformed
	}
	mimeType := strings.ToLower(strings.TrimSpace(parts[0]))
	if mimeType == "" || !strings.Contains(mimeType, "/") {
		return URI{}, ErrMissingMIME
	}

	var params map[string]string
	for _, p := range parts[1 : len(parts)-1] {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}

	data, err := decode(payload)
	if err != nil {
		return URI{}, ErrNotBase64
	}
	return URI{MIMEType: mimeType, Params: params, Data: data}, nil
}

// DecodedLen estimates the decoded size of a data URI without decoding it.
func DecodedLen(s string) int {
	_, payload, ok := strings.Cut(s, ",")
	if !ok {
		return 0
	}
	payload = strings.TrimRight(strings.TrimSpace(payload), "=")
	return base64.RawStdEncoding.DecodedLen(len(payload))
}

// Encode builds a base64 data URI for data.
func Encode(mimeType string, data []byte) string {
	return scheme + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decode(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return nil, ErrNotBase64
	}
	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(payload)
}
