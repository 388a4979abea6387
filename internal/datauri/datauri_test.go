package datauri

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantMIME string
		wantData string
		wantErr  error
	}{
		{name: "pdf", in: "data:application/pdf;base64,JVBERi0xLjQ=", wantMIME: "application/pdf", wantData: "%PDF-1.4"},
		{name: "params and case", in: "DATA:Text/Plain;charset=utf-8;base64,aGVsbG8=", wantMIME: "text/plain", wantData: "hello"},
		{name: "unpadded", in: "data:text/plain;base64,aGVsbG8", wantMIME: "text/plain", wantData: "hello"},
		{name: "wrapped payload", in: "data:text/plain;base64,aGVs\nbG8=", wantMIME: "text/plain", wantData: "hello"},
		{name: "no scheme", in: "application/pdf;base64,JVBERi0=", wantErr: ErrMissingScheme},
		{name: "no comma", in: "data:application/pdf;base64", wantErr: ErrMalformed},
		{name: "not base64 marker", in: "data:text/plain,hello", wantErr: ErrMalformed},
		{name: "missing mime", in: "data:;base64,aGVsbG8=", wantErr: ErrMissingMIME},
		{name: "bad payload", in: "data:text/plain;base64,@@@", wantErr: ErrNotBase64},
		{name: "empty payload", in: "data:text/plain;base64,", wantErr: ErrNotBase64},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if got.MIMEType != tt.wantMIME {
				t.Fatalf("mime = %q, want %q", got.MIMEType, tt.wantMIME)
			}
			if string(got.Data) != tt.wantData {
				t.Fatalf("data = %q, want %q", got.Data, tt.wantData)
			}
		})
	}
}

func TestEncodeRoundTripsThroughParse(t *testing.T) {
	uri := Encode("application/pdf", []byte("%PDF-1.7 body"))
	if !strings.HasPrefix(uri, "data:application/pdf;base64,") {
		t.Fatalf("unexpected prefix: %s", uri)
	}
	parsed, err := Parse(uri)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(parsed.Data) != "%PDF-1.7 body" {
		t.Fatalf("unexpected data %q", parsed.Data)
	}
}

func TestDecodedLen(t *testing.T) {
	uri := Encode("text/plain", []byte(strings.Repeat("x", 1000)))
	if got := DecodedLen(uri); got != 1000 {
		t.Fatalf("DecodedLen = %d, want 1000", got)
	}
	if got := DecodedLen("data:text/plain;base64"); got != 0 {
		t.Fatalf("DecodedLen without payload = %d, want 0", got)
	}
}
