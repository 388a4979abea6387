package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MIMEPDF      = "application/pdf"
	MIMEDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEDOC      = "application/msword"
	MIMEText     = "text/plain"
	MIMEMarkdown = "text/markdown"
)

// ErrUnsupportedType is returned for payloads that cannot be turned into text.
var ErrUnsupportedType = errors.New("unsupported mime type")

// ErrEmptyText is returned when a supported document yields no text.
var ErrEmptyText = errors.New("document contains no extractable text")

// TextFromBytes extracts plain text from an in-memory document.
func TextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := NormalizeMIMEType(mimeType, fileName, data)

	var (
		text string
		err  error
	)
	switch normalized {
	case MIMEPDF:
		text, err = withContext(ctx, func() (string, error) { return extractPDF(data) })
	case MIMEDOCX:
		text, err = extractDOCX(data)
	case MIMEText, MIMEMarkdown:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s is not valid utf-8", ErrUnsupportedType, normalized)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", normalized, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// NormalizeMIMEType strips parameters and resolves generic container types
// (zip, octet-stream, empty) using the payload and file extension.
func NormalizeMIMEType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case "", "application/octet-stream":
		if ext := mimeFromExt(fileName); ext != "" {
			return ext
		}
		sniffed := strings.ToLower(strings.Split(http.DetectContentType(data), ";")[0])
		if sniffed != "application/zip" {
			return sniffed
		}
		clean = sniffed
	case "application/x-pdf":
		return MIMEPDF
	}
	if clean != "application/zip" {
		return clean
	}

	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}
	if ext := mimeFromExt(fileName); ext == MIMEDOCX {
		return ext
	}
	return clean
}

func mimeFromExt(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDOCX
	case ".doc":
		return MIMEDOC
	case ".txt":
		return MIMEText
	case ".md":
		return MIMEMarkdown
	default:
		return ""
	}
}

func extractPDF(data []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	if err := checkPageTree(pdfReader); err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const (
	maxPDFPages     = 500
	maxPageTreeDepth = 32
	maxPageNodes    = 4 * maxPDFPages
)

// ErrMalformedPDF is returned for page trees the reader would walk forever.
var ErrMalformedPDF = errors.New("malformed pdf page tree")

// checkPageTree bounds the page tree before text extraction. The reader
// follows /Kids without cycle detection, so a self-referencing node loops.
func checkPageTree(r *pdf.Reader) error {
	if n := r.NumPage(); n < 0 || n > maxPDFPages {
		return fmt.Errorf("%w: page count %d", ErrMalformedPDF, n)
	}
	nodes := 0
	var walk func(node pdf.Value, depth int) error
	walk = func(node pdf.Value, depth int) error {
		nodes++
		if depth > maxPageTreeDepth || nodes > maxPageNodes {
			return fmt.Errorf("%w: page tree too deep or cyclic", ErrMalformedPDF)
		}
		if node.Key("Type").Name() != "Pages" {
			return nil
		}
		kids := node.Key("Kids")
		for i := 0; i < kids.Len(); i++ {
			if err := walk(kids.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(r.Trailer().Key("Root").Key("Pages"), 0)
}

// withContext runs fn in its own goroutine so a stuck parser cannot outlive ctx.
func withContext(ctx context.Context, fn func() (string, error)) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrMalformedPDF, r)}
			}
		}()
		text, err := fn()
		done <- result{text: text, err: err}
	}()
	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent()), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			if inText {
				buf.WriteString(string(t))
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		switch name {
		case "word/document.xml":
			return MIMEDOCX
		case "xl/workbook.xml":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case "ppt/presentation.xml":
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
		}
	}
	return ""
}
