package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	mimePDF  = "application/pdf"
	mimeText = "text/plain"
)

var (
	// ErrUnsupportedFormat indicates the file is neither PDF nor plain text.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrTooLarge indicates the payload exceeds the configured size ceiling.
	ErrTooLarge = errors.New("file too large")
	// ErrUndecodable indicates the bytes could not be decoded as the
	// declared format (invalid UTF-8 text, unreadable PDF).
	ErrUndecodable = errors.New("undecodable document")
)

// Extract validates and normalizes an uploaded file into plain text.
// The size ceiling is enforced before any parsing. Extraction is
// deterministic: the same bytes always produce the same text.
func Extract(ctx context.Context, data []byte, declaredMimeType string, fileName string, maxSizeBytes int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if maxSizeBytes > 0 && int64(len(data)) > maxSizeBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, len(data), maxSizeBytes)
	}

	switch resolveMimeType(declaredMimeType, fileName, data) {
	case mimePDF:
		return extractPDF(data)
	case mimeText:
		return extractText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, strings.TrimSpace(declaredMimeType))
	}
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed cross-reference tables;
	// surface those as undecodable input instead of crashing the pipeline.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: pdf parse: %v", ErrUndecodable, rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf parse: %v", ErrUndecodable, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf text: %v", ErrUndecodable, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: pdf text: %v", ErrUndecodable, err)
	}
	return buf.String(), nil
}

func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid utf-8 byte sequence", ErrUndecodable)
	}
	return string(data), nil
}

// resolveMimeType normalizes the declared type, falling back to content
// sniffing and the file extension when the declaration is missing or vague.
func resolveMimeType(declared string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	switch clean {
	case mimePDF, mimeText:
		return clean
	}

	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return mimePDF
	}

	if clean == "" || clean == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(fileName)) {
		case ".pdf":
			return mimePDF
		case ".txt":
			return mimeText
		}
		sniffed := strings.ToLower(strings.TrimSpace(strings.Split(http.DetectContentType(data), ";")[0]))
		if sniffed == mimePDF || sniffed == mimeText {
			return sniffed
		}
	}
	return clean
}
