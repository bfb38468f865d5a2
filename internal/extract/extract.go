// Package extract downloads documents and turns them into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

var (
	// ErrUnsupportedType is returned for file names without a .pdf, .docx or .txt extension.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrFetch wraps download failures.
	ErrFetch = errors.New("fetch document")
)

const (
	defaultTimeout  = 30 * time.Second
	maxDocumentSize = 25 << 20
)

// Extractor fetches a document URL and extracts its text based on the file name.
type Extractor struct {
	client *http.Client
}

// New returns an Extractor whose downloads time out after timeout (30s when zero).
func New(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Extractor{client: &http.Client{Timeout: timeout}}
}

// Extract downloads url and returns the trimmed text of the document named fileName.
func (e *Extractor) Extract(ctx context.Context, url, fileName string) (string, error) {
	ext := strings.ToLower(path.Ext(fileName))
	switch ext {
	case ".pdf", ".docx", ".txt":
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, fileName)
	}

	content, err := e.fetch(ctx, url)
	if err != nil {
		return "", err
	}

	var text string
	switch ext {
	case ".pdf":
		text, err = extractPDF(content)
	case ".docx":
		text, err = extractDOCX(content)
	default:
		text = string(content)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", fileName, err)
	}
	return strings.TrimSpace(text), nil
}

func (e *Extractor) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFetch, url, resp.StatusCode)
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	if len(content) > maxDocumentSize {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrFetch, maxDocumentSize)
	}
	return content, nil
}
