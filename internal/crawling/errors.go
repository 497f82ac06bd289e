// Package crawling discovers and extracts the text of a company's website:
// site classification, link discovery, static and headless rendering, the
// bounded crawl itself, and legal-page triage.
package crawling

import (
	"errors"
	"fmt"
	"net/http"
)

// InvalidInputError is returned for a URL rejected before any network activity.
type InvalidInputError struct {
	Message string
	Cause   error
}

func (e *InvalidInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Cause
}

// PermissionDeniedError is returned when robots.txt disallows the target URL.
type PermissionDeniedError struct {
	URL string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: scraping disallowed by robots.txt for %s", e.URL)
}

// BlockedByServerError is returned when robots.txt allowed every attempted
// page of a headless crawl but none of them could be loaded.
type BlockedByServerError struct {
	URL       string
	Attempted int
	Cause     error
}

func (e *BlockedByServerError) Error() string {
	msg := fmt.Sprintf("blocked by server: robots.txt allows %s but all %d page fetches were denied", e.URL, e.Attempted)
	if e.Cause != nil {
		return fmt.Sprintf("%s: last error: %v", msg, e.Cause)
	}
	return msg
}

func (e *BlockedByServerError) Unwrap() error {
	return e.Cause
}

// FetchFailureError represents one page that could not be fetched or rendered.
// It is fatal only for the base page of a crawl.
type FetchFailureError struct {
	URL   string
	Cause error
}

func (e *FetchFailureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch failure for %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("fetch failure for %s", e.URL)
}

func (e *FetchFailureError) Unwrap() error {
	return e.Cause
}

// ClassificationError represents a failure of the site classifier's own fetch.
// IsDynamic absorbs it and reports the site as dynamic.
type ClassificationError struct {
	Message string
	Cause   error
}

func (e *ClassificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("classification error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("classification error: %s", e.Message)
}

func (e *ClassificationError) Unwrap() error {
	return e.Cause
}

// CrawlError represents a general crawling failure
type CrawlError struct {
	Message string
	Cause   error
}

func (e *CrawlError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("crawl error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("crawl error: %s", e.Message)
}

func (e *CrawlError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps a crawl error to the status code an API layer should answer with.
func HTTPStatus(err error) int {
	var (
		invalid *InvalidInputError
		denied  *PermissionDeniedError
		blocked *BlockedByServerError
		failure *FetchFailureError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &denied), errors.As(err, &blocked):
		return http.StatusForbidden
	case errors.As(err, &failure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
