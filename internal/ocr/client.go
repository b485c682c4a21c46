package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// StageError is any failure of the OCR stage: transport errors,
// non-2xx responses, or an unreadable body. Message carries the
// upstream detail text verbatim when the service supplied one.
type StageError struct {
	Status  int // 0 when the request never produced a response
	Message string
	Err     error
}

func (e *StageError) Error() string {
	return "ocr stage: " + e.Message
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Client submits menu images to the OCR service.
type Client struct {
	BaseURL string
	client  *http.Client
}

// NewClient builds a client for the OCR service. A zero timeout means
// requests wait on the upstream indefinitely.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type extractResponse struct {
	RawOCROutput string `json:"raw_ocr_output"`
}

// ExtractMenu uploads one image as a multipart form and returns the raw
// extracted text exactly as the service produced it.
func (c *Client) ExtractMenu(ctx context.Context, image io.Reader, filename string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", &StageError{Message: err.Error(), Err: err}
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", &StageError{Message: err.Error(), Err: err}
	}
	if err := mw.Close(); err != nil {
		return "", &StageError{Message: err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+"/extract_menu_data/",
		&buf,
	)
	if err != nil {
		return "", &StageError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &StageError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &StageError{Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StageError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, body),
		}
	}

	var out extractResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &StageError{
			Status:  resp.StatusCode,
			Message: "invalid OCR response: " + err.Error(),
			Err:     err,
		}
	}

	return out.RawOCROutput, nil
}

// errorMessage prefers the service's own detail text over a generic
// status line.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return fmt.Sprintf("HTTP status %d", status)
}
