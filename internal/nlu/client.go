package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StageError is any failure of the NLU stage. It is a distinct type
// from the OCR stage error so callers can tell the stages apart with
// errors.As.
type StageError struct {
	Status  int
	Message string
	Err     error
}

func (e *StageError) Error() string {
	return "nlu stage: " + e.Message
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Client submits raw OCR text to the NLU service.
type Client struct {
	BaseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type processRequest struct {
	RawOCRText string `json:"raw_ocr_text"`
}

// ProcessMenuText sends the raw menu text and returns structured
// dishes plus image prompts.
func (c *Client) ProcessMenuText(ctx context.Context, rawText string) (*Result, error) {
	payload, err := json.Marshal(processRequest{RawOCRText: rawText})
	if err != nil {
		return nil, &StageError{Message: err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+"/process_menu_text/",
		bytes.NewBuffer(payload),
	)
	if err != nil {
		return nil, &StageError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &StageError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &StageError{Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StageError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, body),
		}
	}

	var out Result
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &StageError{
			Status:  resp.StatusCode,
			Message: "invalid NLU response: " + err.Error(),
			Err:     err,
		}
	}

	return &out, nil
}

func errorMessage(status int, body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return fmt.Sprintf("HTTP status %d", status)
}
