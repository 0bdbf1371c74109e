package genapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// JobStatus is the backend state of a submitted request.
type JobStatus string

const (
	JobProcessing JobStatus = "processing"
	JobSuccess    JobStatus = "success"
	JobFailed     JobStatus = "failed"
)

// AudioNetwork is the backend network used for music synthesis.
const AudioNetwork = "suno"

// ErrUnauthorized indicates the API key was rejected.
var ErrUnauthorized = errors.New("generation api rejected credentials")

// TooManyRequestsError represents rate limiting signal from the backend.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Job is a snapshot of an asynchronous generation request.
type Job struct {
	ID     string
	Status JobStatus
	Result json.RawMessage
	Output json.RawMessage
	Error  string
	// Raw holds the whole response body, whose shape varies per network.
	Raw json.RawMessage
}

// Text returns generated text from the known result shapes.
func (j *Job) Text() string {
	for _, raw := range []json.RawMessage{j.Result, j.Output} {
		if text := probeText(raw); text != "" {
			return text
		}
	}
	return ""
}

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func probeText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}

	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		for _, item := range list {
			if text := probeText(item); text != "" {
				return text
			}
		}
		return ""
	}

	var completion chatCompletion
	if json.Unmarshal(raw, &completion) == nil && len(completion.Choices) > 0 {
		return strings.TrimSpace(completion.Choices[0].Message.Content)
	}
	return ""
}

// AudioRequest carries everything the music network needs.
type AudioRequest struct {
	Title  string
	Tags   string
	Lyrics string
}

// Client exposes operations of the text and audio generation backend.
type Client interface {
	SubmitText(ctx context.Context, prompt string) (string, error)
	SubmitAudio(ctx context.Context, req AudioRequest) (string, error)
	Fetch(ctx context.Context, id string) (*Job, error)
}

// HTTPClient implements Client via HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	apiKey     string
	textModel  string
	httpClient *http.Client
	logger     *slog.Logger
}

type submitResponse struct {
	RequestID json.RawMessage `json:"request_id"`
}

type jobResponse struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error_message"`
}

// NewHTTPClient creates HTTP generation client with default timeout.
func NewHTTPClient(baseURL, apiKey, textModel string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse generation api url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("generation api url must be absolute")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("generation api key must be provided")
	}
	return &HTTPClient{
		baseURL:   parsed,
		apiKey:    apiKey,
		textModel: textModel,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SubmitText starts a chat completion and returns the request id.
func (c *HTTPClient) SubmitText(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	return c.submit(ctx, c.textModel, body)
}

// SubmitAudio starts music synthesis and returns the request id.
func (c *HTTPClient) SubmitAudio(ctx context.Context, req AudioRequest) (string, error) {
	body := map[string]any{
		"title":  req.Title,
		"tags":   req.Tags,
		"prompt": req.Lyrics,
	}
	return c.submit(ctx, AudioNetwork, body)
}

func (c *HTTPClient) submit(ctx context.Context, network string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpoint("networks", network), data)
	if err != nil {
		return "", err
	}

	var out submitResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	id := strings.Trim(string(out.RequestID), `"`)
	if id == "" || id == "null" {
		return "", fmt.Errorf("generation api returned no request id")
	}
	return id, nil
}

// Fetch queries the backend for request status.
func (c *HTTPClient) Fetch(ctx context.Context, id string) (*Job, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoint("request", "get", id), nil)
	if err != nil {
		return nil, err
	}

	var data jobResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode job response: %w", err)
	}
	return &Job{
		ID:     id,
		Status: normalizeStatus(data.Status),
		Result: data.Result,
		Output: data.Output,
		Error:  data.Error,
		Raw:    body,
	}, nil
}

func normalizeStatus(s string) JobStatus {
	switch strings.ToLower(s) {
	case "success", "succeeded", "completed":
		return JobSuccess
	case "failed", "error":
		return JobFailed
	default:
		return JobProcessing
	}
}

func (c *HTTPClient) endpoint(parts ...string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(append([]string{endpoint.Path}, parts...)...)
	return endpoint.String()
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		c.logger.Error("generation api request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("generation api error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
