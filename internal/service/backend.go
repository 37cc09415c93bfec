package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eportal/internal/logger"
	"eportal/internal/model"
)

const maxEnvelopeBytes = 8 << 20

// Scope carries the per-request values every backend call needs.
type Scope struct {
	Token     string
	Locale    string
	RequestID string
}

type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Scope  Scope
}

// envelope is the remote API's uniform response shape.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *model.Meta     `json:"meta"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Error   json.RawMessage `json:"error"`
}

// Backend wraps the remote e-services REST API. It never retries and never
// caches; every call stands alone.
type Backend struct {
	baseURL string
	client  *http.Client
}

func NewBackend(baseURL string, timeout time.Duration) *Backend {
	return &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
	}
}

func (b *Backend) Close() { b.client.CloseIdleConnections() }

// Do issues call and decodes the envelope's data into out. The envelope
// meta, when present, is returned for pagination.
func (b *Backend) Do(ctx context.Context, call Call, out interface{}) (*model.Meta, error) {
	resp, err := b.send(ctx, call, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBytes))
	if err != nil {
		return nil, fmt.Errorf("backend %s %s: read body: %w", call.Method, call.Path, err)
	}
	if resp.StatusCode >= 400 {
		return nil, errorFromBody(resp.StatusCode, data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &APIError{Code: ErrCodeDecode, Status: resp.StatusCode, Message: err.Error()}
	}
	if env.Success != nil && !*env.Success {
		return nil, envelopeError(resp.StatusCode, &env)
	}

	payload := env.Data
	if env.Success == nil && env.Data == nil {
		// bare payload without an envelope
		payload = data
	}
	if out != nil && len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, out); err != nil {
			return env.Meta, &APIError{Code: ErrCodeDecode, Status: resp.StatusCode, Message: err.Error()}
		}
	}
	return env.Meta, nil
}

// DoRaw issues call and hands back the body for streaming, e.g. a PDF.
// The caller closes the returned body.
func (b *Backend) DoRaw(ctx context.Context, call Call) (io.ReadCloser, string, error) {
	resp, err := b.send(ctx, call, "*/*")
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBytes))
		return nil, "", errorFromBody(resp.StatusCode, data)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (b *Backend) send(ctx context.Context, call Call, accept string) (*http.Response, error) {
	var reader io.Reader
	if call.Body != nil {
		payload, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := b.baseURL + call.Path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if call.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if call.Scope.Locale != "" {
		req.Header.Set("Accept-Language", call.Scope.Locale)
	}
	if call.Scope.Token != "" {
		req.Header.Set("Authorization", "Bearer "+call.Scope.Token)
	}
	if call.Scope.RequestID != "" {
		req.Header.Set("X-Request-ID", call.Scope.RequestID)
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		logger.Warn("backend.call.failed", "method", call.Method, "path", call.Path,
			"request_id", call.Scope.RequestID, "err", err)
		return nil, fmt.Errorf("backend %s %s: %w", call.Method, call.Path, err)
	}
	logger.Info("backend.call", "method", call.Method, "path", call.Path, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(), "request_id", call.Scope.RequestID)
	return resp, nil
}

func errorFromBody(status int, data []byte) error {
	if status == http.StatusUnauthorized {
		return &APIError{Code: ErrCodeUnauthorized, Status: status}
	}
	var env envelope
	if json.Unmarshal(data, &env) == nil {
		return envelopeError(status, &env)
	}
	return &APIError{Code: codeForStatus(status), Status: status}
}

func envelopeError(status int, env *envelope) *APIError {
	e := &APIError{Code: codeForStatus(status), Status: status, Message: env.Message}
	if env.Code != "" {
		e.Code = ErrorCode(env.Code)
	}
	if len(env.Error) > 0 {
		switch env.Error[0] {
		case '"':
			var code string
			if json.Unmarshal(env.Error, &code) == nil && code != "" {
				e.Code = ErrorCode(code)
			}
		case '{':
			var detail struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if json.Unmarshal(env.Error, &detail) == nil {
				if detail.Code != "" {
					e.Code = ErrorCode(detail.Code)
				}
				if detail.Message != "" {
					e.Message = detail.Message
				}
			}
		}
	}
	if status < 400 && e.Code == ErrCodeUnknown && env.Code == "" {
		e.Code = ErrCodeValidation
	}
	return e
}
