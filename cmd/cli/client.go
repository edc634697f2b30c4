package main

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

	"github.com/iho/propledger/internal/adapter/http/dto"
	"github.com/iho/propledger/internal/adapter/http/middleware"
)

// apiClient talks to a running propledger server.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s (status %d)", e.Code, e.Status)
}

func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body any, header http.Header) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		apiErr := &apiError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
		var er dto.ErrorResponse
		if data, _ := io.ReadAll(resp.Body); json.Unmarshal(data, &er) == nil && er.Error != "" {
			apiErr.Code = er.Error
			apiErr.Message = er.Message
		}
		return nil, apiErr
	}
	return resp, nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

// LedgerReport fetches one page of a ledger view.
func (c *apiClient) LedgerReport(ctx context.Context, q dto.ReportQuery) (*dto.ReportResponse, error) {
	var out dto.ReportResponse
	if err := c.getJSON(ctx, "/api/v1/reports/ledger", q.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export streams an export file to w and returns the server's file name.
func (c *apiClient) Export(ctx context.Context, q dto.ReportQuery, w io.Writer) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/reports/ledger/export", q.Values(), nil, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", err
	}
	return attachmentName(resp.Header.Get("Content-Disposition")), nil
}

// Reconcile checks one entity.
func (c *apiClient) Reconcile(ctx context.Context, entityID string) (*dto.ReconciliationResponse, error) {
	var out dto.ReconciliationResponse
	if err := c.getJSON(ctx, "/api/v1/reports/reconcile/"+url.PathEscape(entityID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReconcileAll checks every entity.
func (c *apiClient) ReconcileAll(ctx context.Context) (*dto.ReconciliationReportResponse, error) {
	var out dto.ReconciliationReportResponse
	if err := c.getJSON(ctx, "/api/v1/reports/reconcile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BulkPayment records a payment. The key makes retries safe.
func (c *apiClient) BulkPayment(ctx context.Context, req dto.BulkPaymentRequest, idempotencyKey string) (*dto.BulkPaymentResponse, bool, error) {
	header := http.Header{}
	if idempotencyKey != "" {
		header.Set(middleware.IdempotencyKeyHeader, idempotencyKey)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/v1/payments/bulk", nil, req, header)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	var out dto.BulkPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, false, err
	}
	return &out, resp.Header.Get("X-Idempotency-Replay") == "true", nil
}

// Messages fetches a conversation.
func (c *apiClient) Messages(ctx context.Context, phone string, limit int) (*dto.MessagesResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}

	var out dto.MessagesResponse
	if err := c.getJSON(ctx, "/api/v1/chat/"+url.PathEscape(phone)+"/messages", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func attachmentName(disposition string) string {
	_, name, ok := strings.Cut(disposition, "filename=")
	if !ok {
		return ""
	}
	return strings.Trim(name, `"`)
}
