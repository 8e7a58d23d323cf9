package client

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

	"github.com/google/go-querystring/query"
	"github.com/natansdj/electives"
	"github.com/natansdj/electives/health"
	"github.com/natansdj/electives/repository"
)

// Type for saving header value.
type httpHeader struct {
	Name  string
	Value string
}

// APIError is a non-2xx answer from the service
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("electives api: %d %s", e.StatusCode, e.Message)
}

type Options struct {
	LogMethod   bool
	LogResponse bool
}

// Client calls the electives HTTP API
type Client struct {
	url     string
	client  *http.Client
	headers []*httpHeader
	options Options
}

// New returns a client for baseURL with a 10 second request timeout
func New(baseURL string) *Client {
	return &Client{
		url:    strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Manual set http client.
func (h *Client) SetClient(client *http.Client) {
	h.client = client
}

func (h *Client) SetOptions(options Options) {
	h.options = options
}

// Setting up header name and value.
func (h *Client) AddHeader(name string, value string) {
	for _, header := range h.headers {
		if header.Name == name {
			header.Value = value
			return
		}
	}

	h.headers = append(h.headers, &httpHeader{
		Name:  name,
		Value: value,
	})
}

type searchQuery struct {
	Q string `url:"q"`
}

func (h *Client) AllModules(ctx context.Context) ([]repository.Module, error) {
	var modules []repository.Module
	_, err := h.do(ctx, http.MethodGet, "/modules/all", nil, nil, &modules)
	return modules, err
}

func (h *Client) SearchModules(ctx context.Context, q string) ([]repository.Module, error) {
	var modules []repository.Module
	_, err := h.do(ctx, http.MethodGet, "/modules/search", searchQuery{Q: q}, nil, &modules)
	return modules, err
}

func (h *Client) GetModule(ctx context.Context, code string) (*repository.Module, error) {
	var module repository.Module
	if _, err := h.do(ctx, http.MethodGet, "/modules/"+url.PathEscape(code), nil, nil, &module); err != nil {
		return nil, err
	}
	return &module, nil
}

func (h *Client) ModuleReviews(ctx context.Context, code string) ([]repository.Review, error) {
	var reviews []repository.Review
	_, err := h.do(ctx, http.MethodGet, "/modules/"+url.PathEscape(code)+"/reviews", nil, nil, &reviews)
	return reviews, err
}

// SubmitReview posts a review and returns the stored row
func (h *Client) SubmitReview(ctx context.Context, electiveCode string, rating int, review string) (*repository.Review, error) {
	body := map[string]any{
		"Elective_Code": electiveCode,
		"rating":        rating,
		"review":        review,
	}

	var stored repository.Review
	if _, err := h.do(ctx, http.MethodPost, "/review/submission", nil, body, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Health returns the probe result. An unhealthy service is reported in the
// result, not as an error; err is set only when no answer was decoded.
func (h *Client) Health(ctx context.Context) (health.CheckResult, error) {
	var result health.CheckResult
	code, err := h.do(ctx, http.MethodGet, "/health", nil, nil, &result)
	if err != nil && code == http.StatusInternalServerError && result.Status != "" {
		return result, nil
	}
	return result, err
}

// do sends the request and decodes the JSON answer into out, also on error statuses
func (h *Client) do(ctx context.Context, method, endPoint string, urlQuery any, body any, out any) (int, error) {
	fullUrl := h.url + endPoint

	if urlQuery != nil {
		v, err := query.Values(urlQuery)
		if err != nil {
			return 0, err
		}
		fullUrl = fmt.Sprintf("%s?%s", fullUrl, v.Encode())
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		payload = bytes.NewReader(raw)
	}

	if h.options.LogMethod {
		electives.LogI("Client: %s \"%s\"", method, fullUrl)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullUrl, payload)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Header Setup
	for _, header := range h.headers {
		req.Header.Set(header.Name, header.Value)
	}

	res, err := h.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, err
	}

	if h.options.LogResponse {
		electives.LogI("Client: Response Status: %v", res.StatusCode)
		electives.LogI("Client: Response Body: %s", string(resBody))
	}

	if res.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.Unmarshal(resBody, &apiErr)
		if out != nil {
			json.Unmarshal(resBody, out)
		}
		if apiErr.Error == "" {
			apiErr.Error = http.StatusText(res.StatusCode)
		}
		return res.StatusCode, &APIError{StatusCode: res.StatusCode, Message: apiErr.Error}
	}

	if out != nil && len(resBody) > 0 {
		if err := json.Unmarshal(resBody, out); err != nil {
			return res.StatusCode, fmt.Errorf("decode %s %s: %w", method, endPoint, err)
		}
	}

	return res.StatusCode, nil
}
