package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/maltedev/product-compare/internal/models"
)

const (
	PathSave             = "/save-to-mysql"
	PathClearProducts    = "/clear-products"
	PathClearMomo        = "/clear-momo-products"
	PathClearPchome      = "/clear-pchome-products"
	PathInitializePchome = "/initialize-pchome"
	PathDeleteLabel      = "/delete-labeled-product"
)

// RejectedError is a well-formed {success:false} answer.
type RejectedError struct {
	Endpoint string
	Message  string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected the request", e.Endpoint)
	}
	return fmt.Sprintf("%s rejected the request: %s", e.Endpoint, e.Message)
}

// IsRejected reports whether err came from the backend declining a request,
// as opposed to a transport failure.
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}

// Client talks to the labeling API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "backend_client"),
	}
}

func (c *Client) SaveSelection(ctx context.Context, req *models.SaveRequest) (*models.Response, error) {
	return c.post(ctx, PathSave, req)
}

func (c *Client) ClearProducts(ctx context.Context) (*models.Response, error) {
	return c.post(ctx, PathClearProducts, nil)
}

func (c *Client) ClearMomoProducts(ctx context.Context) (*models.Response, error) {
	return c.post(ctx, PathClearMomo, nil)
}

func (c *Client) ClearPchomeProducts(ctx context.Context) (*models.Response, error) {
	return c.post(ctx, PathClearPchome, nil)
}

func (c *Client) InitializePchome(ctx context.Context) (*models.Response, error) {
	return c.post(ctx, PathInitializePchome, nil)
}

func (c *Client) DeleteLabeledProduct(ctx context.Context, momoSKU string) (*models.Response, error) {
	return c.post(ctx, PathDeleteLabel, &models.DeleteLabelRequest{MomoSKU: momoSKU})
}

func (c *Client) post(ctx context.Context, path string, payload any) (*models.Response, error) {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed", "path", path, "error", err)
		return nil, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	var out models.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response (status %s): %w", path, resp.Status, err)
	}

	c.logger.Debug("backend request completed",
		"path", path,
		"status", resp.StatusCode,
		"success", out.Success,
		"duration", time.Since(start))

	if !out.Success {
		return &out, &RejectedError{Endpoint: path, Message: out.Error}
	}
	return &out, nil
}
