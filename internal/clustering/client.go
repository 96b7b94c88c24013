package clustering

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/IonMich/instructor-pilot/internal/config"
)

// Client defines the contract for invoking a clustering pass.
type Client interface {
	Compute(ctx context.Context, req ComputeRequest) (*Result, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a clustering client from the clusterer configuration.
func New(cfg *config.ClustererConfig, logger *slog.Logger) Client {
	return &httpClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger.With("system", "clustering"),
	}
}

// computeResponse is the clusterer's wire envelope.
type computeResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Versions []struct {
		Name         string   `json:"name"`
		VersionImage *string  `json:"version_image,omitempty"`
		Members      []string `json:"members"`
	} `json:"versions"`
}

func (c *httpClient) Compute(ctx context.Context, req ComputeRequest) (*Result, error) {
	if len(req.Pages) == 0 || len(req.Items) == 0 {
		return nil, ErrInvalidRequest
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode clustering request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/cluster",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("build clustering request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Info(
		"clustering pass requested",
		"assignment", req.AssignmentID,
		"pages", req.Pages,
		"items", len(req.Items),
	)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var envelope computeResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if !envelope.Success {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, envelope.Error)
	}

	return decodeResult(envelope)
}
