// Package checkclient talks to a running validator over HTTP.
package checkclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alovak/cardcheck/validator/models"
)

// ErrRejected is returned when the server refuses the input itself, for
// example a strict-mode rejection or an oversized batch.
var ErrRejected = errors.New("rejected by server")

type Client struct {
	Base string
	HTTP *http.Client
}

func New(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: hc}
}

func (c *Client) Check(ctx context.Context, req models.CheckRequest) (*models.CheckResult, error) {
	var res models.CheckResult
	if err := c.post(ctx, "/checks", req, &res); err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}
	return &res, nil
}

// CheckBatch sends numbers in one request. Results come back in input order.
func (c *Client) CheckBatch(ctx context.Context, numbers []string) ([]models.CheckResult, error) {
	var resp models.BatchResponse
	if err := c.post(ctx, "/checks/batch", models.BatchRequest{Numbers: numbers}, &resp); err != nil {
		return nil, fmt.Errorf("check batch: %w", err)
	}
	if len(resp.Results) != len(numbers) {
		return nil, fmt.Errorf("check batch: got %d results for %d numbers", len(resp.Results), len(numbers))
	}
	return resp.Results, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(body))
		if resp.StatusCode/100 == 4 {
			return fmt.Errorf("%w: status=%d body=%s", ErrRejected, resp.StatusCode, msg)
		}
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
