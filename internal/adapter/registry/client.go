// Package registry adapts the external ownership-transfer rail used after a
// forced sale. Transfers are expected to be idempotent server-side, so a
// reconciliation retry of a completed transfer is harmless.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/uzochukwuV/lendcore/internal/domain/fault"
	"github.com/uzochukwuV/lendcore/pkg/id"
)

const defaultTimeout = 5 * time.Second

type Client struct {
	base    string
	httpc   *http.Client
	timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{base: baseURL, httpc: &http.Client{}, timeout: timeout}
}

type transferReq struct {
	NewOwner string `json:"new_owner"`
}

func (c *Client) Transfer(ctx context.Context, assetID, newOwner string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, _ := json.Marshal(transferReq{NewOwner: newOwner})
	u := fmt.Sprintf("%s/assets/%s/transfer", c.base, url.PathEscape(assetID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fault.Newf(fault.KindUnavailable, "registry request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// correlation id for reconciling transfers against liquidation logs
	req.Header.Set("X-Request-Id", id.NewID32())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fault.Newf(fault.KindUnavailable, "registry unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fault.Newf(fault.KindUnavailable, "registry returned %d for asset %s", resp.StatusCode, assetID)
	}
	return nil
}
