// Package oracle is the stateless adapter for the external asset
// valuation/ownership oracle. It is consulted, never reimplemented: every
// call returns a fresh snapshot and nothing is cached here.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/uzochukwuV/lendcore/internal/domain/asset"
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

// GetAsset fetches the live snapshot for one asset. The call is time-bounded;
// a timeout surfaces as a retryable unavailable fault with zero mutation
// performed by the caller.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*asset.Collateral, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/assets/%s", c.base, url.PathEscape(assetID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "oracle request: %v", err)
	}
	req.Header.Set("X-Request-Id", id.NewID32())
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "oracle unreachable: %v", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fault.Newf(fault.KindNotFound, "asset %s not found", assetID)
	case http.StatusUnprocessableEntity:
		// The oracle knows the asset but refuses to vouch for it.
		return nil, fault.Newf(fault.KindVerificationFailed, "oracle rejected asset %s", assetID)
	default:
		return nil, fault.Newf(fault.KindUnavailable, "oracle returned %d", resp.StatusCode)
	}

	var out asset.Collateral
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fault.Newf(fault.KindUnavailable, "oracle response: %v", err)
	}
	if out.AssetID == "" {
		out.AssetID = assetID
	}
	return &out, nil
}
