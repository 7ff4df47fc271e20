package ledger

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vitaltrace/vitaltrace/server/internal/config"
)

// Receipt is the anchoring service's acknowledgement for one fingerprint.
type Receipt struct {
	Committed bool `json:"committed"`
}

// Anchorer records fingerprints in the tamper-evident ledger.
type Anchorer interface {
	// Anchor records fingerprint and returns the service's receipt.
	Anchor(ctx context.Context, fingerprint [32]byte) (Receipt, error)

	// Verify reports whether fingerprint was previously anchored.
	Verify(ctx context.Context, fingerprint [32]byte) (bool, error)

	// Enabled reports whether anchoring is configured.
	Enabled() bool
}

// New builds an Anchorer from configuration. An empty endpoint selects the
// Disabled variant; the decision is made once here, not per call.
func New(cfg config.LedgerConfig) Anchorer {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return Disabled{}
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		timeout:  cfg.Timeout,
		client:   &http.Client{},
	}
}

// Client talks to a live anchoring service over HTTP.
type Client struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

type anchorRequest struct {
	Fingerprint string `json:"fingerprint"`
}

type verifyResponse struct {
	Exists bool `json:"exists"`
}

// Anchor posts fingerprint to the service and waits for its receipt,
// bounded by the configured timeout.
func (c *Client) Anchor(ctx context.Context, fingerprint [32]byte) (Receipt, error) {
	var receipt Receipt
	err := c.post(ctx, "/anchor", fingerprint, &receipt)
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

// Verify asks the service whether fingerprint was previously anchored.
func (c *Client) Verify(ctx context.Context, fingerprint [32]byte) (bool, error) {
	var resp verifyResponse
	if err := c.post(ctx, "/verify", fingerprint, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

func (c *Client) Enabled() bool { return true }

func (c *Client) post(ctx context.Context, path string, fingerprint [32]byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, _ := json.Marshal(anchorRequest{
		Fingerprint: hex.EncodeToString(fingerprint[:]),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ledger: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ledger: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("ledger: %s returned HTTP %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ledger: decode %s response: %w", path, err)
	}
	return nil
}

// Disabled is the Anchorer used when no ledger endpoint is configured.
// Anchors are logged and skipped.
type Disabled struct{}

func (Disabled) Anchor(_ context.Context, fingerprint [32]byte) (Receipt, error) {
	slog.Debug("ledger: disabled, skipping anchor",
		"fingerprint", hex.EncodeToString(fingerprint[:]))
	return Receipt{}, nil
}

func (Disabled) Verify(context.Context, [32]byte) (bool, error) {
	return false, nil
}

func (Disabled) Enabled() bool { return false }
