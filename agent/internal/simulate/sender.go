package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vitaltrace/vitaltrace/pkg/types"
)

// Sender posts readings to the server's ingestion boundary.
type Sender struct {
	endpoint string
	client   *http.Client
}

// NewSender creates a Sender for the given server base URL.
func NewSender(serverEndpoint string) *Sender {
	return &Sender{
		endpoint: serverEndpoint + "/ingest",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// ingestResponse mirrors the server's /ingest response body.
type ingestResponse struct {
	Status      types.Status `json:"status"`
	Fingerprint string       `json:"fingerprint"`
	Cause       *string      `json:"cause"`
}

// Send posts r and returns the server's classification.
func (s *Sender) Send(ctx context.Context, r types.Reading) (types.Status, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("simulate: marshal reading: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("simulate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("simulate: post reading: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("simulate: server returned HTTP %d", resp.StatusCode)
	}

	var out ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("simulate: decode response: %w", err)
	}
	return out.Status, nil
}
