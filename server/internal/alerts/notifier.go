package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vitaltrace/vitaltrace/pkg/types"
	"github.com/vitaltrace/vitaltrace/server/internal/config"
)

const telegramAPIBase = "https://api.telegram.org"

// Notifier delivers one-way alert texts to all configured targets.
// Safe for concurrent use.
type Notifier struct {
	targets []config.NotifierConfig
	client  *http.Client

	// apiBase is the Telegram API origin, overridable in tests.
	apiBase string
}

// New creates a Notifier from the alert configuration. A Notifier with no
// targets is valid; Notify becomes a no-op.
func New(cfg config.AlertsConfig) *Notifier {
	return &Notifier{
		targets: cfg.Notifiers,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiBase: telegramAPIBase,
	}
}

// Notify sends text to every configured target. Failures are logged per
// target; the joined error is returned for accounting only and must not be
// surfaced to the submitter.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, target := range n.targets {
		var err error
		switch target.Type {
		case "telegram":
			err = n.sendTelegram(ctx, target, text)
		case "http":
			err = n.sendHTTP(ctx, target, text)
		default:
			slog.Warn("alerts: unknown notifier type, skipping", "type", target.Type)
			continue
		}

		if err != nil {
			slog.Error("alerts: delivery failed", "type", target.Type, "err", err)
			errs = append(errs, err)
		} else {
			slog.Debug("alerts: delivered", "type", target.Type)
		}
	}
	return errors.Join(errs...)
}

// sendTelegram posts a sendMessage call to the Bot API.
func (n *Notifier) sendTelegram(ctx context.Context, target config.NotifierConfig, text string) error {
	token := target.Token()
	if token == "" {
		return fmt.Errorf("bot token env %q is empty", target.TokenEnv)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, token)
	form := url.Values{
		"chat_id":    {target.ChatID},
		"text":       {text},
		"parse_mode": {"Markdown"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		bytes.NewBufferString(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return n.do(req)
}

// sendHTTP posts {"text": ...} to a generic webhook.
func (n *Notifier) sendHTTP(ctx context.Context, target config.NotifierConfig, text string) error {
	endpoint := target.URL()
	if endpoint == "" {
		return fmt.Errorf("webhook url env %q is empty", target.URLEnv)
	}

	body, _ := json.Marshal(map[string]string{"text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return n.do(req)
}

func (n *Notifier) do(req *http.Request) error {
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("target returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// FormatAlert renders the notification text for a fatal reading.
func FormatAlert(r types.Reading, cause string, at time.Time) string {
	return fmt.Sprintf(
		"*VitalTrace Fatal Alert!*\n"+
			"HR: %d bpm\n"+
			"SpO2: %.1f%%\n"+
			"Temp: %.1f°C\n"+
			"Cause: %s\n"+
			"Time: %s",
		r.HR, r.SpO2, r.Temp, cause, at.Format("15:04:05"),
	)
}
