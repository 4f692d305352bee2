package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// DefaultAPIBase is the Telegram Bot API root.
const DefaultAPIBase = "https://api.telegram.org"

// Notifier delivers alert digests and forecast reports to the store operator.
type Notifier interface {
	Send(ctx context.Context, text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// TelegramNotifier posts inventory digests to one operator chat through the
// Telegram Bot API and answers that chat's commands.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client
	// Backoff is the first delay between digest retries; it doubles each attempt.
	Backoff time.Duration
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		} else {
			log.Printf("[WARN] ignoring invalid proxy %q: %v", proxyURL, err)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  DefaultAPIBase,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Backoff: time.Second,
	}
}

func (t *TelegramNotifier) endpoint(method string) string {
	base := t.APIBase
	if base == "" {
		base = DefaultAPIBase
	}
	return fmt.Sprintf("%s/bot%s/%s", base, t.BotToken, method)
}

// Send posts one HTML-formatted report to the operator chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendWithRetry delivers a scheduled alert digest or failure report, retrying up
// to maxRetries times with doubling Backoff. A digest that still fails is lost;
// the next analysis run sends a fresh one. Cancelling ctx abandons the wait.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := t.Backoff * time.Duration(1<<uint(i))
		log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", maxRetries+1, lastErr)
}

// NoopNotifier logs and drops digests when no bot token and chat are configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(_ context.Context, text string) error {
	log.Printf("[INFO] notifier disabled, dropping %d-byte message", len(text))
	return nil
}

func (n NoopNotifier) SendWithRetry(ctx context.Context, text string, _ int) error {
	return n.Send(ctx, text)
}
