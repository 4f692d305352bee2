package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// CommandHandler answers an operator command such as /alerts or /forecast 12;
// an empty reply sends nothing.
type CommandHandler func(ctx context.Context, command string) string

const (
	pollTimeoutSeconds = 30
	pollRetryDelay     = 5 * time.Second
)

// telegramUpdate is the slice of a getUpdates entry the command loop reads.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
	} `json:"message"`
}

// StartPolling long-polls the operator chat for inventory commands and replies with
// handler's answer. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	client := &http.Client{Timeout: (pollTimeoutSeconds + 5) * time.Second}
	if t.Client != nil && t.Client.Transport != nil {
		client.Transport = t.Client.Transport
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Telegram polling stopped")
			return
		default:
		}

		apiURL := fmt.Sprintf("%s?offset=%d&timeout=%d", t.endpoint("getUpdates"), offset, pollTimeoutSeconds)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			log.Printf("[ERROR] create polling request: %v", err)
			return
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[WARN] polling request failed: %v", err)
			sleepCtx(ctx, pollRetryDelay)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("[WARN] read polling response: %v", err)
			continue
		}

		var result struct {
			OK     bool             `json:"ok"`
			Result []telegramUpdate `json:"result"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			log.Printf("[WARN] decode polling response: %v", err)
			sleepCtx(ctx, pollRetryDelay)
			continue
		}
		if !result.OK {
			log.Printf("[WARN] getUpdates returned not ok: %s", truncate(string(body), 200))
			sleepCtx(ctx, pollRetryDelay)
			continue
		}

		for _, update := range result.Result {
			offset = update.UpdateID + 1
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			text := strings.TrimSpace(update.Message.Text)
			log.Printf("[INFO] received command: %s", text)
			reply := handler(ctx, text)
			if reply != "" {
				if err := t.Send(ctx, reply); err != nil {
					log.Printf("[ERROR] send reply: %v", err)
				}
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
