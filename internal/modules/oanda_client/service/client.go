package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

const (
	hostPractice = "https://api-fxpractice.oanda.com"
	hostLive     = "https://api-fxtrade.oanda.com"
)

type Config struct {
	APIKey      string
	AccountID   string
	Environment string // practice | live
}

// Client — REST-клиент OANDA v20. Идемпотентность ордеров брокер НЕ
// гарантирует: защита от двойной отправки живёт в координаторе.
type Client struct {
	http      *http.Client
	host      string
	apiKey    string
	accountID string
}

func NewClient(cfg Config) *Client {
	host := hostPractice
	if cfg.Environment == "live" {
		host = hostLive
	}
	return &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		host:      host,
		apiKey:    cfg.APIKey,
		accountID: cfg.AccountID,
	}
}

// doJSON: собирает запрос, подписывает bearer-токеном и декодирует ответ
// в out. Тело ошибочных ответов тоже JSON (errorMessage), поэтому не-2xx
// статусы здесь не фатальны — разбирает вызывающий.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) (int, error) {
	var payload io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, payload)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode: %w; body=%s", err, string(data))
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) accountPath(suffix string) string {
	return "/v3/accounts/" + c.accountID + suffix
}
