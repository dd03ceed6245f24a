// Package deviceclient - HTTP-клиент сервиса учёта устройств.
package deviceclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/phytocheck/internal/models"
)

const (
	syncPath      = "/api/v1/device/sync"
	incrementPath = "/api/v1/device/increment-search"
)

// ErrUnexpectedStatus возвращается, когда сервер ответил кодом, отличным от 200.
var ErrUnexpectedStatus = errors.New("unexpected status")

type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Client обращается к эндпоинтам sync и increment-search.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создаёт клиент. Таймаут применяется к каждому запросу.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Sync регистрирует устройство и возвращает серверный счётчик.
func (c *Client) Sync(ctx context.Context, deviceID string, isPremium bool) (models.SyncResult, error) {
	const op = "deviceclient.Sync"

	var res models.SyncResult
	if err := c.post(ctx, syncPath, models.DeviceRequest{DeviceID: deviceID, IsPremium: isPremium}, &res); err != nil {
		return models.SyncResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// IncrementSearch просит сервер учесть поиск.
func (c *Client) IncrementSearch(ctx context.Context, deviceID string, isPremium bool) (models.IncrementResult, error) {
	const op = "deviceclient.IncrementSearch"

	var res models.IncrementResult
	if err := c.post(ctx, incrementPath, models.DeviceRequest{DeviceID: deviceID, IsPremium: isPremium}, &res); err != nil {
		return models.IncrementResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("empty response data")
	}
	return json.Unmarshal(env.Data, out)
}
