// Package productfetch предоставляет клиент сервиса получения данных
// о товарах маркетплейса и нормализацию его ответов.
package productfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured возвращается, если адрес сервиса не задан.
var ErrNotConfigured = errors.New("product fetch client not configured")

// Client инкапсулирует HTTP-взаимодействие с сервисом получения товаров.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент сервиса по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Enabled сообщает, настроен ли клиент.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// FetchByURL запрашивает данные товара по ссылке на страницу маркетплейса.
func (c *Client) FetchByURL(ctx context.Context, productURL string) (Product, error) {
	if !c.Enabled() {
		return Product{}, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{"url": productURL})
	if err != nil {
		return Product{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+"/product", bytes.NewReader(body))
	if err != nil {
		return Product{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var raw map[string]any
	if err := c.do(req, &raw); err != nil {
		return Product{}, err
	}
	return Normalize(raw)
}

// Search ищет товары по строке запроса.
func (c *Client) Search(ctx context.Context, query string) ([]Product, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base()+"/search?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var list []map[string]any
	if err := c.do(req, &list); err != nil {
		return nil, err
	}

	out := make([]Product, 0, len(list))
	for _, raw := range list {
		p, err := Normalize(raw)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) base() string {
	if !strings.HasPrefix(c.baseURL, "http://") && !strings.HasPrefix(c.baseURL, "https://") {
		return "http://" + c.baseURL
	}
	return c.baseURL
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
