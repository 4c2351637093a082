// Package payment предоставляет клиент сервиса выставления счетов
// (совместим с NOWPayments API).
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured возвращается, если адрес сервиса оплаты не задан.
var ErrNotConfigured = errors.New("payment client not configured")

// InvoiceRequest содержит данные для создания счёта.
type InvoiceRequest struct {
	Amount        float64
	Currency      string
	OrderID       string
	Description   string
	CustomerEmail string
	ReturnURL     string
	CancelURL     string
}

// Invoice описывает созданный счёт.
type Invoice struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	InvoiceURL string `json:"invoice_url"`
}

type invoiceBody struct {
	PriceAmount      float64 `json:"price_amount"`
	PriceCurrency    string  `json:"price_currency"`
	OrderID          string  `json:"order_id"`
	OrderDescription string  `json:"order_description"`
	SuccessURL       string  `json:"success_url,omitempty"`
	CancelURL        string  `json:"cancel_url,omitempty"`
	CustomerEmail    string  `json:"customer_email,omitempty"`
}

// Client инкапсулирует HTTP-взаимодействие с сервисом оплаты.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт клиент сервиса оплаты по указанному адресу и ключу API.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled сообщает, настроен ли клиент.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// CreateInvoice создаёт счёт и возвращает ссылку для перехода к оплате.
func (c *Client) CreateInvoice(ctx context.Context, in InvoiceRequest) (*Invoice, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	currency := in.Currency
	if currency == "" {
		currency = "usd"
	}
	description := in.Description
	if description == "" {
		description = "Order " + in.OrderID
	}

	payload, err := json.Marshal(invoiceBody{
		PriceAmount:      in.Amount,
		PriceCurrency:    currency,
		OrderID:          in.OrderID,
		OrderDescription: description,
		SuccessURL:       in.ReturnURL,
		CancelURL:        in.CancelURL,
		CustomerEmail:    in.CustomerEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/invoice", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var invoice Invoice
	if err := json.NewDecoder(resp.Body).Decode(&invoice); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if invoice.InvoiceURL == "" {
		return nil, errors.New("response has no invoice_url")
	}

	return &invoice, nil
}
