// Package notify публикует события магазина во внешнюю очередь сообщений.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// QueueOrderPlaced: очередь событий об оформленных заказах.
const QueueOrderPlaced = "order.placed"

// OrderPlaced: событие об оформленном заказе.
type OrderPlaced struct {
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId,omitempty"`
	Items         int       `json:"items"`
	Total         float64   `json:"total"`
	Discount      float64   `json:"discount,omitempty"`
	CouponCode    string    `json:"couponCode,omitempty"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	PlacedAt      time.Time `json:"placedAt"`
}

// Publisher публикует события магазина.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
}

// Nop игнорирует события.
type Nop struct{}

func (Nop) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }

// New возвращает публикатор RabbitMQ или Nop, если адрес брокера не задан.
func New(url string, logger *zap.Logger) Publisher {
	if url == "" {
		return Nop{}
	}
	return NewAMQPPublisher(url, logger)
}

// dialTimeout ограничивает подключение к брокеру и AMQP-рукопожатие.
const dialTimeout = 2 * time.Second

// AMQPPublisher публикует события в RabbitMQ. Соединение открывается на
// время одной публикации.
type AMQPPublisher struct {
	url         string
	dialTimeout time.Duration
	logger      *zap.Logger
}

func NewAMQPPublisher(url string, logger *zap.Logger) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPPublisher{url: url, dialTimeout: dialTimeout, logger: logger}
}

// PublishOrderPlaced публикует событие в очередь order.placed. Сообщения
// сохраняются брокером на диск. Ошибку публикации записывает в журнал
// вызывающий код.
func (p *AMQPPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlaced) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.publish(ctx, QueueOrderPlaced, body); err != nil {
		return fmt.Errorf("publish to %s: %w", QueueOrderPlaced, err)
	}

	p.logger.Debug("event published",
		zap.String("queue", QueueOrderPlaced),
		zap.String("order_id", event.OrderID),
	)
	return nil
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, body []byte) error {
	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
