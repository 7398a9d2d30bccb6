package notifygateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bookline/booking-engine/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент шлюза доставки уведомлений (email/SMS за одним HTTP API).
// Пустой baseURL включает dry-run режим: доставка логируется и считается
// успешной. Используется в окружениях без настоящего шлюза.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента шлюза доставки
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Send передает запрос на уведомление шлюзу доставки.
// Ошибка означает неудачную попытку: решение о ретрае принимает вызывающий.
func (c *Client) Send(ctx context.Context, notification *domain.NotificationRequest) error {
	if c.baseURL == "" {
		c.log.Info("Send: dry-run delivery %s via %s to %s (request=%s)",
			notification.EventCode, notification.Channel, notification.Recipient, notification.ID)
		return nil
	}

	payload, err := json.Marshal(deliveryRequest{
		TenantID:  notification.TenantID,
		EventCode: notification.EventCode,
		Channel:   string(notification.Channel),
		Recipient: notification.Recipient,
		RequestID: notification.ID.String(),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/deliveries", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		c.log.Info("Send: delivered %s via %s to %s (request=%s)",
			notification.EventCode, notification.Channel, notification.Recipient, notification.ID)
		return nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrSendFailed, resp.StatusCode, string(body))
	}
}
