package httpserver

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atelier-moda/fashion-shop/internal/logging"
	"github.com/atelier-moda/fashion-shop/internal/mykafka"
)

const publishTimeout = 5 * time.Second

// publish fires a domain event after the write already committed. Failures
// are logged and swallowed, the HTTP response does not depend on kafka.
func publish(c echo.Context, p *mykafka.Producer, topic, key string, event any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("event_publish_failed", "topic", topic, "error", err)
	}
}
