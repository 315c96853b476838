package rabbitmq_common

import (
	"fmt"
	"strings"
	"time"
)

// Config - общие параметры подключения для продюсеров и консьюмеров
type Config struct {
	URL               string
	ReconnectInterval time.Duration
}

// Validate проверяет обязательные поля
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("rabbitmq URL is required")
	}
	if !strings.HasPrefix(c.URL, "amqp://") && !strings.HasPrefix(c.URL, "amqps://") {
		return fmt.Errorf("rabbitmq URL must use amqp:// or amqps:// scheme")
	}
	return nil
}
