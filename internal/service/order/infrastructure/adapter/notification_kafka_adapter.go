// internal/service/order/infrastructure/adapter/notification_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"webshop/internal/pkg/mq"
	"webshop/internal/service/order/domain"
)

// OrderPlacedEvent 是订单落库后对外发布的事件载荷。
type OrderPlacedEvent struct {
	OrderNumber string                `json:"orderNumber"`
	LineItems   []OrderPlacedLineItem `json:"lineItems"`
	PlacedAt    time.Time             `json:"placedAt"`
}

type OrderPlacedLineItem struct {
	SkuCode  string `json:"skuCode"`
	Quantity int    `json:"quantity"`
}

// OrderKafkaProducer 实现 port.OrderEventProducer，把订单事件写入 Kafka。
type OrderKafkaProducer struct {
	writer *kafka.Writer
}

func NewOrderKafkaProducer(writer *kafka.Writer) *OrderKafkaProducer {
	return &OrderKafkaProducer{writer: writer}
}

// Close 冲刷并关闭底层 writer。
func (p *OrderKafkaProducer) Close() error {
	return p.writer.Close()
}

// OrderPlaced 发布一条 order.placed 事件，链路上下文随消息头传播。
func (p *OrderKafkaProducer) OrderPlaced(ctx context.Context, order *domain.Order) error {
	items := make([]OrderPlacedLineItem, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		items = append(items, OrderPlacedLineItem{SkuCode: li.SkuCode, Quantity: li.Quantity})
	}

	event := OrderPlacedEvent{
		OrderNumber: order.OrderNumber,
		LineItems:   items,
		PlacedAt:    order.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(order.OrderNumber), payload)
}
