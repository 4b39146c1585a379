package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelSummaries = "trending_summaries"
)

// SummaryMessage 某天的汇总已刷新
type SummaryMessage struct {
	Type       string `json:"type"`
	Date       string `json:"date"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   uint64 `json:"entity_id,omitempty"`
	Groups     int    `json:"groups"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishSummarized 发布汇总刷新消息
func (p *Publisher) PublishSummarized(ctx context.Context, msg *SummaryMessage) error {
	msg.Type = "summary_refreshed"

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal summary message: %w", err)
	}

	return p.client.Publish(ctx, ChannelSummaries, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅汇总刷新消息，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*SummaryMessage)) error {
	ps := s.client.Subscribe(ctx, ChannelSummaries)
	defer ps.Close()

	// 等待订阅确认，避免确认前发布的消息丢失
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var summaryMsg SummaryMessage
			if err := json.Unmarshal([]byte(msg.Payload), &summaryMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&summaryMsg)
		}
	}
}
