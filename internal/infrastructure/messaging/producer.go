// Package messaging 提供效果事件的流发布实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rpg-motif-api/internal/application/synthesis"
	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/pkg/metrics"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// EffectEventMessage 单个目标域的效果事件载荷
type EffectEventMessage struct {
	MotifID   string                   `json:"motif_id"`
	MotifName string                   `json:"motif_name"`
	Category  entity.MotifCategory     `json:"category"`
	Lifecycle entity.MotifLifecycle    `json:"lifecycle"`
	Target    entity.EffectTarget      `json:"target"`
	Results   []synthesis.EffectResult `json:"results"`
}

// PublishEffects 将效果计算结果按目标域逐条发布到效果事件流。
// 单个目标域发布失败不阻断其余目标域，最后汇总返回首个错误。
func (p *Producer) PublishEffects(ctx context.Context, m *entity.Motif, results map[entity.EffectTarget][]synthesis.EffectResult) error {
	ctx, span := tracer.Start(ctx, "producer.PublishEffects",
		trace.WithAttributes(attribute.String("motif.id", m.ID)))
	defer span.End()

	var firstErr error
	for target, targetResults := range filterApplied(results) {
		event := &EffectEventMessage{
			MotifID:   m.ID,
			MotifName: m.Name,
			Category:  m.Category,
			Lifecycle: m.Lifecycle,
			Target:    target,
			Results:   targetResults,
		}
		msg, err := NewMessage("motif_effect", m.ID, event)
		if err != nil {
			metrics.EffectEventsPublishedTotal.WithLabelValues(string(target), "error").Inc()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		msg.SetMetadata("category", string(m.Category))

		if _, err := p.Publish(ctx, StreamMotifEffects, msg); err != nil {
			metrics.EffectEventsPublishedTotal.WithLabelValues(string(target), "error").Inc()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.EffectEventsPublishedTotal.WithLabelValues(string(target), "ok").Inc()
	}
	return firstErr
}

// filterApplied 过滤掉没有任何实际生效结果的目标域
func filterApplied(results map[entity.EffectTarget][]synthesis.EffectResult) map[entity.EffectTarget][]synthesis.EffectResult {
	filtered := make(map[entity.EffectTarget][]synthesis.EffectResult, len(results))
	for target, targetResults := range results {
		var applied []synthesis.EffectResult
		for _, res := range targetResults {
			if res.Applied {
				applied = append(applied, res)
			}
		}
		if len(applied) > 0 {
			filtered[target] = applied
		}
	}
	return filtered
}
