// Package messaging 提供效果事件的流发布实现
package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message 消息结构
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	MotifID   string            `json:"motif_id"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建新消息
func NewMessage(msgType, motifID string, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		MotifID:   motifID,
		Payload:   payloadBytes,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}

// Stream 流定义
type Stream string

const (
	// StreamMotifEffects 主题效果事件流，供模拟子系统消费
	StreamMotifEffects Stream = "motif:effects"
)
