package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonredis "github.com/bw-isys-53203/Module3/internal/common/redis"
	"github.com/bw-isys-53203/Module3/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	EventToggle     = "toggle"
	EventRegenerate = "regenerate"
)

// RefreshEvent 通知渲染端重新绘制
type RefreshEvent struct {
	EventID   string              `json:"event_id"`
	Type      string              `json:"type"`
	Subject   domain.SubjectID    `json:"subject,omitempty"`
	Date      string              `json:"date,omitempty"`
	Hour      *int                `json:"hour,omitempty"`
	Intervals domain.IntervalList `json:"intervals,omitempty"`
	Days      int                 `json:"days,omitempty"`
	Timestamp int64               `json:"timestamp"`
}

func newRefreshEvent(eventType string) RefreshEvent {
	return RefreshEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
	}
}

// Notifier 渲染端刷新通知
type Notifier interface {
	NotifyRefresh(ctx context.Context, ev RefreshEvent) error
}

// NopNotifier 不发送任何通知
type NopNotifier struct{}

func (NopNotifier) NotifyRefresh(context.Context, RefreshEvent) error { return nil }

// mqttPublisher common/mqtt.Client 的发布能力
type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTNotifier 以 JSON 发布到 MQTT 主题
type MQTTNotifier struct {
	client mqttPublisher
	topic  string
	qos    byte
}

func NewMQTTNotifier(client mqttPublisher, topic string, qos byte) *MQTTNotifier {
	return &MQTTNotifier{client: client, topic: topic, qos: qos}
}

func (n *MQTTNotifier) NotifyRefresh(_ context.Context, ev RefreshEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode refresh event: %w", err)
	}
	return n.client.Publish(n.topic, n.qos, false, payload)
}

// StreamNotifier 写入 Redis Stream
type StreamNotifier struct {
	client *redis.Client
	stream string
}

func NewStreamNotifier(client *redis.Client, stream string) *StreamNotifier {
	return &StreamNotifier{client: client, stream: stream}
}

func (n *StreamNotifier) NotifyRefresh(ctx context.Context, ev RefreshEvent) error {
	if _, err := commonredis.PublishJSONToStream(ctx, n.client, n.stream, ev); err != nil {
		return fmt.Errorf("failed to publish refresh event: %w", err)
	}
	return nil
}
