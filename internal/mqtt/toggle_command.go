package mqtt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	commonmqtt "github.com/bw-isys-53203/Module3/internal/common/mqtt"
	"github.com/bw-isys-53203/Module3/internal/service"

	"go.uber.org/zap"
)

// Toggler 由 service.Controller 实现
type Toggler interface {
	ToggleClick(ctx context.Context, subject string, hour int, date string) (service.ToggleResult, error)
}

// Subscriber 由 common/mqtt.Client 实现
type Subscriber interface {
	Subscribe(topic string, qos byte, handler commonmqtt.MessageHandler) error
}

// ToggleCommand 远程小时点击
//
//	{"subject":"baby","hour":5,"date":"2026-10-17"}
//
// subject/date 可省略，分别使用当前选中的 subject 和当前日期。
// 也接受数组形式，按顺序逐条执行。
type ToggleCommand struct {
	Subject string `json:"subject"`
	Hour    *int   `json:"hour"`
	Date    string `json:"date"`
}

var errMissingHour = errors.New("hour is required")

// ToggleCommandHandler 处理 MQTT 上的小时点击命令
type ToggleCommandHandler struct {
	toggler Toggler
	topic   string
	logger  *zap.Logger
}

func NewToggleCommandHandler(toggler Toggler, topic string, logger *zap.Logger) *ToggleCommandHandler {
	return &ToggleCommandHandler{
		toggler: toggler,
		topic:   topic,
		logger:  logger,
	}
}

// Start 订阅命令主题
func (h *ToggleCommandHandler) Start(sub Subscriber, qos byte) error {
	if err := sub.Subscribe(h.topic, qos, h.HandleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", h.topic, err)
	}
	h.logger.Info("MQTT toggle command handler started", zap.String("topic", h.topic))
	return nil
}

// HandleMessage 解析并执行命令；单条失败不影响后续命令，返回最后一个错误
func (h *ToggleCommandHandler) HandleMessage(topic string, payload []byte) error {
	cmds, err := decodeCommands(payload)
	if err != nil {
		h.logger.Warn("Dropping malformed toggle command",
			zap.String("topic", topic),
			zap.Int("payload_size", len(payload)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal toggle command: %w", err)
	}

	var lastErr error
	for _, cmd := range cmds {
		if err := h.process(cmd); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (h *ToggleCommandHandler) process(cmd ToggleCommand) error {
	if cmd.Hour == nil {
		h.logger.Warn("Dropping toggle command without hour", zap.String("subject", cmd.Subject))
		return errMissingHour
	}
	res, err := h.toggler.ToggleClick(context.Background(), cmd.Subject, *cmd.Hour, cmd.Date)
	if err != nil {
		return fmt.Errorf("toggle %q hour %d: %w", cmd.Subject, *cmd.Hour, err)
	}
	h.logger.Debug("Toggle command applied",
		zap.String("subject", string(res.Subject)),
		zap.String("date", res.Date),
		zap.Int("hour", *cmd.Hour),
		zap.Stringer("intervals", res.Intervals),
	)
	return nil
}

func decodeCommands(payload []byte) ([]ToggleCommand, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var cmds []ToggleCommand
		if err := json.Unmarshal(trimmed, &cmds); err != nil {
			return nil, err
		}
		return cmds, nil
	}
	var cmd ToggleCommand
	if err := json.Unmarshal(trimmed, &cmd); err != nil {
		return nil, err
	}
	return []ToggleCommand{cmd}, nil
}
