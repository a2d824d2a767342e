package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-catalog/internal/audit"
	"github.com/nerrad567/gray-logic-catalog/internal/catalog"
	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/mqtt"
)

const commandTimeout = 5 * time.Second

// Ack error codes.
const (
	ErrCodeInvalidPayload = "INVALID_PAYLOAD"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInvalidValue   = "INVALID_VALUE"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// ActuatorSource resolves actuators by ID. Implemented by catalog.Service.
type ActuatorSource interface {
	GetActuator(ctx context.Context, id string) (catalog.Actuator, error)
}

// Subscriber registers MQTT handlers. Implemented by mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// CommandMessage is received on graylogic/command/catalog/{actuator_id}.
type CommandMessage struct {
	// ID correlates the command with its ack. Optional.
	ID string `json:"id,omitempty"`

	// Value is the requested setting: a number, or true/false for switches.
	Value json.RawMessage `json:"value"`

	// Source indicates where the command originated ("api", "automation", ...).
	Source string `json:"source,omitempty"`
}

// AckMessage is published on graylogic/ack/catalog/{actuator_id}.
type AckMessage struct {
	CommandID  string    `json:"command_id,omitempty"`
	ActuatorID string    `json:"actuator_id"`
	Timestamp  time.Time `json:"timestamp"`
	Accepted   bool      `json:"accepted"`

	// Value is the applied setting, set when Accepted.
	Value string `json:"value,omitempty"`

	Error *AckError `json:"error,omitempty"`
}

// AckError describes a rejected command.
type AckError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CommandHandler applies actuator commands received over MQTT and publishes
// an ack for each one.
type CommandHandler struct {
	actuators ActuatorSource
	publisher Publisher
	audit     audit.Recorder
	qos       byte
	now       func() time.Time

	logger   Logger
	loggerMu sync.RWMutex
}

// NewCommandHandler creates a handler publishing acks with the given QoS.
func NewCommandHandler(actuators ActuatorSource, publisher Publisher, qos byte) *CommandHandler {
	return &CommandHandler{
		actuators: actuators,
		publisher: publisher,
		qos:       qos,
		now:       time.Now,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the handler.
func (h *CommandHandler) SetLogger(logger Logger) {
	h.loggerMu.Lock()
	h.logger = logger
	h.loggerMu.Unlock()
}

func (h *CommandHandler) log() Logger {
	h.loggerMu.RLock()
	defer h.loggerMu.RUnlock()
	return h.logger
}

// SetAuditor records a command entry for every handled command.
func (h *CommandHandler) SetAuditor(r audit.Recorder) {
	h.audit = r
}

// Subscribe registers the handler for every actuator command topic.
func (h *CommandHandler) Subscribe(sub Subscriber) error {
	return sub.Subscribe(mqtt.Topics{}.AllActuatorCommands(), h.qos, h.HandleMessage)
}

// HandleMessage is an mqtt.MessageHandler. Rejections are reported in the
// ack, so the only errors returned are ones where no ack could be sent.
func (h *CommandHandler) HandleMessage(topic string, payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	actuatorID, ok := mqtt.IDFromTopic(topic, "command")
	if !ok {
		return fmt.Errorf("unexpected command topic %q", topic)
	}

	ack := h.Handle(ctx, actuatorID, payload)
	data, err := json.Marshal(ack)
	if err != nil {
		return fmt.Errorf("encoding ack: %w", err)
	}
	if err := h.publisher.Publish(mqtt.Topics{}.ActuatorAck(actuatorID), data, h.qos, false); err != nil {
		return fmt.Errorf("publishing ack: %w", err)
	}
	return nil
}

// Handle applies one command to an actuator and returns the ack to send.
func (h *CommandHandler) Handle(ctx context.Context, actuatorID string, payload []byte) AckMessage {
	var cmd CommandMessage
	ack := h.handle(ctx, actuatorID, payload, &cmd)
	h.record(ctx, ack, cmd.Source)
	return ack
}

func (h *CommandHandler) handle(ctx context.Context, actuatorID string, payload []byte, cmd *CommandMessage) AckMessage {
	ack := AckMessage{
		ActuatorID: actuatorID,
		Timestamp:  h.now().UTC(),
	}

	if err := json.Unmarshal(payload, cmd); err != nil {
		return h.reject(ack, ErrCodeInvalidPayload, fmt.Sprintf("invalid command JSON: %v", err))
	}
	ack.CommandID = cmd.ID
	if len(cmd.Value) == 0 {
		return h.reject(ack, ErrCodeInvalidPayload, "value is required")
	}

	actuator, err := h.actuators.GetActuator(ctx, actuatorID)
	switch {
	case errors.Is(err, catalog.ErrRecordNotFound):
		return h.reject(ack, ErrCodeNotFound, fmt.Sprintf("actuator %s not found", actuatorID))
	case err != nil:
		h.log().Error("loading actuator failed", "actuator_id", actuatorID, "error", err)
		return h.reject(ack, ErrCodeInternal, "actuator could not be loaded")
	}

	setting, err := catalog.ParseSetting(actuator, cmd.Value)
	if err == nil {
		setting, err = actuator.Apply(setting)
	}
	if err != nil {
		return h.reject(ack, ErrCodeInvalidValue, err.Error())
	}

	h.log().Info("actuator command applied",
		"actuator_id", actuatorID,
		"model_path", actuator.ModelPath(),
		"value", setting.String(),
		"source", cmd.Source,
	)

	ack.Accepted = true
	ack.Value = setting.String()
	return ack
}

func (h *CommandHandler) record(ctx context.Context, ack AckMessage, source string) {
	if h.audit == nil {
		return
	}
	details := map[string]any{"accepted": ack.Accepted}
	if ack.CommandID != "" {
		details["command_id"] = ack.CommandID
	}
	if source != "" {
		details["origin"] = source
	}
	if ack.Accepted {
		details["value"] = ack.Value
	} else {
		details["error_code"] = ack.Error.Code
	}

	err := h.audit.Create(ctx, &audit.Entry{
		Action:     audit.ActionCommand,
		EntityType: audit.EntityActuator,
		EntityID:   ack.ActuatorID,
		Source:     audit.SourceMQTT,
		Details:    details,
		CreatedAt:  ack.Timestamp,
	})
	if err != nil {
		h.log().Warn("recording command audit failed", "actuator_id", ack.ActuatorID, "error", err)
	}
}

func (h *CommandHandler) reject(ack AckMessage, code, message string) AckMessage {
	h.log().Warn("actuator command rejected", "actuator_id", ack.ActuatorID, "code", code, "reason", message)
	ack.Error = &AckError{Code: code, Message: message}
	return ack
}
