package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"officehub/internal/config"
	"officehub/internal/service"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// TemperatureBroker 温度传感器 MQTT 接入
// TemperatureBroker subscribes to the sensor topic and appends
// readings through the climate service. Disabled unless MQTT_ENABLED=true.
type TemperatureBroker struct {
	cfg     config.MQTTConfig
	client  mqtt.Client
	climate service.ClimateService
	logger  *zap.Logger
}

// sensorMessage 传感器上报的 JSON 载荷
type sensorMessage struct {
	Sensor      string  `json:"sensor"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// NewTemperatureBroker 创建温度传感器接入
func NewTemperatureBroker(cfg config.MQTTConfig, climate service.ClimateService, logger *zap.Logger) *TemperatureBroker {
	return &TemperatureBroker{
		cfg:     cfg,
		climate: climate,
		logger:  logger,
	}
}

// Start 连接 Broker 并订阅传感器主题
func (b *TemperatureBroker) Start() error {
	if b.cfg.Topic == "" {
		return fmt.Errorf("sensor MQTT topic not configured")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(b.cfg.Broker)
	opts.SetClientID(b.cfg.ClientID)

	if b.cfg.Username != "" {
		opts.SetUsername(b.cfg.Username)
	}
	if b.cfg.Password != "" {
		opts.SetPassword(b.cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	b.client = mqtt.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	if token := b.client.Subscribe(b.cfg.Topic, 1, func(client mqtt.Client, msg mqtt.Message) {
		if err := b.handleMessage(msg.Topic(), msg.Payload()); err != nil {
			// 记录错误，但不中断处理
			b.logger.Error("Failed to handle sensor message",
				zap.String("topic", msg.Topic()),
				zap.Error(err),
			)
		}
	}); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", b.cfg.Topic, token.Error())
	}

	b.logger.Info("Temperature MQTT broker started",
		zap.String("broker", b.cfg.Broker),
		zap.String("topic", b.cfg.Topic),
	)

	return nil
}

// Stop 取消订阅并断开连接
func (b *TemperatureBroker) Stop() {
	if b.client == nil {
		return
	}

	if token := b.client.Unsubscribe(b.cfg.Topic); token.Wait() && token.Error() != nil {
		b.logger.Error("Failed to unsubscribe", zap.Error(token.Error()))
	}

	b.client.Disconnect(250)
	b.logger.Info("Temperature MQTT broker stopped")
}

// handleMessage 处理单条传感器消息
func (b *TemperatureBroker) handleMessage(topic string, payload []byte) error {
	b.logger.Debug("Received sensor message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	var msg sensorMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal sensor message: %w", err)
	}

	if err := b.climate.RecordReading(context.Background(), service.TemperatureReadingRequest{
		Sensor:      msg.Sensor,
		Temperature: msg.Temperature,
		Humidity:    msg.Humidity,
	}); err != nil {
		return fmt.Errorf("failed to record reading: %w", err)
	}

	b.logger.Info("Recorded sensor reading",
		zap.String("sensor", msg.Sensor),
		zap.Float64("temperature", msg.Temperature),
	)

	return nil
}
