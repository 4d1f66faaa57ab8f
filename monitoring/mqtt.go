package monitoring

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTConfig MQTT推送配置
type MQTTConfig struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	QoS         byte
	Timeout     time.Duration
}

// MQTTSink 把推送消息发布到 <prefix>/<type> 主题
type MQTTSink struct {
	client  mqtt.Client
	prefix  string
	qos     byte
	timeout time.Duration
}

// NewMQTTSink 连接broker并返回Sink
func NewMQTTSink(cfg MQTTConfig, logger *zap.Logger) (*MQTTSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("heartpredict-%d", time.Now().Unix())
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		logger.Info("connected to MQTT broker", zap.String("broker", cfg.Broker))
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, token.Error())
	}
	return newMQTTSink(client, cfg), nil
}

func newMQTTSink(client mqtt.Client, cfg MQTTConfig) *MQTTSink {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "heartpredict"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &MQTTSink{client: client, prefix: cfg.TopicPrefix, qos: cfg.QoS, timeout: cfg.Timeout}
}

// Topic 返回消息类型对应的主题
func (s *MQTTSink) Topic(msgType MessageType) string {
	return s.prefix + "/" + string(msgType)
}

func (s *MQTTSink) Send(msgType MessageType, message []byte) error {
	token := s.client.Publish(s.Topic(msgType), s.qos, false, message)
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("publish %s: timed out after %s", s.Topic(msgType), s.timeout)
	}
	return token.Error()
}

// Close 断开连接
func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}
