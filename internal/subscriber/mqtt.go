// Package subscriber feeds readings published on an MQTT topic into the store.
package subscriber

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"ivfit-app/internal/config"
	"ivfit-app/internal/domain"
	"ivfit-app/internal/metrics"
	"ivfit-app/internal/util"
)

const (
	SourceMQTT = "mqtt"

	appendTimeout     = 5 * time.Second
	disconnectQuiesce = 250 // ms
)

type MQTTSubscriber struct {
	client  mqtt.Client
	topic   string
	qos     byte
	store   domain.ReadingStore
	logger  *util.ServiceLogger
	metrics *metrics.Metrics
}

// NewMQTT builds the client without connecting. The subscription is made in
// the connect handler so it is restored after every reconnect.
func NewMQTT(cfg config.MQTTConfig, store domain.ReadingStore, logger *util.ServiceLogger, m *metrics.Metrics) *MQTTSubscriber {
	if m == nil {
		m = metrics.NewMetrics()
	}
	s := &MQTTSubscriber{
		topic:   cfg.Topic,
		qos:     byte(cfg.QoS),
		store:   store,
		logger:  logger,
		metrics: m,
	}

	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(s.onConnect)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.LogEvent(util.LOG_LEVEL_WARN, "MQTT connection lost -", err)
	})

	s.client = mqtt.NewClient(opts)
	return s
}

func (s *MQTTSubscriber) Start() error {
	token := s.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

func (s *MQTTSubscriber) onConnect(c mqtt.Client) {
	token := c.Subscribe(s.topic, s.qos, s.HandleMessage)
	if token.Wait() && token.Error() != nil {
		s.logger.LogEvent(util.LOG_LEVEL_ERROR, "MQTT subscribe to", s.topic, "failed -", token.Error())
		return
	}
	s.logger.LogEvent(util.LOG_LEVEL_INFO, "MQTT subscribed to", s.topic)
}

// HandleMessage validates the payload exactly like the HTTP ingestion
// endpoint. Invalid payloads are logged and dropped.
func (s *MQTTSubscriber) HandleMessage(_ mqtt.Client, msg mqtt.Message) {
	reading, err := domain.ParseReading(msg.Payload())
	if err != nil {
		s.metrics.ReadingsRejected.WithLabelValues(SourceMQTT).Inc()
		s.logger.LogEvent(util.LOG_LEVEL_WARN, "Rejected MQTT reading on", msg.Topic(), "-", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := s.store.Append(ctx, reading); err != nil {
		s.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while Append() from MQTT. Err -", err)
		return
	}
	s.metrics.ReadingsStored.WithLabelValues(SourceMQTT).Inc()
}

func (s *MQTTSubscriber) Stop() {
	if s.client.IsConnected() {
		s.client.Unsubscribe(s.topic).Wait()
	}
	s.client.Disconnect(disconnectQuiesce)
}
