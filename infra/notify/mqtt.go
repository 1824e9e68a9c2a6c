// Package notify delivers outbound events over MQTT and feeds inbound
// operator/driver commands back into the decision core.
package notify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/Jainil7227/AlphaNeuron/core/events"
	"github.com/Jainil7227/AlphaNeuron/infra/logger"
)

// Inbound command topics.
const (
	TopicAcceptOpportunity = "driver/opportunity/accept"
	TopicRejectOpportunity = "driver/opportunity/reject"
	TopicManualTrigger     = "agent/manual/trigger"
	TopicManualOverride    = "agent/manual/override"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	QoS        byte   `json:"qos"`
	UseTLS     bool   `json:"use_tls"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
	CABundle   string `json:"ca_bundle"`
}

// OpportunityCommand is the payload of a driver accept/reject.
type OpportunityCommand struct {
	OpportunityID string `json:"opportunity_id"`
	MissionID     string `json:"mission_id"`
	Reason        string `json:"reason,omitempty"`
}

// TriggerCommand forces an immediate decision cycle.
type TriggerCommand struct {
	MissionID string `json:"mission_id"`
}

// OverrideCommand records a human override for a logged decision.
type OverrideCommand struct {
	DecisionID string `json:"decision_id"`
	Operator   string `json:"operator,omitempty"`
	Reason     string `json:"reason"`
}

// CommandHandler reacts to inbound commands. Implemented by the app service.
type CommandHandler interface {
	AcceptOpportunity(ctx context.Context, cmd OpportunityCommand)
	RejectOpportunity(ctx context.Context, cmd OpportunityCommand)
	ManualTrigger(ctx context.Context, cmd TriggerCommand)
	ManualOverride(ctx context.Context, cmd OverrideCommand)
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTPublisher implements events.Publisher over a Paho client and routes
// inbound command topics to a CommandHandler.
type MQTTPublisher struct {
	cli     pahoClient
	qos     byte
	handler CommandHandler
	log     logger.Logger
}

// NewMQTTPublisher connects to the broker and, when handler is non-nil,
// subscribes to the inbound command topics.
func NewMQTTPublisher(cfg Config, handler CommandHandler) (*MQTTPublisher, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_notify")
	p := &MQTTPublisher{qos: cfg.QoS, handler: handler, log: log}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if handler == nil {
			return
		}
		for topic, cb := range map[string]paho.MessageHandler{
			TopicAcceptOpportunity: p.onAccept,
			TopicRejectOpportunity: p.onReject,
			TopicManualTrigger:     p.onTrigger,
			TopicManualOverride:    p.onOverride,
		} {
			if token := c.Subscribe(topic, cfg.QoS, cb); token.Wait() && token.Error() != nil {
				log.Errorf("subscribe %s: %v", topic, token.Error())
			}
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

func clientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
		if cfg.CABundle != "" {
			pem, err := os.ReadFile(cfg.CABundle)
			if err != nil {
				return nil, fmt.Errorf("read ca bundle: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("invalid ca bundle %s", cfg.CABundle)
			}
			tlsCfg.RootCAs = pool
		}
		if cfg.ClientCert != "" && cfg.ClientKey != "" {
			cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
			if err != nil {
				return nil, fmt.Errorf("load client cert: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// Publish implements events.Publisher. The event's topic maps straight onto
// the MQTT topic.
func (p *MQTTPublisher) Publish(_ context.Context, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Topic(), err)
	}
	token := p.cli.Publish(e.Topic(), p.qos, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publish %s: timeout", e.Topic())
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.cli.Disconnect(250)
}

func (p *MQTTPublisher) onAccept(_ paho.Client, msg paho.Message) {
	var cmd OpportunityCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		p.log.Warnf("bad accept payload: %v", err)
		return
	}
	p.handler.AcceptOpportunity(context.Background(), cmd)
}

func (p *MQTTPublisher) onReject(_ paho.Client, msg paho.Message) {
	var cmd OpportunityCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		p.log.Warnf("bad reject payload: %v", err)
		return
	}
	p.handler.RejectOpportunity(context.Background(), cmd)
}

func (p *MQTTPublisher) onTrigger(_ paho.Client, msg paho.Message) {
	var cmd TriggerCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		p.log.Warnf("bad trigger payload: %v", err)
		return
	}
	p.handler.ManualTrigger(context.Background(), cmd)
}

func (p *MQTTPublisher) onOverride(_ paho.Client, msg paho.Message) {
	var cmd OverrideCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		p.log.Warnf("bad override payload: %v", err)
		return
	}
	p.handler.ManualOverride(context.Background(), cmd)
}
