package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jainil7227/AlphaNeuron/core/events"
	"github.com/Jainil7227/AlphaNeuron/core/model"
	"github.com/Jainil7227/AlphaNeuron/infra/logger"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	connected  bool
	pubTopic   string
	pubPayload []byte
	pubToken   *fakeToken
	subs       []string
}

func (c *fakeClient) IsConnected() bool { return c.connected }
func (c *fakeClient) Connect() paho.Token {
	c.connected = true
	return &fakeToken{}
}
func (c *fakeClient) Disconnect(uint) { c.connected = false }
func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	c.pubTopic = topic
	c.pubPayload = payload.([]byte)
	if c.pubToken != nil {
		return c.pubToken
	}
	return &fakeToken{}
}
func (c *fakeClient) Subscribe(topic string, _ byte, _ paho.MessageHandler) paho.Token {
	c.subs = append(c.subs, topic)
	return &fakeToken{}
}

type fakeMessage struct{ payload []byte }

func (fakeMessage) Duplicate() bool     { return false }
func (fakeMessage) Qos() byte           { return 0 }
func (fakeMessage) Retained() bool      { return false }
func (fakeMessage) Topic() string       { return "" }
func (fakeMessage) MessageID() uint16   { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (fakeMessage) Ack()                {}

type recordingHandler struct {
	accepted  []OpportunityCommand
	rejected  []OpportunityCommand
	triggers  []TriggerCommand
	overrides []OverrideCommand
}

func (h *recordingHandler) AcceptOpportunity(_ context.Context, cmd OpportunityCommand) {
	h.accepted = append(h.accepted, cmd)
}
func (h *recordingHandler) RejectOpportunity(_ context.Context, cmd OpportunityCommand) {
	h.rejected = append(h.rejected, cmd)
}
func (h *recordingHandler) ManualTrigger(_ context.Context, cmd TriggerCommand) {
	h.triggers = append(h.triggers, cmd)
}
func (h *recordingHandler) ManualOverride(_ context.Context, cmd OverrideCommand) {
	h.overrides = append(h.overrides, cmd)
}

func withFakeClient(t *testing.T, cli *fakeClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return cli }
	t.Cleanup(func() { newMQTTClient = orig })
}

func TestPublishMapsEventTopic(t *testing.T) {
	cli := &fakeClient{}
	withFakeClient(t, cli)

	p, err := NewMQTTPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "test"}, nil)
	require.NoError(t, err)
	defer p.Close()
	assert.True(t, cli.connected)

	ev := events.DecisionEvent{MissionID: "M1", DecisionID: "d1", Decision: model.DecisionReroute, Confidence: 0.85}
	require.NoError(t, p.Publish(context.Background(), ev))
	assert.Equal(t, "agent/decision/new", cli.pubTopic)

	var got events.DecisionEvent
	require.NoError(t, json.Unmarshal(cli.pubPayload, &got))
	assert.Equal(t, "M1", got.MissionID)
	assert.Equal(t, model.DecisionReroute, got.Decision)
}

func TestPublishPropagatesErrors(t *testing.T) {
	cli := &fakeClient{pubToken: &fakeToken{err: errors.New("broker gone")}}
	withFakeClient(t, cli)

	p, err := NewMQTTPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "test"}, nil)
	require.NoError(t, err)
	assert.Error(t, p.Publish(context.Background(), events.OperatorAlertEvent{MissionID: "M1"}))

	cli.pubToken = &fakeToken{timeout: true}
	assert.ErrorContains(t, p.Publish(context.Background(), events.OperatorAlertEvent{MissionID: "M1"}), "timeout")
}

func TestInboundCommandRouting(t *testing.T) {
	h := &recordingHandler{}
	p := &MQTTPublisher{handler: h, log: logger.NopLogger{}}

	accept, _ := json.Marshal(OpportunityCommand{OpportunityID: "load-L1", MissionID: "M1"})
	p.onAccept(nil, fakeMessage{payload: accept})
	require.Len(t, h.accepted, 1)
	assert.Equal(t, "load-L1", h.accepted[0].OpportunityID)

	reject, _ := json.Marshal(OpportunityCommand{OpportunityID: "load-L2", MissionID: "M1", Reason: "too heavy"})
	p.onReject(nil, fakeMessage{payload: reject})
	require.Len(t, h.rejected, 1)

	trigger, _ := json.Marshal(TriggerCommand{MissionID: "M1"})
	p.onTrigger(nil, fakeMessage{payload: trigger})
	require.Len(t, h.triggers, 1)

	override, _ := json.Marshal(OverrideCommand{DecisionID: "d1", Operator: "dispatch-2", Reason: "customer call"})
	p.onOverride(nil, fakeMessage{payload: override})
	require.Len(t, h.overrides, 1)
	assert.Equal(t, "dispatch-2", h.overrides[0].Operator)
}

func TestInboundDropsBadPayloads(t *testing.T) {
	h := &recordingHandler{}
	p := &MQTTPublisher{handler: h, log: logger.NopLogger{}}

	p.onAccept(nil, fakeMessage{payload: []byte("{not json")})
	p.onTrigger(nil, fakeMessage{payload: []byte("")})
	assert.Empty(t, h.accepted)
	assert.Empty(t, h.triggers)
}
