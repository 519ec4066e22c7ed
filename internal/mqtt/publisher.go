// Package mqtt publishes simulation runs to an MQTT broker so dashboards and
// fermentation controllers can follow a planned brew.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brew-cli/internal/fermentation"
	"github.com/sells-group/brew-cli/internal/model"
)

// Client is the part of the paho client the publisher needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Config holds broker connection settings.
type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	QoS            byte
	ConnectTimeout time.Duration
}

// Publisher writes run summaries and timeline entries under
// <prefix>/runs/<run id>/.
type Publisher struct {
	client  Client
	prefix  string
	qos     byte
	timeout time.Duration
}

// Connect dials the broker and returns a Publisher using it.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		zap.L().Warn("mqtt: connection lost", zap.String("broker", cfg.Broker), zap.Error(err))
	})

	client := paho.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(cfg.ConnectTimeout) {
		return nil, eris.Errorf("mqtt: connect to %s timed out", cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, eris.Wrapf(err, "mqtt: connect to %s", cfg.Broker)
	}
	zap.L().Info("mqtt: connected", zap.String("broker", cfg.Broker))

	return NewPublisher(client, cfg.TopicPrefix, cfg.QoS, cfg.ConnectTimeout), nil
}

// NewPublisher wraps an already connected client.
func NewPublisher(c Client, prefix string, qos byte, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Publisher{client: c, prefix: prefix, qos: qos, timeout: timeout}
}

// SummaryMessage is the retained payload published once per run.
type SummaryMessage struct {
	RunID   string               `json:"run_id"`
	Days    int                  `json:"days"`
	Summary fermentation.Summary `json:"summary"`
}

// SummaryTopic returns the retained summary topic for a run.
func (p *Publisher) SummaryTopic(runID string) string {
	return fmt.Sprintf("%s/runs/%s/summary", p.prefix, runID)
}

// TimelineTopic returns the topic timeline entries are published on.
func (p *Publisher) TimelineTopic(runID string) string {
	return fmt.Sprintf("%s/runs/%s/timeline", p.prefix, runID)
}

// PublishRun sends the run summary followed by each entry in order. It
// returns the number of messages delivered.
func (p *Publisher) PublishRun(ctx context.Context, run *fermentation.Run, entries []model.LogEntry) (int, error) {
	sent := 0
	msg := SummaryMessage{RunID: run.ID, Days: run.Days, Summary: run.Summary()}
	if err := p.publish(p.SummaryTopic(run.ID), true, msg); err != nil {
		return sent, err
	}
	sent++

	topic := p.TimelineTopic(run.ID)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return sent, eris.Wrap(err, "mqtt: publish canceled")
		}
		if err := p.publish(topic, false, e); err != nil {
			return sent, err
		}
		sent++
	}

	zap.L().Debug("mqtt: published run",
		zap.String("run_id", run.ID),
		zap.Int("messages", sent),
	)
	return sent, nil
}

func (p *Publisher) publish(topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "mqtt: marshal payload")
	}
	tok := p.client.Publish(topic, p.qos, retained, payload)
	if !tok.WaitTimeout(p.timeout) {
		return eris.Errorf("mqtt: publish to %s timed out", topic)
	}
	if err := tok.Error(); err != nil {
		return eris.Wrapf(err, "mqtt: publish to %s", topic)
	}
	return nil
}

// Close disconnects, allowing in-flight messages a short grace period.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
