// Package events carries cache invalidations between console instances over
// MQTT, so an edit made in one terminal refreshes the reads of another.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-admin/internal/cache"
)

const (
	qos            = 1
	connectTimeout = 10 * time.Second
)

// broker is the part of mqtt.Client the bridge uses.
type broker interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

// Invalidation is the wire message shared on the topic.
type Invalidation struct {
	Origin string      `json:"origin"`
	Tags   []cache.Tag `json:"tags"`
}

// Bridge publishes local invalidations and applies remote ones.
type Bridge struct {
	broker broker
	topic  string
	origin string
	cache  *cache.Cache
	log    logrus.FieldLogger
}

// Connect dials the broker at url. An empty clientID gets a random one.
func Connect(url, clientID string, log logrus.FieldLogger) (mqtt.Client, error) {
	if clientID == "" {
		clientID = "fleetadmin-" + uuid.NewString()
	}
	opts := mqtt.NewClientOptions().
		AddBroker(url).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", url)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", url, err)
	}
	return client, nil
}

// NewBridge creates a bridge with a fresh origin id.
func NewBridge(b broker, topic string, c *cache.Cache, log logrus.FieldLogger) *Bridge {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bridge{
		broker: b,
		topic:  topic,
		origin: uuid.NewString(),
		cache:  c,
		log:    log.WithField("component", "events"),
	}
}

// Origin identifies this console on the topic.
func (br *Bridge) Origin() string { return br.origin }

// Start subscribes to the topic and hooks local invalidations.
func (br *Bridge) Start() error {
	token := br.broker.Subscribe(br.topic, qos, br.handle)
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt subscribe to %s timed out", br.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe to %s: %w", br.topic, err)
	}

	br.cache.Bus().OnPublish(br.forward)
	br.log.WithField("topic", br.topic).Info("Invalidation bridge started")
	return nil
}

func (br *Bridge) forward(_ context.Context, tags []cache.Tag) {
	payload, err := json.Marshal(Invalidation{Origin: br.origin, Tags: tags})
	if err != nil {
		br.log.WithError(err).Error("Failed to encode invalidation")
		return
	}
	token := br.broker.Publish(br.topic, qos, false, payload)
	// Publishing is best effort; the local cache is already consistent.
	go func() {
		if token.Wait() && token.Error() != nil {
			br.log.WithError(token.Error()).Warn("Failed to publish invalidation")
		}
	}()
}

func (br *Bridge) handle(_ mqtt.Client, msg mqtt.Message) {
	var inv Invalidation
	if err := json.Unmarshal(msg.Payload(), &inv); err != nil {
		br.log.WithError(err).WithField("topic", msg.Topic()).Warn("Ignoring malformed invalidation")
		return
	}
	if inv.Origin == br.origin || len(inv.Tags) == 0 {
		return
	}

	br.log.WithFields(logrus.Fields{
		"origin": inv.Origin,
		"tags":   inv.Tags,
	}).Debug("Applying remote invalidation")
	// Live reads refetch over HTTP; keep paho's router free meanwhile.
	go br.cache.ApplyRemote(context.Background(), inv.Tags...)
}
