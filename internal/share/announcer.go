package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"releaseday/internal/countdown"
)

const (
	announceQoS       = 1
	connectTimeout    = 5 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Publisher is the part of mqtt.Client the announcer needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Message is the command sent to a display.
type Message struct {
	Type      string             `json:"type"`
	Countdown countdown.Snapshot `json:"countdown"`
	Timestamp int64              `json:"timestamp"`
}

// Announcer pushes countdown state to one display topic. It publishes on
// the first observation, on the finished transition, and on every tick when
// everyTick is set.
type Announcer struct {
	pub       Publisher
	topic     string
	target    countdown.Target
	everyTick bool

	mu      sync.Mutex
	tracker countdown.Tracker
	closer  func()
}

func Topic(prefix, displayID string) string {
	return fmt.Sprintf("%s/%s/commands", prefix, displayID)
}

func NewAnnouncer(pub Publisher, topic string, target countdown.Target, everyTick bool) *Announcer {
	return &Announcer{pub: pub, topic: topic, target: target, everyTick: everyTick}
}

// Dial connects to the broker and returns an announcer for the display's
// command topic.
func Dial(broker, topicPrefix, displayID string, target countdown.Target, everyTick bool) (*Announcer, error) {
	if displayID == "" {
		displayID = "releaseday"
	}
	clientID := fmt.Sprintf("releaseday-%s", uuid.NewString())

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", broker).Str("clientID", clientID).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to MQTT broker %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", broker, err)
	}

	a := NewAnnouncer(client, Topic(topicPrefix, displayID), target, everyTick)
	a.closer = func() { client.Disconnect(disconnectQuiesce) }
	return a, nil
}

// Observe is a tick sink. Publish failures are logged and dropped.
func (a *Announcer) Observe(now time.Time, s countdown.State) {
	a.mu.Lock()
	changed, _ := a.tracker.Observe(s)
	current := a.tracker.State()
	a.mu.Unlock()

	if !changed && !a.everyTick {
		return
	}
	if err := a.Publish(now, current); err != nil {
		log.Error().Err(err).Str("topic", a.topic).Msg("failed to announce countdown")
	}
}

func (a *Announcer) Publish(now time.Time, s countdown.State) error {
	msg := Message{
		Type:      "countdown_" + s.Name(),
		Countdown: countdown.NewSnapshot(s, a.target, now),
		Timestamp: now.Unix(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode announcement: %w", err)
	}

	token := a.pub.Publish(a.topic, announceQoS, false, body)
	if !token.WaitTimeout(publishTimeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", a.topic, err)
	}
	log.Debug().Str("topic", a.topic).Str("state", s.Name()).Msg("countdown announced")
	return nil
}

func (a *Announcer) Close() {
	a.mu.Lock()
	closer := a.closer
	a.closer = nil
	a.mu.Unlock()
	if closer != nil {
		closer()
	}
}
