package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"releaseday/internal/countdown"
	"releaseday/internal/refresh"
)

const envPrefix = "RELEASEDAY_"

var ErrInvalidConfig = errors.New("invalid config")

// Config holds everything the views need. Zero values are filled from
// Default before any source is applied.
type Config struct {
	Target   string        `yaml:"target"`
	Zone     string        `yaml:"zone"`
	Interval time.Duration `yaml:"interval"`
	LogLevel string        `yaml:"log_level"`

	Page  Page  `yaml:"page"`
	Share Share `yaml:"share"`
	MQTT  MQTT  `yaml:"mqtt"`

	ServerAddress string `yaml:"server_address"`
}

type Page struct {
	Title      string `yaml:"title"`
	Subtitle   string `yaml:"subtitle"`
	Motivation string `yaml:"motivation"`
	Celebrate  string `yaml:"celebrate"`
}

type Share struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
	PageURL string `yaml:"page_url"`
}

type MQTT struct {
	Broker      string `yaml:"broker"`
	TopicPrefix string `yaml:"topic_prefix"`
	DisplayID   string `yaml:"display_id"`
	EveryTick   bool   `yaml:"every_tick"`
}

func Default() *Config {
	return &Config{
		Target:   countdown.DefaultTarget,
		Zone:     countdown.DefaultZone,
		Interval: refresh.DefaultInterval,
		LogLevel: "info",
		Page: Page{
			Title:      "يوم الإفراج عن عيبد — رابعة طب بشري كفر الشيخ",
			Subtitle:   "الموعد: {{label}} بتوقيت القاهرة",
			Motivation: "🌟 قريباً جداً... الحرية في انتظارك! 📚✨",
			Celebrate:  "🎉 انتهت الامتحانات — يوم الإفراج! 🎓",
		},
		Share: Share{
			Title:   "يوم الإفراج عن عيبد",
			Message: "🎉 انتهت الامتحانات — يوم الإفراج! 📚✨",
		},
		MQTT: MQTT{
			TopicPrefix: "tv",
		},
		ServerAddress: ":8484",
	}
}

// Load builds a Config from defaults, the optional YAML file at path, a .env
// file in the working directory, and RELEASEDAY_* environment variables, in
// that order of precedence. The result is not validated: callers apply their
// own overrides first and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := cfg.decodeYAML(raw); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(raw []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("TARGET", &c.Target)
	str("ZONE", &c.Zone)
	str("LOG_LEVEL", &c.LogLevel)
	str("SERVER_ADDRESS", &c.ServerAddress)
	str("PAGE_TITLE", &c.Page.Title)
	str("SHARE_MESSAGE", &c.Share.Message)
	str("SHARE_PAGE_URL", &c.Share.PageURL)
	str("MQTT_BROKER", &c.MQTT.Broker)
	str("MQTT_TOPIC_PREFIX", &c.MQTT.TopicPrefix)
	str("MQTT_DISPLAY_ID", &c.MQTT.DisplayID)

	if v, ok := lookup(envPrefix + "INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sINTERVAL: %v", ErrInvalidConfig, envPrefix, err)
		}
		c.Interval = d
	}
	if v, ok := lookup(envPrefix + "MQTT_EVERY_TICK"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sMQTT_EVERY_TICK: %v", ErrInvalidConfig, envPrefix, err)
		}
		c.MQTT.EveryTick = b
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := c.CountdownTarget(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be > 0", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q (want debug, info, warn or error)", ErrInvalidConfig, c.LogLevel)
	}
	if c.MQTT.Broker != "" && strings.TrimSpace(c.MQTT.TopicPrefix) == "" {
		return fmt.Errorf("%w: mqtt topic prefix is required with a broker", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) CountdownTarget() (countdown.Target, error) {
	return countdown.NewTarget(c.Target, c.Zone)
}

// Subtitle expands {{label}} in the page subtitle with the target label.
func (c *Config) Subtitle(t countdown.Target) string {
	return strings.ReplaceAll(c.Page.Subtitle, "{{label}}", t.Label())
}
