// Package config loads the badge-leds TOML configuration: the daemon
// settings plus one block per output or output group.
package config

import (
	"encoding"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

// Effect names accepted for single outputs.
var outputEffects = map[string]bool{
	"onoff":       true,
	"blink":       true,
	"flicker":     true,
	"fluorescent": true,
	"heartbeat":   true,
	"pulse":       true,
	"rhythm":      true,
	"smooth":      true,
}

// Effect names accepted for groups, with the number of outputs each needs.
var groupEffects = map[string]int{
	"alternating":  2,
	"bounce":       5,
	"trafficlight": 3,
	"turnsignal":   3,
}

// Config is the daemon configuration.
type Config struct {
	// Poll is the effect update interval.
	Poll Duration `toml:"poll"`
	// Broker is the MQTT broker address; empty disables publishing.
	Broker string `toml:"broker"`
	// HTTP is the status server listen address; empty disables it.
	HTTP string `toml:"http"`
	// LogLevel is the logrus level name (debug, info, warn, error).
	LogLevel string `toml:"log_level"`

	// Outputs is a list of single-output effect configurations.
	Outputs []Output `toml:"output"`
	// Groups is a list of multi-output choreography configurations.
	Groups []Group `toml:"group"`
}

// Output configures one LED with one effect.
type Output struct {
	// Name identifies the output in logs, MQTT events and the status page.
	Name string `toml:"name"`
	// Driver selects the hardware adapter: gpio, sysfs, an I2C
	// expander (pcf8574, pca9685, ht16k33) or fake.
	Driver string `toml:"driver"`

	// Pin is the GPIO line offset (gpio driver).
	Pin int `toml:"pin"`
	// Chip is the gpiochip device name (gpio driver, default gpiochip0).
	Chip string `toml:"chip"`
	// ActiveLow inverts the electrical level (gpio driver).
	ActiveLow bool `toml:"active_low"`
	// LED is the LED class device name (sysfs driver).
	LED string `toml:"led"`
	// Bus is the I2C bus device, e.g. /dev/i2c-1 (I2C drivers). The
	// output rides channel 0 of the expander.
	Bus string `toml:"bus"`
	// Address overrides the chip's default I2C address.
	Address uint16 `toml:"address"`

	// Effect selects the update algorithm.
	Effect string `toml:"effect"`
	// On starts the effect running; pulse effects usually start off.
	On bool `toml:"on"`
	// Interval overrides the effect's interval pattern, in milliseconds.
	// Must hold 2, 4, 6 or 8 values when set.
	Interval []uint32 `toml:"interval"`
	// MaxBrightness and MinBrightness bound the PWM effects.
	MaxBrightness *uint8 `toml:"max_brightness"`
	MinBrightness *uint8 `toml:"min_brightness"`
}

// Group configures a set of LEDs driven by one choreography.
type Group struct {
	// Name identifies the group in logs, MQTT events and the status page.
	Name string `toml:"name"`
	// Driver selects the hardware adapter: gpio, pcf8574, pca9685,
	// ht16k33 or fake.
	Driver string `toml:"driver"`

	// Pins is the GPIO line offsets, in output order (gpio driver).
	Pins []int `toml:"pins"`
	// Chip is the gpiochip device name (gpio driver).
	Chip string `toml:"chip"`
	// ActiveLow inverts the electrical level (gpio driver).
	ActiveLow bool `toml:"active_low"`
	// Bus is the I2C bus device, e.g. /dev/i2c-1 (I2C drivers).
	Bus string `toml:"bus"`
	// Address overrides the chip's default I2C address.
	Address uint16 `toml:"address"`

	// Effect selects the choreography.
	Effect string `toml:"effect"`
	// Interval overrides the choreography's timing, in milliseconds.
	// The pair effects take on/off pairs; the trafficlight takes a
	// single blink period.
	Interval []uint32 `toml:"interval"`
}

// DefaultPoll is used when the poll interval is unset.
const DefaultPoll = 10 * time.Millisecond

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if len(c.Outputs) == 0 && len(c.Groups) == 0 {
		return fmt.Errorf("no outputs configured")
	}

	names := make(map[string]bool)
	for i := range c.Outputs {
		o := &c.Outputs[i]
		if err := o.validate(); err != nil {
			return fmt.Errorf("output %q: %w", o.Name, err)
		}
		if names[o.Name] {
			return fmt.Errorf("duplicate output name %q", o.Name)
		}
		names[o.Name] = true
	}
	for i := range c.Groups {
		g := &c.Groups[i]
		if err := g.validate(); err != nil {
			return fmt.Errorf("group %q: %w", g.Name, err)
		}
		if names[g.Name] {
			return fmt.Errorf("duplicate output name %q", g.Name)
		}
		names[g.Name] = true
	}
	return nil
}

func (o *Output) validate() error {
	if o.Name == "" {
		return fmt.Errorf("missing name")
	}
	switch o.Driver {
	case "gpio", "fake":
	case "sysfs":
		if o.LED == "" {
			return fmt.Errorf("sysfs driver needs a led device name")
		}
	case "pcf8574", "pca9685", "ht16k33":
		if o.Bus == "" {
			return fmt.Errorf("%s driver needs a bus device", o.Driver)
		}
	default:
		return fmt.Errorf("unknown driver %q", o.Driver)
	}
	if !outputEffects[o.Effect] {
		return fmt.Errorf("unknown effect %q", o.Effect)
	}
	if err := validateInterval(o.Interval); err != nil {
		return err
	}
	if o.MaxBrightness != nil && o.MinBrightness != nil && *o.MaxBrightness < *o.MinBrightness {
		return fmt.Errorf("max_brightness %d below min_brightness %d", *o.MaxBrightness, *o.MinBrightness)
	}
	return nil
}

func (g *Group) validate() error {
	if g.Name == "" {
		return fmt.Errorf("missing name")
	}
	size, ok := groupEffects[g.Effect]
	if !ok {
		return fmt.Errorf("unknown effect %q", g.Effect)
	}
	switch g.Driver {
	case "gpio":
		if len(g.Pins) < size {
			return fmt.Errorf("effect %q needs %d pins, got %d", g.Effect, size, len(g.Pins))
		}
	case "pcf8574", "pca9685", "ht16k33":
		if g.Bus == "" {
			return fmt.Errorf("%s driver needs a bus device", g.Driver)
		}
	case "fake":
	default:
		return fmt.Errorf("unknown driver %q", g.Driver)
	}
	// The trafficlight consumes a single blink period, not pairs.
	if g.Effect == "trafficlight" {
		if len(g.Interval) > 1 {
			return fmt.Errorf("trafficlight interval needs 1 value, got %d", len(g.Interval))
		}
		return nil
	}
	return validateInterval(g.Interval)
}

func validateInterval(intervals []uint32) error {
	switch len(intervals) {
	case 0, 2, 4, 6, 8:
		return nil
	}
	return fmt.Errorf("interval needs 2, 4, 6 or 8 values, got %d", len(intervals))
}

// PollInterval returns the poll setting or the default.
func (c *Config) PollInterval() time.Duration {
	if c.Poll == 0 {
		return DefaultPoll
	}
	return time.Duration(c.Poll)
}

// Duration is a duration that can be parsed from TOML.
type Duration time.Duration

var (
	_ encoding.TextUnmarshaler = (*Duration)(nil)
	_ encoding.TextMarshaler   = (*Duration)(nil)
)

func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Parse parses a configuration from a reader.
func Parse(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Load reads, parses and validates a configuration file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
