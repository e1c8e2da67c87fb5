// Command badge-leds drives configured LED effects and publishes state
// changes to MQTT.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/badge-leds/internal/config"
	"github.com/sweeney/badge-leds/internal/effect"
	"github.com/sweeney/badge-leds/internal/mqtt"
	"github.com/sweeney/badge-leds/internal/status"
	"github.com/sweeney/badge-leds/internal/web"
)

var (
	configPath = "badge-leds.toml"
	verbose    = false
	heartbeat  = 15 * time.Minute
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.DurationVar(&heartbeat, "heartbeat", heartbeat, "heartbeat interval (0 to disable)")
}

func main() {
	pflag.Parse()

	if err := run(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	setLogLevel(cfg.LogLevel)

	// Initialize MQTT
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.Broker != "" {
		real, err := mqtt.NewRealPublisher(cfg.Broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = real
		mqttStatus = real
	} else {
		publisher = mqtt.NewFakePublisher()
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:     cfg.PollInterval().Milliseconds(),
		Broker:     cfg.Broker,
		HTTPAddr:   cfg.HTTP,
		ConfigPath: configPath,
	})

	// Build every configured output and group
	runners, closers, err := buildAll(cfg, func(name, effectName string, state uint8) {
		tracker.SetState(name, state)
		event := mqtt.Event{
			Timestamp: time.Now(),
			Output:    name,
			Effect:    effectName,
			State:     state,
		}
		log.WithFields(log.Fields{"output": name, "state": state}).Debug("state change")
		if err := publisher.Publish(event); err != nil {
			log.WithError(err).Warn("publish error")
			// Don't crash on publish failure
		}
	})
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	for _, r := range runners {
		tracker.Register(r.name, r.effect)
		if err := r.begin(); err != nil {
			return fmt.Errorf("init output %s: %w", r.name, err)
		}
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.WithError(err).Warn("failed to publish startup event")
	} else {
		log.Info("published startup event")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// Start HTTP status server
	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})
		log.WithField("addr", cfg.HTTP).Info("http status server listening")
	}

	log.WithFields(log.Fields{
		"poll":    cfg.PollInterval(),
		"broker":  cfg.Broker,
		"outputs": len(runners),
	}).Info("started")

	ticker := time.NewTicker(cfg.PollInterval())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g.Go(func() error {
		defer cancel() // stops the http server
		return runLoop(runners, publisher, mqttStatus, tracker, heartbeat, time.Now, ticker.C, sigCh)
	})

	return g.Wait()
}

// runLoop advances every effect on each tick until a shutdown signal
// arrives. now, tick and sig are injected for tests.
func runLoop(runners []*runner, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	lastHeartbeat := startTime

	for {
		select {
		case s := <-sig:
			log.WithField("signal", s).Info("shutting down")
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.WithError(err).Warn("failed to publish shutdown event")
			} else {
				log.Info("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			ms := effect.Millis(t.Sub(startTime).Milliseconds())

			for _, r := range runners {
				r.update(ms)
				if r.current != nil && tracker != nil {
					tracker.SetBrightness(r.name, r.current())
				}
			}

			if tracker != nil && mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				log.WithField("uptime", t.Sub(startTime)).Debug("heartbeat")
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.WithError(err).Warn("heartbeat publish error")
				}
			}
		}
	}
}

func setLogLevel(name string) {
	if verbose {
		log.SetLevel(log.DebugLevel)
		return
	}
	if name == "" {
		return
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		log.WithField("log_level", name).Warn("unknown log level, keeping default")
		return
	}
	log.SetLevel(level)
}
