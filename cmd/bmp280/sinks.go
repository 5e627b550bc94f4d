// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/GermanBionicSystems/barometer/gauge"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	homedir "github.com/mitchellh/go-homedir"
)

// sink receives every reading.
type sink interface {
	Send(ctx context.Context, r Reading) error
	Close() error
}

// mqttSink publishes readings as JSON documents.
type mqttSink struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// newMQTTSink connects to the broker. Readings that could not be delivered
// are kept in a file store under the home directory.
func newMQTTSink(broker, clientID, topic string) (*mqttSink, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetStore(mqtt.NewFileStore(filepath.Join(home, ".bmp280", "mqtt_store"))).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			lg.Errorf("lost connection to %s: %v", broker, err)
		})
	client := mqtt.NewClient(opts)
	if t := client.Connect(); t.Wait() && t.Error() != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", broker, t.Error())
	}
	return &mqttSink{client: client, topic: topic, timeout: 10 * time.Second}, nil
}

func (m *mqttSink) Send(ctx context.Context, r Reading) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	t := m.client.Publish(m.topic, 1, false, b)
	if !t.WaitTimeout(m.timeout) {
		return fmt.Errorf("publish timed out after %s", m.timeout)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

func (m *mqttSink) Close() error {
	m.client.Disconnect(250)
	return nil
}

// influxSink writes one point per reading.
type influxSink struct {
	client influxdb2.Client
	w      api.WriteAPIBlocking
	device string
}

func newInfluxSink(url, token, org, bucket, device string) *influxSink {
	c := influxdb2.NewClient(url, token)
	return &influxSink{client: c, w: c.WriteAPIBlocking(org, bucket), device: device}
}

func newInfluxPoint(r Reading, device string) *write.Point {
	p := influxdb2.NewPointWithMeasurement("bmp280").
		AddTag("device", device).
		AddField("temperature", r.Temperature)
	if r.Pressure != 0 {
		p = p.AddField("pressure", r.Pressure).AddField("altitude", r.Altitude)
	}
	return p.SetTime(r.Time)
}

func (s *influxSink) Send(ctx context.Context, r Reading) error {
	return s.w.WritePoint(ctx, newInfluxPoint(r, s.device))
}

func (s *influxSink) Close() error {
	s.client.Close()
	return nil
}

// gaugeSink draws readings on the terminal.
type gaugeSink struct {
	d *gauge.Dev
}

func (g *gaugeSink) Send(ctx context.Context, r Reading) error {
	return g.d.Show(r.env)
}

func (g *gaugeSink) Close() error {
	return g.d.Halt()
}
