// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// bmp280 reads a BMP280 pressure and temperature sensor.
//
// Without --interval nor --cron, one reading is printed as JSON. Otherwise
// readings are taken until interrupted and sent to the configured outputs:
// HTTP, MQTT, InfluxDB and the terminal gauge.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/barometer/gauge"
	"github.com/d2r2/go-logger"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"
)

var lg = logger.NewPackageLogger("main", logger.InfoLevel)

func main() {
	defer logger.FinalizeLogger()
	a, err := parseArgs(os.Args[1:])
	if err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, a); err != nil {
		lg.Errorf("bmp280: %v", err)
		logger.FinalizeLogger()
		os.Exit(1)
	}
}

func run(ctx context.Context, a *Args) error {
	if a.Verbose {
		if err := logger.ChangePackageLogLevel("main", logger.DebugLevel); err != nil {
			return err
		}
	}
	dev, closeBus, err := openDevice(a)
	if err != nil {
		return err
	}
	defer closeBus()
	defer dev.Halt()
	if a.Verbose {
		dev.EnableDebug(lg.Debugf)
	}
	lg.Debugf("%s on %s, calibration %s", dev, dev.Bus(), dev.Calibration())

	sinks, err := openSinks(a, dev.String())
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				lg.Errorf("%T: %v", s, err)
			}
		}
	}()
	s := &sampler{dev: dev, seaLevel: a.SeaLevel, sinks: sinks, latest: &latest{}, now: time.Now}

	if a.Interval == 0 && a.Cron == "" {
		r, err := s.once(ctx)
		if err != nil {
			return err
		}
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "  ")
		return e.Encode(r)
	}

	g, ctx := errgroup.WithContext(ctx)
	if a.HTTP != "" {
		g.Go(func() error {
			return serve(ctx, a.HTTP, newRouter(s.latest))
		})
	}
	g.Go(func() error {
		if a.Interval != 0 {
			return s.continuous(ctx, a.Interval)
		}
		return s.scheduled(ctx, a.Cron)
	})
	return g.Wait()
}

func openSinks(a *Args, device string) ([]sink, error) {
	var sinks []sink
	if a.MQTTBroker != "" {
		m, err := newMQTTSink(a.MQTTBroker, a.MQTTClientID, a.MQTTTopic)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, m)
	}
	if a.InfluxURL != "" {
		sinks = append(sinks, newInfluxSink(a.InfluxURL, a.InfluxToken, a.InfluxOrg, a.InfluxBucket, device))
	}
	if a.Gauge {
		d, err := gauge.New(nil)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, &gaugeSink{d: d})
	}
	return sinks, nil
}
