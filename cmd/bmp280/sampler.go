// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"time"

	cron "github.com/robfig/cron/v3"
	"periph.io/x/conn/v3/physic"
)

// sensor is the part of bmp280.Dev used to take readings.
type sensor interface {
	Sense(e *physic.Env) error
	SenseContinuous(interval time.Duration) (<-chan physic.Env, error)
}

// sampler takes readings and hands them to every sink.
type sampler struct {
	dev      sensor
	seaLevel float64
	sinks    []sink
	latest   *latest
	now      func() time.Time
}

// record fans a measurement out. Sink failures are logged, the next reading
// is tried anyway.
func (s *sampler) record(ctx context.Context, e physic.Env) Reading {
	r := newReading(e, s.seaLevel, s.now())
	lg.Infof("%s", r)
	s.latest.set(r)
	for _, k := range s.sinks {
		if err := k.Send(ctx, r); err != nil {
			lg.Errorf("%T: %v", k, err)
		}
	}
	return r
}

// once takes a single reading.
func (s *sampler) once(ctx context.Context) (Reading, error) {
	e := physic.Env{}
	if err := s.dev.Sense(&e); err != nil {
		return Reading{}, err
	}
	return s.record(ctx, e), nil
}

// continuous records readings until ctx is cancelled or the device is
// halted.
func (s *sampler) continuous(ctx context.Context, interval time.Duration) error {
	c, err := s.dev.SenseContinuous(interval)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-c:
			if !ok {
				return nil
			}
			s.record(ctx, e)
		}
	}
}

// scheduled records a reading on each activation of the cron spec until ctx
// is cancelled.
func (s *sampler) scheduled(ctx context.Context, spec string) error {
	c := cron.New()
	lg.Infof("starting cron scheduler with spec %q", spec)
	if _, err := c.AddFunc(spec, func() {
		if _, err := s.once(ctx); err != nil {
			lg.Errorf("failed to take reading: %v", err)
		}
	}); err != nil {
		return err
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
