// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/GermanBionicSystems/barometer/bmp280"
	"github.com/jessevdk/go-flags"
	homedir "github.com/mitchellh/go-homedir"
)

// defaultConfig is read when present and --config is not given.
const defaultConfig = "~/.bmp280.ini"

// Args are the command line options. Every option can also be set in the
// ini file, under [Application Options].
type Args struct {
	Config string `long:"config" description:"ini file with option values (default: ~/.bmp280.ini)"`

	// Wiring.
	Bus  string `long:"bus" default:"i2c" choice:"i2c" choice:"spi" choice:"softspi" description:"Bus the sensor is wired to"`
	I2C  string `long:"i2c" description:"I²C bus to use (default: first available)"`
	Addr uint16 `long:"addr" default:"0x77" base:"0" description:"I²C address, 0x76 when SDO is low"`
	SPI  string `long:"spi" description:"SPI port to use (default: first available)"`
	CLK  string `long:"clk" default:"GPIO21" description:"Clock pin for softspi"`
	MOSI string `long:"mosi" default:"GPIO20" description:"MOSI pin for softspi"`
	MISO string `long:"miso" default:"GPIO19" description:"MISO pin for softspi"`
	CS   string `long:"cs" default:"GPIO16" description:"Chip select pin for softspi"`

	// Sampling.
	Temperature int           `long:"osrs-t" default:"1" choice:"1" choice:"2" choice:"4" choice:"8" choice:"16" description:"Temperature oversampling"`
	Pressure    int           `long:"osrs-p" default:"16" choice:"0" choice:"1" choice:"2" choice:"4" choice:"8" choice:"16" description:"Pressure oversampling, 0 to disable"`
	Mode        string        `long:"mode" default:"normal" choice:"normal" choice:"forced" description:"Power mode"`
	Filter      int           `long:"filter" default:"0" choice:"0" choice:"2" choice:"4" choice:"8" choice:"16" description:"IIR filter coefficient"`
	Standby     time.Duration `long:"standby" default:"500us" description:"Standby time between measurements in normal mode"`
	BusTimeout  time.Duration `long:"bus-timeout" default:"1s" description:"Maximum duration of a bus transaction, 0 to disable"`
	SeaLevel    float64       `long:"sea-level" default:"1013.25" description:"Pressure at sea level in hPa, for the altitude"`

	// Scheduling.
	Interval time.Duration `long:"interval" description:"Read continuously at this interval"`
	Cron     string        `long:"cron" description:"Read on this cron schedule, e.g. '@every 1m'"`

	// Outputs.
	HTTP         string `long:"http" description:"Serve the latest reading on this address, e.g. :8080"`
	MQTTBroker   string `long:"mqtt-broker" description:"Publish readings to this broker, e.g. tcp://localhost:1883"`
	MQTTTopic    string `long:"mqtt-topic" default:"sensors/bmp280" description:"MQTT topic"`
	MQTTClientID string `long:"mqtt-client-id" default:"bmp280" description:"MQTT client id"`
	InfluxURL    string `long:"influx-url" description:"Write readings to this InfluxDB server"`
	InfluxToken  string `long:"influx-token" description:"InfluxDB token"`
	InfluxOrg    string `long:"influx-org" description:"InfluxDB organization"`
	InfluxBucket string `long:"influx-bucket" default:"sensors" description:"InfluxDB bucket"`
	Gauge        bool   `long:"gauge" description:"Draw the reading on the terminal"`

	Verbose bool `short:"v" long:"verbose" description:"Log register accesses"`
}

// parseArgs loads the ini file then the command line, which takes
// precedence.
func parseArgs(argv []string) (*Args, error) {
	a := &Args{}
	p := flags.NewParser(a, flags.Default)
	path, explicit := configPath(argv)
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	ini := flags.NewIniParser(p)
	// The file values become the defaults of the command line.
	ini.ParseAsDefaults = true
	if err := ini.ParseFile(path); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if _, err := p.ParseArgs(argv); err != nil {
		return nil, err
	}
	if a.Interval != 0 && a.Cron != "" {
		return nil, errors.New("--interval and --cron are mutually exclusive")
	}
	return a, nil
}

// configPath finds --config before the parser runs, so the file can be
// loaded first.
func configPath(argv []string) (string, bool) {
	for i, arg := range argv {
		if arg == "--" {
			break
		}
		if v := strings.TrimPrefix(arg, "--config="); v != arg {
			return v, true
		}
		if arg == "--config" && i+1 < len(argv) {
			return argv[i+1], true
		}
	}
	return defaultConfig, false
}

// sensorOpts converts the sampling options.
func (a *Args) sensorOpts() (*bmp280.Opts, error) {
	o := bmp280.DefaultOpts
	var err error
	if o.Temperature, err = oversampling(a.Temperature); err != nil {
		return nil, err
	}
	if o.Pressure, err = oversampling(a.Pressure); err != nil {
		return nil, err
	}
	switch a.Mode {
	case "normal":
		o.Mode = bmp280.Normal
	case "forced":
		o.Mode = bmp280.Forced
	default:
		return nil, fmt.Errorf("unknown mode %q", a.Mode)
	}
	switch a.Filter {
	case 0:
		o.Filter = bmp280.NoFilter
	case 2:
		o.Filter = bmp280.F2
	case 4:
		o.Filter = bmp280.F4
	case 8:
		o.Filter = bmp280.F8
	case 16:
		o.Filter = bmp280.F16
	default:
		return nil, fmt.Errorf("invalid filter %d", a.Filter)
	}
	found := false
	for s := bmp280.S0_5ms; s <= bmp280.S4s; s++ {
		if s.Duration() == a.Standby {
			o.Standby = s
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unsupported standby %s", a.Standby)
	}
	o.BusTimeout = a.BusTimeout
	return &o, nil
}

func oversampling(n int) (bmp280.Oversampling, error) {
	switch n {
	case 0:
		return bmp280.Off, nil
	case 1:
		return bmp280.O1x, nil
	case 2:
		return bmp280.O2x, nil
	case 4:
		return bmp280.O4x, nil
	case 8:
		return bmp280.O8x, nil
	case 16:
		return bmp280.O16x, nil
	default:
		return bmp280.Off, fmt.Errorf("invalid oversampling %d", n)
	}
}
