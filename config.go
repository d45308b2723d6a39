// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

import (
	"fmt"
	"io"

	"github.com/intuitivelabs/slog"
	"gopkg.in/yaml.v2"
)

// Config holds the tunables New accepts. HZ/DEPTH/LevelBits/Shift stay
// compile-time constants (geometry.go) — nothing here can change the
// bucket layout, only how the dispatcher and logger behave around it.
type Config struct {
	smoothing    bool
	startJiffies uint64
	logLevel     slog.LogLevel
	pool         Pool
}

// Option mutates a Config. Constructed via New(opts...), the same shape
// AtomBPMN's timewheel config and fjsleeping-gost's timer package use for
// an embeddable engine.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		smoothing:    false,
		startJiffies: 0,
		logLevel:     slog.LWARN,
		pool:         nil,
	}
}

// WithSmoothing turns on the perceptual tick-smoothing heuristic
// n = (n>>1)+1 from spec §4.5. Off by default: a library wants
// deterministic, reproducible tick counts unless a host explicitly asks
// for smoother-looking playback.
func WithSmoothing(enabled bool) Option {
	return func(c *Config) { c.smoothing = enabled }
}

// WithStartJiffies seeds the wheel's jiffy counter, mostly useful for tests
// that want to exercise wraparound-adjacent behaviour without ticking
// millions of times first.
func WithStartJiffies(j uint64) Option {
	return func(c *Config) { c.startJiffies = j }
}

// WithLogLevel sets the package-level Log's level for this process; like
// the teacher's slog.SetLevel(&Log, ...) calls, this is a global side
// effect, not per-Wheel state.
func WithLogLevel(level slog.LogLevel) Option {
	return func(c *Config) { c.logLevel = level }
}

// WithPool overrides the default sync.Pool-backed Pool, e.g. with a
// fixed-capacity pool in a host that wants to bound timer memory.
func WithPool(p Pool) Option {
	return func(c *Config) { c.pool = p }
}

// yamlConfig mirrors the subset of Config a host can express as a file,
// e.g.:
//
//	smoothing: true
//	log_level: debug
//
// Geometry is never read from YAML: HZ/DEPTH/LEVEL_BITS/SHIFT stay
// compile-time constants everywhere in this package.
type yamlConfig struct {
	Smoothing bool   `yaml:"smoothing"`
	LogLevel  string `yaml:"log_level"`
}

var yamlLevels = map[string]slog.LogLevel{
	"debug":   slog.LDBG,
	"notice":  slog.LNOTICE,
	"warn":    slog.LWARN,
	"warning": slog.LWARN,
	"err":     slog.LERR,
	"error":   slog.LERR,
	"crit":    slog.LCRIT,
	"critical": slog.LCRIT,
}

// LoadConfigYAML parses a small YAML document into Options, so a host can
// keep tick-smoothing/log-level tunables in a config file instead of Go
// code, following the YAML-driven setup AtomBPMN's timewheel Config uses.
func LoadConfigYAML(r io.Reader) ([]Option, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("hwheel: reading config: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("hwheel: parsing config: %w", err)
	}
	opts := []Option{WithSmoothing(yc.Smoothing)}
	if yc.LogLevel != "" {
		level, ok := yamlLevels[yc.LogLevel]
		if !ok {
			return nil, fmt.Errorf("hwheel: unknown log_level %q", yc.LogLevel)
		}
		opts = append(opts, WithLogLevel(level))
	}
	return opts, nil
}
