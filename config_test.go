// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

import (
	"strings"
	"testing"

	"github.com/intuitivelabs/slog"
)

func applyOptions(opts []Option) Config {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

func TestLoadConfigYAMLAppliesFields(t *testing.T) {
	r := strings.NewReader("smoothing: true\nlog_level: debug\n")
	opts, err := LoadConfigYAML(r)
	if err != nil {
		t.Fatalf("LoadConfigYAML: %v\n", err)
	}
	cfg := applyOptions(opts)
	if !cfg.smoothing {
		t.Errorf("smoothing not applied\n")
	}
	if cfg.logLevel != slog.LDBG {
		t.Errorf("log level = %v, want LDBG\n", cfg.logLevel)
	}
}

func TestLoadConfigYAMLUnknownLevel(t *testing.T) {
	r := strings.NewReader("log_level: bogus\n")
	if _, err := LoadConfigYAML(r); err == nil {
		t.Errorf("expected an error for an unknown log_level\n")
	}
}

func TestLoadConfigYAMLDefaults(t *testing.T) {
	r := strings.NewReader("")
	opts, err := LoadConfigYAML(r)
	if err != nil {
		t.Fatalf("LoadConfigYAML: %v\n", err)
	}
	cfg := applyOptions(opts)
	if cfg.smoothing {
		t.Errorf("smoothing should default to false\n")
	}
	if cfg.logLevel != slog.LWARN {
		t.Errorf("log level should stay at the package default (LWARN) when unset, got %v\n", cfg.logLevel)
	}
}

func TestOptionsCompose(t *testing.T) {
	cfg := applyOptions([]Option{
		WithSmoothing(true),
		WithStartJiffies(42),
		WithLogLevel(slog.LERR),
	})
	if !cfg.smoothing || cfg.startJiffies != 42 || cfg.logLevel != slog.LERR {
		t.Errorf("composed options produced %+v\n", cfg)
	}
}

func TestNewAppliesOptions(t *testing.T) {
	w := New(WithStartJiffies(7), WithSmoothing(true))
	if w.Now() != 7 {
		t.Errorf("Now() = %d, want 7 (WithStartJiffies)\n", w.Now())
	}
	if !w.cfg.smoothing {
		t.Errorf("smoothing option was not applied by New\n")
	}
}
