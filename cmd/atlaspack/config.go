// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/atlas"
	"github.com/gogpu/atlas/rectpack"
)

var (
	// ErrUnknownFormat is returned for settings files that are neither YAML nor TOML.
	ErrUnknownFormat = errors.New("atlaspack: unknown config format")

	// ErrUnknownKey is returned when a settings file names a key atlaspack does not know.
	ErrUnknownKey = errors.New("atlaspack: unknown config key")
)

// fileConfig is the on-disk form of atlas.Settings.
type fileConfig struct {
	InitialSize    int    `yaml:"initial-size" toml:"initial-size"`
	MaxSize        int    `yaml:"max-size" toml:"max-size"`
	Padding        int    `yaml:"padding" toml:"padding"`
	MaxPages       int    `yaml:"max-pages" toml:"max-pages"`
	Growth         string `yaml:"growth" toml:"growth"`
	Allocator      string `yaml:"allocator" toml:"allocator"`
	RepackOnInsert bool   `yaml:"repack-on-insert" toml:"repack-on-insert"`
	ClearOnRemove  bool   `yaml:"clear-on-remove" toml:"clear-on-remove"`
	Debug          bool   `yaml:"debug" toml:"debug"`
}

// fromSettings seeds a fileConfig so keys missing from the file keep s.
func fromSettings(s atlas.Settings) fileConfig {
	return fileConfig{
		InitialSize:    s.InitialSize,
		MaxSize:        s.MaxSize,
		Padding:        s.Padding,
		MaxPages:       s.MaxPageCount,
		Growth:         s.Growth.String(),
		Allocator:      s.Allocator.String(),
		RepackOnInsert: s.RepackOnInsert,
		ClearOnRemove:  s.ClearOnRemove,
		Debug:          s.Debug,
	}
}

func (c fileConfig) apply(s *atlas.Settings) error {
	growth, err := atlas.ParseGrowth(c.Growth)
	if err != nil {
		return fmt.Errorf("config growth: %w", err)
	}
	kind, err := rectpack.ParseKind(c.Allocator)
	if err != nil {
		return fmt.Errorf("config allocator: %w", err)
	}
	s.InitialSize = c.InitialSize
	s.MaxSize = c.MaxSize
	s.Padding = c.Padding
	s.MaxPageCount = c.MaxPages
	s.Growth = growth
	s.Allocator = kind
	s.RepackOnInsert = c.RepackOnInsert
	s.ClearOnRemove = c.ClearOnRemove
	s.Debug = c.Debug
	return nil
}

// loadConfig reads a YAML or TOML settings file over s.
func loadConfig(path string, s *atlas.Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return parseConfig(data, filepath.Ext(path), s)
}

// parseConfig decodes data in the format named by ext over s.
// Settings are not validated here; atlas.New does that.
func parseConfig(data []byte, ext string, s *atlas.Settings) error {
	c := fromSettings(*s)

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &c)
		if err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return fmt.Errorf("%w: %v", ErrUnknownKey, keys)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	return c.apply(s)
}
