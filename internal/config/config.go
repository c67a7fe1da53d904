/*
Copyright 2024 The Queued Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads and validates the JSON configuration document
// described in spec.md §6: named authentication backends plus a list of
// listening servers, each with its own hostname, port, optional TLS
// material, and optional authentication backend reference.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Authentication describes one named authentication backend.
type Authentication struct {
	Type string `json:"type"`

	// File is required for type == "plaintext".
	File string `json:"file,omitempty"`

	// Secret is required for type == "bearer".
	Secret string `json:"secret,omitempty"`
}

// Security holds the TLS certificate/key pair for a server.
type Security struct {
	Certificate string `json:"certificate"`
	PrivateKey  string `json:"privatekey"`
}

// Server describes one listening endpoint.
type Server struct {
	Hostname       string    `json:"hostname"`
	Port           int       `json:"port"`
	Security       *Security `json:"security,omitempty"`
	Authentication string    `json:"authentication,omitempty"`
}

// Config is the top-level configuration document.
type Config struct {
	Authentication map[string]Authentication `json:"authentication"`
	Servers        []Server                  `json:"servers"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural constraints spec.md §6 requires: port
// range, paired cert/key, and that each server's named authentication
// backend actually exists.
func (c *Config) Validate() error {
	for name, a := range c.Authentication {
		switch a.Type {
		case "plaintext":
			if a.File == "" {
				return fmt.Errorf("authentication %q: plaintext backend requires file", name)
			}
		case "bearer":
			if a.Secret == "" {
				return fmt.Errorf("authentication %q: bearer backend requires secret", name)
			}
		default:
			return fmt.Errorf("authentication %q: unknown type %q", name, a.Type)
		}
	}

	for i, s := range c.Servers {
		if s.Port <= 0 || s.Port > 32767 {
			return fmt.Errorf("server %d: port %d out of range (0, 32767]", i, s.Port)
		}
		if s.Security != nil {
			if s.Security.Certificate == "" || s.Security.PrivateKey == "" {
				return fmt.Errorf("server %d: security requires both certificate and privatekey", i)
			}
		}
		if s.Authentication != "" {
			if _, ok := c.Authentication[s.Authentication]; !ok {
				return fmt.Errorf("server %d: unknown authentication backend %q", i, s.Authentication)
			}
		}
	}
	return nil
}
