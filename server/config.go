// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"os"
	"strings"
)

const (
	DefaultAddr      = "localhost:3001"
	DefaultJWTSecret = "dev_secret"
)

// Config holds the HTTP API settings.
type Config struct {
	Addr        string
	JWTSecret   string
	CORSOrigins []string
}

// ConfigFromEnv reads ALUMAP_ADDR, JWT_SECRET and ALUMAP_CORS_ORIGINS, falling
// back to the defaults for unset variables.
func ConfigFromEnv() Config {
	cfg := Config{
		Addr:        os.Getenv("ALUMAP_ADDR"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitOrigins(os.Getenv("ALUMAP_CORS_ORIGINS")),
	}

	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}

	if c.JWTSecret == "" {
		c.JWTSecret = DefaultJWTSecret
	}

	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}

	return c
}

func splitOrigins(s string) []string {
	var origins []string

	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return origins
}
