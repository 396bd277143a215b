// Package config holds the narrow, process-level configuration this core
// actually consumes: listen address, data directory, and a daily-key epoch
// override for tests. The process-level configuration loader itself (flag
// parsing, file formats, environment variables) is an external
// collaborator (spec §1) — this package only models the plain struct,
// matching the teacher's lib/config/router.go style rather than pulling in
// viper/cobra.
package config

import (
	"path/filepath"
	"time"
)

// SSUConfig is the subset of router configuration the SSU transport,
// establishment manager, and Kademlia table need to start.
type SSUConfig struct {
	// ListenAddress is the local UDP address to bind, e.g. "0.0.0.0".
	ListenAddress string
	// Port is the local UDP port to bind.
	Port uint16
	// DataDir is where the router database lives.
	DataDir string
	// DailyKeyEpoch is carried for callers that want a fixed daily-key
	// epoch; no package in this module reads it, so Kademlia daily-key
	// rotation always uses the real clock.
	DailyKeyEpoch time.Time
}

func defaultDataDir() string {
	home, err := filepath.Abs(".")
	if err != nil {
		return "."
	}
	return filepath.Join(home, "i2p-router")
}

var defaultSSUConfig = &SSUConfig{
	ListenAddress: "0.0.0.0",
	Port:          7654,
	DataDir:       defaultDataDir(),
}

// DefaultSSUConfig returns the package's default SSU configuration.
func DefaultSSUConfig() *SSUConfig {
	return defaultSSUConfig
}

// SSUConfigProperties is the process-wide configuration instance, mutable
// by flag parsing at startup (the teacher's RouterConfigProperties
// convention).
var SSUConfigProperties = DefaultSSUConfig()
