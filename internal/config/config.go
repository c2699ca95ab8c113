// Package config provides configuration management for go-records.
package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

var AppVersion = "-unset-" // will be set at build time

const (
	// Default web settings
	DefaultListenHost = "127.0.0.1"
	DefaultListenPort = 5001
	DefaultServiceDir = "web"

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// MainConfig holds the main configuration for go-records
type MainConfig struct {
	// Web interface settings
	Web WebConfig `json:"web" yaml:"web"`

	AppVersion string `json:"app_version" yaml:"-"` // Application version, set at build time
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenHost string `json:"listen_host" yaml:"listen_host"`
	ListenPort int    `json:"listen_port" yaml:"listen_port"`
	SSL        bool   `json:"ssl" yaml:"ssl"`
	CertFile   string `json:"cert_file,omitempty" yaml:"cert_file,omitempty"`
	KeyFile    string `json:"key_file,omitempty" yaml:"key_file,omitempty"`
	// ServiceDir anchors the dataset candidates and holds templates/
	ServiceDir string `json:"service_dir" yaml:"service_dir"`
	Debug      bool   `json:"debug" yaml:"debug"` // gin debug mode and verbose request logging

	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	return &MainConfig{
		AppVersion: AppVersion, // Set application version
		Web: WebConfig{
			ListenHost:      DefaultListenHost,
			ListenPort:      DefaultListenPort,
			SSL:             false,
			ServiceDir:      DefaultServiceDir,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}

// LoadFile overlays the YAML file at path onto cfg.
// Keys missing from the file keep their current values.
func (cfg *MainConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	log.Printf("[CONFIG]: Loaded configuration from %s", path)
	return nil
}

// Validate checks the web configuration before the server is built
func (cfg *MainConfig) Validate() error {
	return cfg.Web.Validate()
}

// Validate checks port range, SSL files and the service directory
func (w *WebConfig) Validate() error {
	if w.ListenPort < 1 || w.ListenPort > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", w.ListenPort)
	}
	if w.SSL && (w.CertFile == "" || w.KeyFile == "") {
		return errors.New("SSL enabled but cert_file or key_file not specified in config")
	}
	if w.ServiceDir == "" {
		return errors.New("service_dir must not be empty")
	}
	if w.ReadTimeout < 0 || w.WriteTimeout < 0 || w.ShutdownTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// Addr returns the host:port listen address
func (w *WebConfig) Addr() string {
	return net.JoinHostPort(w.ListenHost, strconv.Itoa(w.ListenPort))
}
