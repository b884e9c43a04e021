package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INFRA_"

// EnvEnvName renames the environment of every stack.
const EnvEnvName = EnvPrefix + "ENV_NAME"

// LogConfig selects the log level (debug, info, warn, error) and format
// (text, json).
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// NewLogger builds a logger writing to w. Unknown levels fall back to info.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(c.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// File is the configuration of one composition: the app-level stack and any
// number of service stacks.
type File struct {
	Log      LogConfig
	App      *AppConfig
	Services []*ServiceConfig
}

type fileDocument struct {
	Log      LogConfig   `yaml:"log"`
	App      yaml.Node   `yaml:"app"`
	Services []yaml.Node `yaml:"services"`
}

// Defaults returns the local environment: the general stack and the
// notification service.
func Defaults() *File {
	return &File{
		App:      LocalAppConfig(),
		Services: []*ServiceConfig{NotificationLocalConfig()},
	}
}

// Load reads a YAML configuration file.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration. Keys absent from the document keep
// their defaults; services without env_name or app_name inherit them from
// the app block.
func Parse(r io.Reader) (*File, error) {
	var doc fileDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg := &File{Log: doc.Log, App: LocalAppConfig()}
	if !doc.App.IsZero() {
		if err := doc.App.Decode(cfg.App); err != nil {
			return nil, fmt.Errorf("decoding app: %w", err)
		}
	}
	for i := range doc.Services {
		svc := newServiceConfig()
		if err := doc.Services[i].Decode(svc); err != nil {
			return nil, fmt.Errorf("decoding services[%d]: %w", i, err)
		}
		cfg.Services = append(cfg.Services, svc)
	}
	cfg.inheritIdentity()
	return cfg, nil
}

// ApplyEnv overlays environment variables. INFRA_ENV_NAME and INFRA_APP_NAME
// rename the app and every service; INFRA_<SERVICE>_ prefixes the settings of
// one service (INFRA_NOTIFICATION_TASK_CPU). A nil environ reads the process
// environment.
func (f *File) ApplyEnv(environ map[string]string) error {
	if err := env.ParseWithOptions(&f.Log, env.Options{Prefix: EnvPrefix + "LOG_", Environment: environ}); err != nil {
		return fmt.Errorf("parsing log config: %w", err)
	}
	if err := env.ParseWithOptions(f.App, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return fmt.Errorf("parsing app config: %w", err)
	}
	for _, svc := range f.Services {
		prefix := ServiceEnvPrefix(svc.ServiceName)
		if err := env.ParseWithOptions(svc, env.Options{Prefix: prefix, Environment: environ}); err != nil {
			return fmt.Errorf("parsing %s config: %w", svc.ServiceName, err)
		}
	}

	_, envSet := LookupEnv(environ, EnvEnvName)
	_, appSet := LookupEnv(environ, EnvPrefix+"APP_NAME")
	for _, svc := range f.Services {
		if envSet {
			svc.EnvName = f.App.EnvName
		}
		if appSet {
			svc.AppName = f.App.AppName
		}
	}
	return nil
}

// SetEnvName renames the environment of every stack.
func (f *File) SetEnvName(name string) {
	f.App.EnvName = name
	for _, svc := range f.Services {
		svc.EnvName = name
	}
}

// Service returns the configuration of a service by name.
func (f *File) Service(name string) (*ServiceConfig, bool) {
	for _, svc := range f.Services {
		if svc.ServiceName == name {
			return svc, true
		}
	}
	return nil, false
}

// Validate checks every record and rejects services declared twice.
func (f *File) Validate() error {
	var errs []error
	if f.App == nil {
		errs = append(errs, errors.New("app: missing"))
	} else if err := f.App.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("app: %w", err))
	}
	seen := make(map[string]bool, len(f.Services))
	for i, svc := range f.Services {
		if err := svc.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("services[%d]: %w", i, err))
		}
		if svc.ServiceName != "" && seen[svc.ServiceName] {
			errs = append(errs, fmt.Errorf("services[%d]: service %q declared twice", i, svc.ServiceName))
		}
		seen[svc.ServiceName] = true
	}
	return errors.Join(errs...)
}

// ServiceEnvPrefix returns the environment prefix of a service's overrides.
func ServiceEnvPrefix(service string) string {
	name := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(service))
	return EnvPrefix + name + "_"
}

func (f *File) inheritIdentity() {
	for _, svc := range f.Services {
		if svc.EnvName == "" {
			svc.EnvName = f.App.EnvName
		}
		if svc.AppName == "" {
			svc.AppName = f.App.AppName
		}
	}
}

// LookupEnv reads key from environ, or from the process environment when
// environ is nil.
func LookupEnv(environ map[string]string, key string) (string, bool) {
	if environ == nil {
		return os.LookupEnv(key)
	}
	v, ok := environ[key]
	return v, ok
}
