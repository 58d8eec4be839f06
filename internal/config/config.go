package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/creasty/defaults"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/azargarov/wcall"
	"github.com/azargarov/wcall/rest"
)

const envPrefix = "WCALL"

const (
	ExecutorSingle = "single"
	ExecutorPool   = "pool"
	ExecutorSync   = "sync"
)

type Config struct {
	BaseURL   string            `mapstructure:"base_url"`
	Timeout   time.Duration     `mapstructure:"timeout" default:"30s"`
	Codec     string            `mapstructure:"codec" default:"text"`
	Token     string            `mapstructure:"token"`
	Headers   map[string]string `mapstructure:"headers"`
	Executor  Executor          `mapstructure:"executor"`
	LogLevel  string            `mapstructure:"log_level" default:"info"`
	LogFormat string            `mapstructure:"log_format" default:"console"`
}

type Executor struct {
	Kind           string        `mapstructure:"kind" default:"single"`
	Workers        int           `mapstructure:"workers" default:"4"`
	LockOSThread   bool          `mapstructure:"lock_os_thread"`
	PinWorkers     bool          `mapstructure:"pin_workers"`
	RestartInitial time.Duration `mapstructure:"restart_initial" default:"5ms"`
	RestartMax     time.Duration `mapstructure:"restart_max" default:"1s"`
}

// keys lists every setting so that viper resolves them from the
// environment even when no config file mentions them.
var keys = []string{
	"base_url", "timeout", "codec", "token", "log_level", "log_format",
	"executor.kind", "executor.workers", "executor.lock_os_thread", "executor.pin_workers",
	"executor.restart_initial", "executor.restart_max",
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// tags are static; a failure here is a programming error
		panic(err)
	}
	return cfg
}

// NewViper returns a viper instance reading WCALL_* variables and, if path
// is not empty, the YAML file at path.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
	}
	return v, nil
}

// Load decodes v over the defaults and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Executor.Kind {
	case ExecutorSingle, ExecutorSync:
	case ExecutorPool:
		if c.Executor.Workers <= 0 {
			return fmt.Errorf("invalid executor.workers %d: must be positive", c.Executor.Workers)
		}
	default:
		return fmt.Errorf("invalid executor.kind %q: must be one of single, pool, sync", c.Executor.Kind)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to parse base_url: %v", err)
		}
		if !u.IsAbs() {
			return fmt.Errorf("base_url %q is not absolute", c.BaseURL)
		}
	}
	if _, err := rest.CodecByName(c.Codec); err != nil {
		return err
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log_format %q: must be 'console' or 'json'", c.LogFormat)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// Options converts the executor section into wcall options. Executor logs
// go to the logger attached to ctx.
func (c *Config) Options(ctx context.Context, m wcall.MetricsPolicy) wcall.Options {
	return wcall.Options{
		Context:      ctx,
		Workers:      c.Executor.Workers,
		LockOSThread: c.Executor.LockOSThread,
		PinWorkers:   c.Executor.PinWorkers,
		Restart: wcall.RestartPolicy{
			Initial: c.Executor.RestartInitial,
			Max:     c.Executor.RestartMax,
		},
		Metrics: m,
		OnJobError: func(err error) {
			zap.S().Warnw("job crashed its worker", "error", err)
		},
		OnInternalError: func(err error) {
			zap.S().Warnw("executor recovered", "error", err)
		},
	}
}

// NewExecutor builds the configured executor. stop releases its workers.
func (c *Config) NewExecutor(ctx context.Context, m wcall.MetricsPolicy) (exec wcall.Executor, stop func(), err error) {
	switch c.Executor.Kind {
	case ExecutorSync:
		return wcall.SyncExecutor{OnJobError: c.Options(ctx, m).OnJobError}, func() {}, nil
	case ExecutorPool:
		p := wcall.NewPool(c.Options(ctx, m))
		return p, p.Stop, nil
	case ExecutorSingle:
		w := wcall.NewSingleWorker(c.Options(ctx, m))
		return w, w.Stop, nil
	default:
		return nil, nil, fmt.Errorf("unknown executor kind %q", c.Executor.Kind)
	}
}

// NewAdapter builds a rest adapter running on exec.
func (c *Config) NewAdapter(exec wcall.Executor) (*rest.Adapter, error) {
	codec, err := rest.CodecByName(c.Codec)
	if err != nil {
		return nil, err
	}
	hdr := http.Header{}
	for k, v := range c.Headers {
		hdr.Set(k, v)
	}
	opts := []rest.Option{
		rest.WithExecutor(exec),
		rest.WithTransport(rest.NewHTTPTransport(c.Timeout)),
		rest.WithCodec(codec),
		rest.WithInterceptor(rest.Chain(
			rest.AddHeaders(hdr),
			rest.BearerToken(c.Token),
			rest.RequestID(),
		)),
	}
	if c.BaseURL != "" {
		opts = append(opts, rest.WithBaseURL(c.BaseURL))
	}
	return rest.NewAdapter(opts...)
}

// NewLogger builds the process logger.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

// WithLogger attaches l to ctx in the form the executor and the request
// pipeline read their logger from.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return lg.Attach(ctx, zapLogger{l: l})
}

type zapLogger struct{ l *zap.Logger }

func (z zapLogger) Debug(msg string, fields ...lg.Field) { z.l.Debug(msg, fields...) }
func (z zapLogger) Info(msg string, fields ...lg.Field)  { z.l.Info(msg, fields...) }
func (z zapLogger) Warn(msg string, fields ...lg.Field)  { z.l.Warn(msg, fields...) }
func (z zapLogger) Error(msg string, fields ...lg.Field) { z.l.Error(msg, fields...) }
func (z zapLogger) Sync() error                          { return z.l.Sync() }

func (z zapLogger) With(fields ...lg.Field) lg.ZLogger {
	return zapLogger{l: z.l.With(fields...)}
}

// DebugMap returns the settings for logging, with secrets masked.
func (c *Config) DebugMap() map[string]any {
	token := ""
	if c.Token != "" {
		token = "<hidden>"
	}
	return map[string]any{
		"base_url":  c.BaseURL,
		"timeout":   c.Timeout.String(),
		"codec":     c.Codec,
		"token":     token,
		"headers":   c.Headers,
		"executor":  c.Executor,
		"log_level": c.LogLevel,
	}
}
