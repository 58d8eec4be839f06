package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/azargarov/wcall"
	"github.com/azargarov/wcall/internal/config"
	"github.com/azargarov/wcall/rest"
)

type runFlags struct {
	configFile string
	repeat     int
	metrics    bool
	data       string
}

func newRootCmd() *cobra.Command {
	var rf runFlags
	v := viper.New()

	root := &cobra.Command{
		Use:           "wcall",
		Short:         "Send HTTP requests through a crash-resilient background executor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&rf.configFile, "config", "c", "", "path to a YAML config file")
	pf.String("base-url", "", "base URL request paths are resolved against")
	pf.String("executor", config.ExecutorSingle, "executor kind: single, pool or sync")
	pf.Int("workers", 4, "number of pool workers")
	pf.String("codec", "text", "body codec: text, json, xml, yaml or none")
	pf.Duration("timeout", 0, "overall request timeout")
	pf.String("token", "", "bearer token")
	pf.StringToString("header", nil, "extra header as key=value (repeatable)")
	pf.String("log-level", "info", "log level")
	pf.IntVarP(&rf.repeat, "repeat", "n", 1, "send the request N times concurrently")
	pf.BoolVar(&rf.metrics, "metrics", false, "print executor counters after the run")

	bindings := map[string]string{
		"base_url":         "base-url",
		"executor.kind":    "executor",
		"executor.workers": "workers",
		"codec":            "codec",
		"timeout":          "timeout",
		"token":            "token",
		"headers":          "header",
		"log_level":        "log-level",
	}
	for key, flag := range bindings {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		root.AddCommand(newMethodCmd(method, v, &rf))
	}
	return root
}

func newMethodCmd(method string, flags *viper.Viper, rf *runFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " <path>",
		Short: fmt.Sprintf("Send a %s request", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), method, args[0], flags, rf)
		},
	}
	if method == http.MethodPost || method == http.MethodPut {
		cmd.Flags().StringVarP(&rf.data, "data", "d", "", "request body, sent as is")
	}
	return cmd
}

func loadConfig(flags *viper.Viper, path string) (*config.Config, error) {
	v, err := config.NewViper(path)
	if err != nil {
		return nil, err
	}
	// flags explicitly set on the command line win over file and env
	for _, key := range flags.AllKeys() {
		if flags.IsSet(key) {
			v.Set(key, flags.Get(key))
		}
	}
	return config.Load(v)
}

func run(out io.Writer, method, path string, flags *viper.Viper, rf *runFlags) error {
	cfg, err := loadConfig(flags, rf.configFile)
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()
	zap.S().Debugw("configuration loaded", "config", cfg.DebugMap())

	reg := prometheus.NewRegistry()
	metrics, err := wcall.NewPromMetrics(reg, "wcall")
	if err != nil {
		return err
	}
	ctx := config.WithLogger(context.Background(), logger)
	exec, stop, err := cfg.NewExecutor(ctx, metrics)
	if err != nil {
		return err
	}
	defer stop()

	adapter, err := cfg.NewAdapter(exec)
	if err != nil {
		return err
	}
	codec, err := rest.CodecByName(cfg.Codec)
	if err != nil {
		return err
	}

	calls := make([]*wcall.Call[rest.Raw], 0, max(rf.repeat, 1))
	for range max(rf.repeat, 1) {
		b := rest.NewRequest(method, path).WithContext(ctx)
		if rf.data != "" {
			b.RawBody([]byte(rf.data), codec.ContentType())
		}
		calls = append(calls, rest.Do[rest.Raw](adapter, b))
	}

	var failed int
	for i, call := range calls {
		raw, err := call.Block()
		switch {
		case err != nil:
			failed++
			zap.S().Errorw("request failed", "index", i, "error", err)
		case raw.StatusCode >= http.StatusBadRequest:
			failed++
			zap.S().Errorw("request failed", "index", i, "status", raw.StatusCode)
			fmt.Fprintf(out, "%s\n", raw.Body)
		default:
			zap.S().Infow("request done", "index", i, "status", raw.StatusCode)
			fmt.Fprintf(out, "%s\n", raw.Body)
		}
	}

	if rf.metrics {
		if err := printMetrics(out, reg); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(calls))
	}
	return nil
}

func printMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(out, "%s %g\n", mf.GetName(), m.GetCounter().GetValue())
		}
	}
	return nil
}
