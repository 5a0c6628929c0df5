package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/shouni/gemini-creator-kit/pkg/adapters"
	"github.com/shouni/gemini-creator-kit/pkg/config"
	"github.com/shouni/gemini-creator-kit/pkg/credential"
	"github.com/shouni/gemini-creator-kit/pkg/domain"
	"github.com/shouni/gemini-creator-kit/pkg/generator"
	"github.com/shouni/gemini-creator-kit/pkg/metrics"
	"github.com/shouni/gemini-creator-kit/pkg/studio"
	"github.com/shouni/gemini-creator-kit/pkg/video"
)

func main() {
	var (
		configFlag  string
		envFlag     string
		outFlag     string
		metricsFlag bool
	)
	flag.StringVar(&configFlag, "config", "", "path to creator.yaml (defaults to ./creator.yaml or $CREATOR_CONFIG_FILE)")
	flag.StringVar(&envFlag, "env", "", "path to .env file")
	flag.StringVar(&outFlag, "out", ".", "directory for generated files")
	flag.BoolVar(&metricsFlag, "metrics", false, "print collected metrics to stderr on exit")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	name, args := flag.Arg(0), flag.Args()[1:]

	if name == "features" {
		printFeatures(os.Stdout)
		return
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(config.Options{ConfigFile: configFlag, EnvFile: envFlag, RequireAPIKey: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := setupLogger(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	a, err := newApp(ctx, cfg, registry, outFlag)
	if err != nil {
		slog.Error("初期化に失敗しました", "error", err)
		os.Exit(1)
	}

	runErr := cmd.run(ctx, a, args)
	a.videos.Stop()

	if metricsFlag {
		if err := dumpMetrics(os.Stderr, registry); err != nil {
			slog.Warn("メトリクスの出力に失敗しました", "error", err)
		}
	}
	if runErr != nil {
		reportError(runErr)
		os.Exit(1)
	}
}

// app は 1 回のコマンド実行で共有する依存関係なのだ。
type app struct {
	studio  *studio.Studio
	videos  *video.Service
	session *credential.Session
	outDir  string
}

func newApp(ctx context.Context, cfg *config.Config, registry *prometheus.Registry, outDir string) (*app, error) {
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	client, err := adapters.NewGenAIClient(ctx, adapters.ClientOptions{APIKey: cfg.APIKey, HTTPClient: httpClient})
	if err != nil {
		return nil, err
	}

	gateway, err := generator.NewGateway(client, cfg.GeneratorModels(), cfg.GeneratorOptions(), recorder)
	if err != nil {
		return nil, err
	}

	selector := credential.NewEnvSelector(cfg.APIKey, config.APIKeyEnv)
	poller, err := video.NewPoller(client, cfg.PollerConfig(), recorder)
	if err != nil {
		return nil, err
	}
	videos, err := video.NewService(poller, video.NewDownloader(httpClient, selector))
	if err != nil {
		return nil, err
	}

	s, err := studio.New(gateway, videos, cfg.Images.Count)
	if err != nil {
		return nil, err
	}
	return &app{
		studio:  s,
		videos:  videos,
		session: credential.NewSession(selector),
		outDir:  outDir,
	}, nil
}

func setupLogger(cfg config.LogConfig) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func dumpMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// reportError は資格情報エラーの場合に再選択を促すメッセージを出します。
func reportError(err error) {
	switch {
	case errors.Is(err, domain.ErrAuth):
		fmt.Fprintf(os.Stderr, "%s\n(%s を設定し直してください)\n", domain.ReselectCredentialMessage, config.APIKeyEnv)
	case errors.Is(err, video.ErrStopped), errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "中断しました")
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: creatorctl [global flags] <command> [command flags]\n\nCommands:\n")
	fmt.Fprintf(out, "  %-18s %s\n", "features", "list the feature catalog")
	for _, name := range commandOrder {
		fmt.Fprintf(out, "  %-18s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(out, "\nGlobal flags:\n")
	flag.PrintDefaults()
}
