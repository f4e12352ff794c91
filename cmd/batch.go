package cmd

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/smazurov/procex/internal/config"
	"github.com/smazurov/procex/internal/events"
	"github.com/smazurov/procex/internal/logging"
	"github.com/smazurov/procex/internal/metrics"
	"github.com/smazurov/procex/internal/process"
	"github.com/smazurov/procex/internal/signals"
)

// batchOptions is filled with CLI > env > TOML precedence via config.Load.
type batchOptions struct {
	Config        string
	MaxConcurrent int    `toml:"pool.max_concurrent" env:"POOL_MAX_CONCURRENT"`
	TimeoutSecs   int    `toml:"exec.timeout_seconds" env:"EXEC_TIMEOUT_SECONDS"`
	Shell         string `toml:"exec.shell" env:"EXEC_SHELL"`
	MetricsAddr   string `toml:"metrics.addr" env:"METRICS_ADDR"`
}

// CreateBatchCmd creates the batch command.
func CreateBatchCmd() *cobra.Command {
	opts := batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Run commands from a file or stdin through a bounded pool",
		Long: `Reads one command per line and runs them through a process pool with ` +
			`bounded concurrency. Blank lines and lines starting with '#' are skipped. ` +
			`Exits non-zero if any command fails.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.Load(&opts, cmd); err != nil {
				fmt.Fprintf(os.Stderr, "config error: %v\n", err)
				os.Exit(1)
			}

			logging.Initialize(config.LoadLogging(opts.Config))
			logger := logging.GetLogger("batch")

			input := os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					logger.Error("Failed to open command file", "error", err)
					os.Exit(1)
				}
				defer f.Close()
				input = f
			}

			os.Exit(runBatch(&opts, input, logger))
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "Path to TOML configuration file")
	cmd.Flags().IntVar(&opts.MaxConcurrent, "max-concurrent", 0, "Maximum concurrently running commands (default 5)")
	cmd.Flags().IntVar(&opts.TimeoutSecs, "timeout-secs", 0, "Per-command timeout in seconds (default 30)")
	cmd.Flags().StringVar(&opts.Shell, "shell", "", "Run lines through a shell: 'default' for /bin/sh, or a shell path")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

func runBatch(opts *batchOptions, input io.Reader, logger logging.Logger) int {
	bus := events.New()

	// Output streaming is decoupled from execution through the bus.
	defer bus.Subscribe(func(e events.ProcessOutputEvent) {
		if e.Source == "stderr" {
			os.Stderr.WriteString(e.Chunk)
		} else {
			os.Stdout.WriteString(e.Chunk)
		}
	})()
	defer bus.Subscribe(func(e events.SignalReceivedEvent) {
		logger.Warn("Shutdown signal received, discarding queued commands", "signal", e.Signal)
	})()

	pool := process.NewPool(&process.PoolOptions{
		MaxConcurrent: opts.MaxConcurrent,
		OnStats:       metrics.ObservePool,
		Handler: process.OutputFunc(func(source string, chunk []byte) {
			bus.Publish(events.ProcessOutputEvent{Source: source, Chunk: string(chunk)})
		}),
		Logger: logger,
	})

	coord := signals.NewCoordinator(logger)
	unregister := coord.OnShutdown(func() error {
		bus.Publish(events.SignalReceivedEvent{Signal: "shutdown"})
		pool.Shutdown()
		for _, pid := range pool.LivePids() {
			process.KillTree(pid, syscall.SIGTERM)
		}
		return nil
	})
	defer unregister()

	if opts.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(opts.MetricsAddr, mux); err != nil {
				logger.Warn("Metrics server stopped", "error", err)
			}
		}()
		logger.Info("Serving metrics", "addr", opts.MetricsAddr)
	}

	// Log level follows the config file while the batch runs.
	if opts.Config != "" {
		watcher := config.NewWatcher(opts.Config, func(path string) (logging.Config, error) {
			return config.LoadLogging(path), nil
		}, logger)
		watcher.OnReload(func(cfg logging.Config) {
			logging.SetLevel(cfg.Level)
		})
		if err := watcher.Start(); err != nil {
			logger.Warn("Config watcher disabled", "error", err)
		} else {
			defer func() { _ = watcher.Stop() }()
		}
	}

	execOpts := &process.Options{
		Timeout: time.Duration(opts.TimeoutSecs) * time.Second,
		Shell:   opts.Shell,
		Logger:  logger,
	}

	var wg sync.WaitGroup
	var failures atomic.Int64

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		wg.Add(1)
		go func(command string) {
			defer wg.Done()

			res, err := pool.Execute(command, execOpts)
			if err != nil {
				logger.Error("Command rejected", "command", command, "error", err)
				failures.Add(1)
				return
			}

			metrics.ObserveResult(res)
			if !res.Ok() {
				logger.Warn("Command failed", "command", command,
					"exit_code", res.Code(-1), "signal", res.Signal, "timed_out", res.TimedOut)
				failures.Add(1)
				return
			}
			logger.Debug("Command finished", "command", command, "duration", res.Duration)
		}(line)
	}
	if err := scanner.Err(); err != nil {
		logger.Error("Failed to read commands", "error", err)
		return 1
	}

	wg.Wait()

	if failures.Load() > 0 {
		logger.Warn("Batch finished with failures", "failures", failures.Load())
		return 1
	}
	logger.Info("Batch finished")
	return 0
}
