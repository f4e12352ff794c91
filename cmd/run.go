package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/smazurov/procex/internal/logging"
	"github.com/smazurov/procex/internal/metrics"
	"github.com/smazurov/procex/internal/process"
)

// CreateRunCmd creates the run command.
func CreateRunCmd() *cobra.Command {
	var (
		timeout   time.Duration
		cwd       string
		shell     string
		maxOutput int64
		envPairs  []string
		logJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "run [command...]",
		Short: "Run a single command and stream its output",
		Long: `Runs a command with a timeout, streams stdout and stderr through, ` +
			`and exits with the child's exit code. With --shell the command line is ` +
			`handed to a shell instead of being split into arguments.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			loggingConfig := logging.Config{Level: "warn", Format: "text"}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("run")

			opts := &process.Options{
				Cwd:       cwd,
				Timeout:   timeout,
				MaxOutput: maxOutput,
				Shell:     shell,
				Env:       parseEnvPairs(envPairs),
				Logger:    logger,
			}

			handler := process.OutputFunc(func(source string, chunk []byte) {
				if source == "stderr" {
					os.Stderr.Write(chunk)
				} else {
					os.Stdout.Write(chunk)
				}
			})

			h, err := process.SpawnCommand(strings.Join(args, " "), opts, handler)
			if err != nil {
				logger.Error("Failed to launch command", "error", err)
				os.Exit(1)
			}

			res := h.Wait()
			metrics.ObserveResult(res)

			if res.TimedOut {
				logger.Warn("Command timed out", "timeout", opts.Timeout)
			}
			if res.Signal != "" {
				logger.Warn("Command terminated by signal", "signal", res.Signal)
			}
			os.Exit(exitCode(res))
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Kill the command after this duration (default 30s)")
	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory for the command")
	cmd.Flags().StringVar(&shell, "shell", "", "Run through a shell: 'default' for /bin/sh, or a shell path")
	cmd.Flags().Int64Var(&maxOutput, "max-output", 0, "Captured output budget in bytes (default 10MiB)")
	cmd.Flags().StringArrayVar(&envPairs, "env", nil, "Extra environment variables as KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Use JSON log format")

	return cmd
}

// exitCode maps a Result to the CLI's exit status. Signal-terminated
// children get the shell convention 128+signal so callers can tell them
// apart from an ordinary failure exit.
func exitCode(res *process.Result) int {
	if res.Signal != "" {
		if sig := unix.SignalNum(res.Signal); sig != 0 {
			return 128 + int(sig)
		}
	}
	return res.Code(1)
}

// parseEnvPairs converts KEY=VALUE strings into an overlay map. Malformed
// entries without '=' are skipped.
func parseEnvPairs(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}
