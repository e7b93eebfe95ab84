// Package main provides the CLI entrypoint for keytally.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keytally/internal/config"
	"github.com/verte-zerg/keytally/internal/hook"
	"github.com/verte-zerg/keytally/internal/keylog"
	"github.com/verte-zerg/keytally/internal/model"
	"github.com/verte-zerg/keytally/internal/rawlog"
	"github.com/verte-zerg/keytally/internal/session"
	"github.com/verte-zerg/keytally/internal/stats"
	"github.com/verte-zerg/keytally/internal/store"
	"github.com/verte-zerg/keytally/internal/tui"
)

const (
	defaultHistory   = true
	defaultHistTop   = 10
	recentKeysInView = 12
)

var (
	sessionLogFile string
	sessionHistory bool

	historySince string
	historyLast  int
	historyTop   int

	replayWrite bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keytally",
		Short:         "Count key presses and write a frequency report",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runSessionCmd,
	}

	rootCmd.Flags().StringVar(&sessionLogFile, "log-file", config.DefaultLogPath(), "log file path")
	rootCmd.Flags().BoolVar(&sessionHistory, "history", defaultHistory, "record the session summary in the history database")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newReplayCmd())

	return rootCmd
}

func loadSessionConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Lookup("log-file") != nil {
		applyStringConfig(cmd, "log-file", &sessionLogFile, fileCfg.Session.LogFile)
		applyBoolConfig(cmd, "history", &sessionHistory, fileCfg.Session.History)
	}
	cfg := model.Config{
		LogFile: sessionLogFile,
		History: sessionHistory,
		DBPath:  config.DefaultDBPath(),
	}
	if fileCfg.Session.DBPath != nil {
		cfg.DBPath = *fileCfg.Session.DBPath
	}
	return cfg, nil
}

func runSessionCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSessionConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if err := ensureLogDir(cfg.LogFile); err != nil {
		return err
	}

	logger := keylog.New(cfg.LogFile)
	source := tui.NewSource(func() tui.Status {
		return tui.Status{Report: logger.Snapshot(), Recent: logger.Recent(recentKeysInView)}
	})
	sess := session.New(logger, source, cmd.OutOrStdout())
	sess.OnKeyError = func(err error) {
		logErrf("failed to record key: %v\n", err)
	}

	if cfg.History {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			logErrf("history disabled, failed to open db: %v\n", err)
		} else {
			defer func() {
				if cerr := st.Close(); cerr != nil {
					logErrf("failed to close db: %v\n", cerr)
				}
			}()
			sess.Recorder = st
			sess.OnRecordError = func(err error) {
				logErrf("failed to save session history: %v\n", err)
			}
		}
	}

	if _, err := sess.Run(context.Background()); err != nil {
		return sessionError(err)
	}
	return nil
}

// ensureLogDir creates the XDG data directory for the default log file.
// A user-supplied directory must already exist; Initialize reports it otherwise.
func ensureLogDir(path string) error {
	if path != config.DefaultLogPath() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func sessionError(err error) error {
	var ioErr *keylog.IOError
	if errors.As(err, &ioErr) {
		return fmt.Errorf("cannot %s log file %s: %w", ioErr.Op, ioErr.Path, ioErr.Err)
	}
	var hookErr *hook.HookError
	if errors.As(err, &hookErr) {
		if errors.Is(err, tui.ErrNoTerminal) {
			return fmt.Errorf("cannot listen for keys: %w (run keytally from an interactive terminal)", hookErr.Err)
		}
		return fmt.Errorf("key listener %s failed: %w", hookErr.Op, hookErr.Err)
	}
	return err
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&historyTop, "top", defaultHistTop, "number of keys in the top keys table")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	cfg, err := loadSessionConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	sessions, err := st.ListSessions(ctx, model.HistoryFilter{Since: sinceTime, Last: historyLast})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(sessions) == 0 {
		return nil
	}
	if err := stats.RenderSessions(out, sessions, stats.TerminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	counts, err := st.AggregateKeyCounts(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load key counts: %w", err)
	}
	if err := stats.RenderKeyTable(out, "Top Keys", counts, historyTop); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print the report of a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q", args[0])
	}
	cfg, err := loadSessionConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if _, err := st.GetSession(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("session %d not found", id)
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	counts, err := st.ListKeyCounts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load key counts: %w", err)
	}
	if err := stats.WriteReport(cmd.OutOrStdout(), stats.BuildReportFromCounts(counts)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <log-file>",
		Short: "Build a report from an unfinished session log",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplayCmd,
	}
	cmd.Flags().BoolVar(&replayWrite, "write", false, "replace the log file content with the report")
	return cmd
}

func runReplayCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	keys, err := rawlog.Load(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	counter := stats.NewCounter()
	for _, key := range keys {
		counter.Add(key)
	}
	report := stats.BuildReport(counter)
	if replayWrite {
		if err := keylog.WriteReportFile(path, report); err != nil {
			return sessionError(err)
		}
		logErrf("Wrote report to %s\n", path)
		return nil
	}
	if err := stats.WriteReport(cmd.OutOrStdout(), report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keytally configuration
# Uncomment a value to enable it. CLI flags override config values.

[session]
# log-file = %q    # Session log file, replaced by the report on exit
# history = %t              # Record session summaries in the history database
# db-path = %q
`,
		config.DefaultLogPath(),
		defaultHistory,
		config.DefaultDBPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.LogFile) == "" {
		return fmt.Errorf("--log-file must not be empty")
	}
	if cfg.History && strings.TrimSpace(cfg.DBPath) == "" {
		return fmt.Errorf("db-path must not be empty when history is enabled")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
