package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pstop/internal/config"
	"github.com/rileyhilliard/pstop/internal/errors"
	"github.com/rileyhilliard/pstop/internal/logger"
	"github.com/rileyhilliard/pstop/internal/monitor"
	"github.com/rileyhilliard/pstop/internal/process"
	"github.com/rileyhilliard/pstop/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// rootCmd runs the process dashboard.
var rootCmd = &cobra.Command{
	Use:   "pstop",
	Short: "Interactive process viewer",
	Long: `pstop shows a live, sortable view of the processes on this machine
along with CPU, memory, swap and network meters.

Per-process network bandwidth and GPU usage have their own tabs. Press F1
or ? inside the dashboard for the full list of keys.

Examples:
  pstop
  pstop --tree --user postgres
  pstop --sort MEM% --interval 500ms
  PSTOP_LOG_FILE=/tmp/pstop.log PSTOP_DEBUG=1 pstop`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd.Flags())
		if err != nil {
			return err
		}
		return runDashboard(cmd.Context(), opts)
	},
}

func init() {
	addOptionFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
}

// addOptionFlags registers the session flags. Every flag can also be set
// through a PSTOP_* environment variable.
func addOptionFlags(f *pflag.FlagSet) {
	f.String(config.KeyConfig, "", "settings file (default: <user config dir>/pstop/pstoprc)")
	f.DurationP(config.KeyInterval, "d", 0, "refresh interval, overrides update_interval_ms (e.g. 1s, 500ms)")
	f.String(config.KeyLogFile, "", "append diagnostic logs to this file")
	f.Bool(config.KeyNoColor, false, "disable colors")
	f.BoolP(config.KeyTree, "t", false, "start in tree view")
	f.StringP(config.KeyFilter, "F", "", "only show processes whose command contains this text")
	f.StringP(config.KeyUser, "u", "", "only show processes of this user")
	f.StringP(config.KeySort, "s", "", "sort column, by name (CPU%, MEM%, PID...) or index")
	f.Int(config.KeyCadence, config.DefaultCadence, "ticks between expensive per-process reads")
	f.Int(config.KeyGPUCadence, config.DefaultGPUCadence, "ticks between GPU counter reads")
}

// loadOptions resolves and validates the session options from parsed flags
// and the environment.
func loadOptions(flags *pflag.FlagSet) (config.Options, error) {
	v := config.NewViper()
	if err := config.BindFlags(v, flags); err != nil {
		return config.Options{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read command-line flags",
			"Run 'pstop --help' to see the supported flags.")
	}
	opts := config.ReadOptions(v)
	if err := config.Validate(opts); err != nil {
		return config.Options{}, err
	}
	return opts, nil
}

// runDashboard runs the dashboard until the user quits, then saves the
// display settings.
func runDashboard(ctx context.Context, opts config.Options) error {
	closeLog, err := logger.SetOutput(opts.LogFile)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot open the log file",
			"Check the --log-file path or unset PSTOP_LOG_FILE.")
	}
	defer closeLog()
	logger.SetDefault(logger.NewEnvLogger("[pstop]"))
	log := logger.Default()

	if !ui.IsTerminal(os.Stdout) {
		return errors.New(errors.ErrTerminal,
			"pstop needs an interactive terminal",
			"Run pstop directly in a terminal instead of piping its output.")
	}
	ui.ConfigureColor(opts.NoColor, os.Stdout)

	path, err := opts.SettingsPath()
	if err != nil {
		return err
	}
	saved, err := config.Load(path)
	if err != nil {
		return err
	}
	for _, w := range config.ValidateSettings(saved) {
		log.Warn("%s: %s", path, w)
	}
	settings := opts.Apply(saved)

	cadence := monitor.Cadence{
		Process:  process.Cadence{RefreshEvery: uint64(opts.Cadence), CPUTimeOffset: 1},
		GPUEvery: uint64(opts.GPUCadence),
	}
	collector := monitor.NewDefaultCollector(cadence, log)
	model := monitor.NewModel(ctx, collector, settings, monitor.Session{
		Filter:      opts.Filter,
		User:        opts.User,
		Sort:        opts.Sort,
		CurrentUser: currentUser(),
	})

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if settings.EnableMouse {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	final, err := tea.NewProgram(model, progOpts...).Run()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal,
			"The dashboard stopped unexpectedly",
			"Re-run with --log-file and PSTOP_DEBUG=1 to capture details.")
	}

	m, ok := final.(monitor.Model)
	if !ok {
		return nil
	}
	return config.Save(path, sessionSettings(saved, m.Settings()))
}

// sessionSettings returns what to persist after a run. The refresh interval
// comes from the file, so a --interval override stays session-only.
func sessionSettings(saved, final config.Settings) config.Settings {
	final.UpdateIntervalMS = saved.UpdateIntervalMS
	return final
}

func currentUser() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}

// formatError renders err the way pstop prints failures. Errors without a
// structured form, like cobra's flag errors, get a usage hint.
func formatError(err error) string {
	var pErr *errors.Error
	if !stderrors.As(err, &pErr) {
		pErr = errors.New(errors.ErrConfig, err.Error(), "Run 'pstop --help' for usage.")
	}
	return pErr.Error()
}

// exitCode maps a failure to the process exit status: 2 for usage and
// configuration mistakes, 1 for everything else.
func exitCode(err error) int {
	var pErr *errors.Error
	if !stderrors.As(err, &pErr) || errors.IsCode(err, errors.ErrConfig) {
		return 2
	}
	return 1
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.ErrorStyle().Render(formatError(err)))
		os.Exit(exitCode(err))
	}
}
