package cli

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/pstop/internal/config"
	"github.com/rileyhilliard/pstop/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or reset the settings file",
	Long: `Display settings live in pstoprc under the user config directory and
are saved every time the dashboard exits. Use --config to point at a
different file.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := settingsPath(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long: `Print the settings pstop would start with. Missing keys show their
defaults; values that were out of range are reported as warnings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := settingsPath(cmd)
		if err != nil {
			return err
		}
		s, err := config.Load(path)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.MutedStyle().Render(path))
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSimpleTable(
			[]ui.TableColumn{{Title: "KEY", Width: 22}, {Title: "VALUE", Width: 40}},
			settingsRows(s),
		))
		for _, w := range config.ValidateSettings(s) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.WarningStyle().Render(ui.SymbolWarning + " " + w))
		}
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the settings file with defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := settingsPath(cmd)
		if err != nil {
			return err
		}
		if err := config.Reset(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle().Render(ui.SymbolSuccess + " Settings reset to defaults in " + path))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configResetCmd)
}

func settingsPath(cmd *cobra.Command) (string, error) {
	opts, err := loadOptions(cmd.Flags())
	if err != nil {
		return "", err
	}
	return opts.SettingsPath()
}

// settingsRows lists s as key/value pairs in file order.
func settingsRows(s config.Settings) [][]string {
	var rows [][]string
	for _, line := range strings.Split(config.Render(s), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		rows = append(rows, []string{key, value})
	}
	return rows
}
