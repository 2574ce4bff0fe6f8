// Package cli implements the pstop command line.
//
// The root command runs the dashboard. Its flags are persistent so the
// subcommands resolve the same options:
//
//	pstop                  - run the dashboard
//	pstop version          - print build information
//	pstop config path      - print the pstoprc location
//	pstop config show      - print the effective settings
//	pstop config reset     - restore default settings
//	pstop completion SHELL - print a shell completion script
//
// # Options
//
// Flags are bound to viper so each can also come from a PSTOP_* environment
// variable (PSTOP_INTERVAL, PSTOP_LOG_FILE, ...). A flag given on the
// command line wins over the environment. Options apply to one run only;
// the display settings changed inside the dashboard are written back to
// pstoprc when it exits.
//
// # Terminal
//
// The dashboard refuses to start when stdout is not a terminal. Colors are
// turned off by --no-color or NO_COLOR.
package cli
