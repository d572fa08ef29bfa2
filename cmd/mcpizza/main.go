// Command mcpizza serves the pizza-ordering MCP tools over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/mcpizza/internal/audit"
	"github.com/dshills/mcpizza/internal/config"
	"github.com/dshills/mcpizza/internal/mcp"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running mcpizza with no subcommand
// serves MCP on stdio.
func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:   "mcpizza",
		Short: "MCP server for ordering Domino's pizza",
		Long: `MCPizza exposes store lookup, menu browsing and order placement as MCP
tools over stdio.

Configuration is read from --config, mcpizza.yaml in the working directory
or ~/.config/mcpizza, a .env file, and MCPIZZA_* environment variables.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v, configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text or json)")
	flags.String("log-output", "", "log destination: stderr or a file path")
	flags.String("audit-db", "", "interaction log database path")
	for key, flag := range map[string]string{
		"log.level":     "log-level",
		"log.format":    "log-format",
		"log.output":    "log-output",
		"audit.db_path": "audit-db",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve MCP on stdio (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), v, configFile)
			},
		},
		newHistoryCmd(v, &configFile),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "MCPizza MCP Server\n")
			fmt.Fprintf(out, "Version: %s\n", version)
			fmt.Fprintf(out, "Build Time: %s\n", buildTime)
			fmt.Fprintf(out, "MCP Server: %s %s\n", mcp.ServerName, mcp.ServerVersion)
			fmt.Fprintf(out, "Build Mode: %s\n", audit.BuildMode)
			fmt.Fprintf(out, "SQLite Driver: %s\n", audit.DriverName)
		},
	}
}

// loadConfig loads .env, then the config file and environment
func loadConfig(v *viper.Viper, configFile string) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	return config.Load(v, configFile)
}
