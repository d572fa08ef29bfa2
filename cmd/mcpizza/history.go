package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/mcpizza/internal/audit"
)

// newHistoryCmd prints recorded interactions from the SQLite log
func newHistoryCmd(v *viper.Viper, configFile *string) *cobra.Command {
	var (
		filter  audit.Filter
		kind    string
		asJSON  bool
		payload bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded tool calls and order state changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, *configFile)
			if err != nil {
				return err
			}
			if kind != "" {
				filter.Kind = audit.Kind(kind)
				if !filter.Kind.Valid() {
					return fmt.Errorf("unknown kind %q", kind)
				}
			}

			sink, err := audit.OpenSQLite(cmd.Context(), cfg.Audit.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open interaction log: %w", err)
			}
			defer func() { _ = sink.Close() }()

			events, err := sink.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(events)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tSESSION\tKIND\tNAME\tORDER\tERROR")
			for _, e := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.At.Format("2006-01-02 15:04:05"), e.SessionID, e.Kind, e.Name, e.OrderID, e.Error)
				if payload && len(e.Payload) > 0 {
					fmt.Fprintf(w, "\t\t\t%s\t\t\n", e.Payload)
				}
			}
			return w.Flush()
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.SessionID, "session", "", "only events for this session")
	flags.StringVar(&filter.OrderID, "order", "", "only events for this order id")
	flags.StringVar(&kind, "kind", "", "only events of this kind (tool_call, tool_response, state_change, error)")
	flags.IntVar(&filter.Limit, "limit", 100, "print only the newest N events")
	flags.BoolVar(&asJSON, "json", false, "print events as JSON")
	flags.BoolVar(&payload, "payload", false, "include event payloads")
	return cmd
}
