package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	jwttoken "visitflow/internal/jwt_token"
	"visitflow/internal/platform/config"
	"visitflow/internal/platform/postgres"
	"visitflow/internal/visit/duration"
	"visitflow/internal/visit/models"
	"visitflow/internal/visit/ports"
	"visitflow/internal/visit/service/overdue"
	"visitflow/internal/visit/store"
	id "visitflow/pkg/domain"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "visitctl",
		Short:         "Operate the visitflow visit engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDurationCmd(), newOverdueCmd(), newTokenCmd())
	return root
}

func newDurationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duration <text>",
		Short: "Show how an expected-duration string is understood",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := duration.ParseStrict(args[0])
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hours=%d minutes=%d total=%s\n", d.Hours, d.Minutes, d.Std())
			if err != nil {
				fmt.Fprintf(out, "warning: %v; treated as zero\n", err)
			}
			return nil
		},
	}
}

func newOverdueCmd() *cobra.Command {
	var (
		asJSON   bool
		seedFile string
		at       string
	)
	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "Run one overdue scan against the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				if now, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("--at must be RFC3339: %w", err)
				}
			}

			var st ports.VisitStore
			if cfg.DatabaseURL != "" {
				db, err := postgres.Open(ctx, cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer db.Close()
				st = store.NewPostgres(db, store.WithLocation(cfg.Location))
			} else {
				st = store.NewInMemory()
			}
			if seedFile != "" {
				if _, err := store.LoadSeedFile(ctx, seedFile, st, now); err != nil {
					return err
				}
			}

			detector, err := overdue.New(st, st, overdue.WithClock(func() time.Time { return now }))
			if err != nil {
				return err
			}
			visits, err := detector.Detect(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if visits == nil {
					visits = []models.OverdueVisit{}
				}
				return enc.Encode(visits)
			}
			return printOverdue(cmd.OutOrStdout(), visits)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML seed file to load before scanning")
	cmd.Flags().StringVar(&at, "at", "", "evaluate as of this RFC3339 instant instead of now")
	return cmd
}

func printOverdue(w io.Writer, visits []models.OverdueVisit) error {
	if len(visits) == 0 {
		_, err := fmt.Fprintln(w, "no overdue visits")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCHEDULE\tVISITOR\tSTATUS\tESTIMATED END\tOVERDUE (MIN)\tPAVILIONS")
	for _, v := range visits {
		names := make([]string, 0, len(v.Pavilions))
		for _, p := range v.Pavilions {
			names = append(names, p.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%v\n",
			v.ScheduleID, v.VisitorID, v.Status, v.EstimatedEnd.Format(time.DateTime), v.OverdueMinutes, names)
	}
	return tw.Flush()
}

func newTokenCmd() *cobra.Command {
	var (
		agent    string
		pavilion string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an agent bearer token signed with JWT_SIGNING_KEY",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			agentID := id.AgentID(uuid.New())
			if agent != "" {
				if agentID, err = id.ParseAgentID(agent); err != nil {
					return err
				}
			}
			var pavilionID id.PavilionID
			if pavilion != "" {
				if pavilionID, err = id.ParsePavilionID(pavilion); err != nil {
					return err
				}
			}
			token, err := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer).GenerateAgentToken(agentID, pavilionID, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&agent, "agent", "", "agent id (random when empty)")
	cmd.Flags().StringVar(&pavilion, "pavilion", "", "pavilion the agent is posted at")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
