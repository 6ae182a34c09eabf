// File: cmd/sessions.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/snakepilot/api/schemas"
	"github.com/xkilldash9x/snakepilot/internal/agent"
	"github.com/xkilldash9x/snakepilot/internal/config"
	"github.com/xkilldash9x/snakepilot/internal/observability"
	"github.com/xkilldash9x/snakepilot/internal/store"
)

var errNoDatabase = errors.New("no database configured (set database.url or SNAKEPILOT_DATABASE_URL)")

func newSessionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recently recorded game sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if cfg.Database().URL == "" {
				return errNoDatabase
			}

			st, pool, err := openStore(cmd.Context(), cfg.Database().URL, observability.Component("sessions"))
			if err != nil {
				return err
			}
			defer pool.Close()

			recent, err := st.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			sum, err := st.Summarize(cmd.Context())
			if err != nil {
				return err
			}
			return printSessions(cmd.OutOrStdout(), recent, sum)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of sessions to show")
	return cmd
}

func printSessions(out io.Writer, recent []schemas.SessionRecord, sum store.Summary) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENDED\tSCORE\tDURATION\tDISPATCHED\tDROPPED\tFAILURES")
	for _, rec := range recent {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%d\n",
			rec.EndedAt.Local().Format(time.DateTime), rec.FinalScore,
			rec.Duration().Round(time.Second), rec.Dispatched, rec.Dropped, rec.Failures)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%d games, best %d, mean %.1f\n", sum.Games, sum.BestScore, sum.MeanScore)
	return err
}

// openStore connects to PostgreSQL and makes sure the sessions table exists.
func openStore(ctx context.Context, url string, logger *zap.Logger) (*store.Store, *pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse database url: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	st, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return st, pool, nil
}

// openRecorder returns the session sink for run. Database problems are not fatal to playing.
func openRecorder(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (agent.SessionRecorder, func()) {
	if cfg.URL == "" {
		return store.Discard{Logger: logger}, func() {}
	}
	st, pool, err := openStore(ctx, cfg.URL, logger)
	if err != nil {
		logger.Warn("Session store unavailable, sessions will not be recorded", zap.Error(err))
		return store.Discard{Logger: logger}, func() {}
	}
	return st, pool.Close
}
