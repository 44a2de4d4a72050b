package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowstate/flowstate/pkg/config"
	"github.com/flowstate/flowstate/pkg/handlers"
	"github.com/flowstate/flowstate/pkg/stores"
	"github.com/flowstate/flowstate/pkg/telemetry"
	"github.com/flowstate/flowstate/pkg/wire"
)

func newStoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Work with the task run state store",
		Long: `Store persists and recalls serialized task run states in the configured
SQLite database. Every state passes through the wire protocol on its way in
and out, with the configured result handler applied to opaque payloads.`,
	}

	cmd.AddCommand(newStoreSaveCommand())
	cmd.AddCommand(newStoreLatestCommand())
	cmd.AddCommand(newStoreHistoryCommand())
	cmd.AddCommand(newStoreListCommand())

	return cmd
}

// openStore builds the configured store, initialized and migrated.
func openStore(ctx context.Context, cfg *config.Config, log *telemetry.Logger) (*stores.SQLiteStore, error) {
	h, err := handlers.ForName(cfg.Results.Handler, cfg.Results.Dir, log)
	if err != nil {
		return nil, err
	}
	metrics, err := telemetry.NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}
	store, err := stores.NewSQLiteStore(stores.Config{
		Path:    cfg.Store.Path,
		Handler: h,
		Logger:  log,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func newStoreSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <task-run-id> <file>",
		Short: "Save a state document for a task run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			opts, err := handlerOptions(cfg, log)
			if err != nil {
				return err
			}

			obj, err := readWireObject(args[1])
			if err != nil {
				return err
			}
			st, err := wire.Load(obj, opts...)
			if err != nil {
				return fmt.Errorf("failed to deserialize state: %w", err)
			}

			store, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SaveState(cmd.Context(), args[0], st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s state for task run %s\n", st.Type(), args[0])
			return nil
		},
	}
}

func newStoreLatestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "latest <task-run-id>",
		Short: "Print the latest state of a task run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.LatestState(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				opts, err := handlerOptions(cfg, log)
				if err != nil {
					return err
				}
				obj, err := wire.Dump(st, opts...)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(obj)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", st.Type(), st.Type().Category())
			return nil
		},
	}
}

func newStoreHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <task-run-id>",
		Short: "Print the recorded state transitions of a task run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n",
					r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.Type, r.Version)
			}
			return nil
		},
	}
}

func newStoreListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List task runs with stored states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			ids, err := store.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(ids)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
