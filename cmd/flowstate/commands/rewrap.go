package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowstate/flowstate/pkg/handlers"
	"github.com/flowstate/flowstate/pkg/wire"
)

func newRewrapCommand() *cobra.Command {
	var (
		fromHandler string
		fromDir     string
		toHandler   string
		toDir       string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "rewrap <file>",
		Short: "Re-encode a state document with a different result handler",
		Long: `Rewrap deserializes a wire object with one result handler and serializes
it again with another. Use it to migrate persisted states between handler
configurations, for example from inline JSON payloads to local files.`,
		Example: `  # Move inline payloads out to local files
  flowstate rewrap --from json --to local --to-dir ./results run-42.json

  # Re-encode in place with the gob handler
  flowstate rewrap --from none --to gob -o run-42.json run-42.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			from, err := handlers.ForName(fromHandler, fromDir, log)
			if err != nil {
				return fmt.Errorf("invalid --from handler: %w", err)
			}
			to, err := handlers.ForName(toHandler, toDir, log)
			if err != nil {
				return fmt.Errorf("invalid --to handler: %w", err)
			}

			obj, err := readWireObject(args[0])
			if err != nil {
				return err
			}
			var loadOpts []wire.Option
			if from != nil {
				loadOpts = append(loadOpts, wire.WithResultHandler(from))
			}
			st, err := wire.Load(obj, loadOpts...)
			if err != nil {
				return fmt.Errorf("failed to deserialize state: %w", err)
			}

			var dumpOpts []wire.Option
			if to != nil {
				dumpOpts = append(dumpOpts, wire.WithResultHandler(to))
			}
			rewrapped, err := wire.Dump(st, dumpOpts...)
			if err != nil {
				return fmt.Errorf("failed to reserialize state: %w", err)
			}

			data, err := json.MarshalIndent(rewrapped, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode wire object: %w", err)
			}
			data = append(data, '\n')

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			log.WithStateType(fmt.Sprintf("%v", rewrapped[wire.FieldType])).
				Infof("rewrapped state written to %s", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromHandler, "from", "none", "result handler the input was written with (none, json, gob, local)")
	cmd.Flags().StringVar(&fromDir, "from-dir", "", "payload directory for the local --from handler")
	cmd.Flags().StringVar(&toHandler, "to", "none", "result handler to re-encode with (none, json, gob, local)")
	cmd.Flags().StringVar(&toDir, "to-dir", "", "payload directory for the local --to handler")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
