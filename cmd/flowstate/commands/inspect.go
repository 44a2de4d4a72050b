package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowstate/flowstate/pkg/state"
	"github.com/flowstate/flowstate/pkg/wire"
)

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Inspect a serialized state document",
		Long: `Inspect reads a wire object from a JSON file, deserializes it with the
configured result handler and prints a summary of the state it encodes.`,
		Example: `  # Summarize a persisted state
  flowstate inspect run-42.json

  # Machine-readable output
  flowstate inspect --json run-42.json`,
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
			opts, err := handlerOptions(cfg, log)
			if err != nil {
				return err
			}

			obj, err := readWireObject(args[0])
			if err != nil {
				return err
			}
			st, err := wire.Load(obj, opts...)
			if err != nil {
				return fmt.Errorf("failed to deserialize state: %w", err)
			}

			summary := summarize(st, obj)
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Type:     %s\n", summary.Type)
			fmt.Fprintf(cmd.OutOrStdout(), "Category: %s\n", summary.Category)
			if summary.Message != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Message:  %s\n", summary.Message)
			}
			if summary.Version != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Version:  %s\n", summary.Version)
			}
			if summary.HasResult {
				fmt.Fprintln(cmd.OutOrStdout(), "Result:   present")
			}
			if summary.Wraps != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wraps:    %s\n", summary.Wraps)
			}
			if summary.Children > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Children: %d\n", summary.Children)
			}
			return nil
		},
	}
	return cmd
}

// stateSummary is the inspect command's view of a deserialized state.
type stateSummary struct {
	Type      string `json:"type"`
	Category  string `json:"category"`
	Message   string `json:"message,omitempty"`
	Version   string `json:"version,omitempty"`
	HasResult bool   `json:"has_result"`
	Wraps     string `json:"wraps,omitempty"`
	Children  int    `json:"children,omitempty"`
}

func summarize(st state.State, obj map[string]any) stateSummary {
	s := stateSummary{
		Type:     string(st.Type()),
		Category: string(st.Type().Category()),
	}
	if v, ok := obj[wire.FieldVersion].(string); ok {
		s.Version = v
	}
	if v, ok := obj[wire.FieldMessage].(string); ok {
		s.Message = v
	}
	_, s.HasResult = obj[wire.FieldResult]
	switch x := st.(type) {
	case *state.Submitted:
		if x.State != nil {
			s.Wraps = string(x.State.Type())
		}
	case *state.Mapped:
		s.Children = len(x.MapStates)
	}
	return s
}

func readWireObject(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return obj, nil
}
