package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"heartpredict/ml"
)

func newModelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Show model information and artifact locations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, m := range cfg.Dispatch().Models {
				fmt.Fprintf(w, "%s (%s)\n", m.Name, m.Kind)
				fmt.Fprintf(w, "  Artifact: %s\n", m.Path)
				if info, ok := ml.Describe(m.Kind); ok {
					fmt.Fprintf(w, "  %s\n", info.Description)
					fmt.Fprintf(w, "  Pros:     %s\n", info.Pros)
					fmt.Fprintf(w, "  Cons:     %s\n", info.Cons)
					fmt.Fprintf(w, "  Accuracy: %s\n", info.Accuracy)
				}
			}
			return nil
		},
	}
}
