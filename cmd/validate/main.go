package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/adventure-engine/pkg/scenario"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates the validate command.
func NewRootCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <scenario.json|scenario.yaml>...",
		Short: "Check scenario files for broken keys and authoring problems",
		Long: `Loads each scenario file and checks that every item, flag and location
referenced by a transition or description exists. Authoring problems such as
a missing catch-all description or ambiguous commands are reported as
warnings; pass --strict to fail on them too.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				if !validateFile(cmd.OutOrStdout(), path, strict) {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenario files failed validation", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

// validateFile reports on one file and returns whether it passed.
func validateFile(w io.Writer, path string, strict bool) bool {
	fmt.Fprintf(w, "Validating %s...\n", path)

	s, err := scenario.LoadFile(path)
	if err != nil {
		fmt.Fprintf(w, "  error: %v\n", err)
		return false
	}

	ok := true
	if err := s.Validate(); err != nil {
		var verr *scenario.ValidationError
		if errors.As(err, &verr) {
			for _, issue := range verr.Issues {
				fmt.Fprintf(w, "  error: %s\n", issue)
			}
		} else {
			fmt.Fprintf(w, "  error: %v\n", err)
		}
		ok = false
	}

	warnings := s.Lint()
	for _, issue := range warnings {
		fmt.Fprintf(w, "  warning: %s\n", issue)
	}
	if strict && len(warnings) > 0 {
		ok = false
	}

	if ok {
		fmt.Fprintf(w, "  %s is valid (%d locations, %d items, %d transitions)\n",
			s.Name, len(s.Locations), len(s.Items), len(s.Transitions))
	}
	return ok
}
