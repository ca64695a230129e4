package main

import (
	"fmt"

	"github.com/phanxgames/parallax/pagespec"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <page.yaml>",
	Short: "Check a page description without running it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	spec, err := pagespec.Load(args[0])
	if err != nil {
		return err
	}

	var animations, triggers int
	for _, s := range spec.Sections {
		animations += len(s.Animations)
		for _, a := range s.Animations {
			if a.Trigger != nil {
				triggers++
			}
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d sections, %d animations, %d triggers)\n",
		args[0], len(spec.Sections), animations, triggers)
	return nil
}
