package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/parallax"
	"github.com/phanxgames/parallax/pagespec"
	"github.com/spf13/cobra"
)

const simulateDT = 1.0 / 60

var simulateCmd = &cobra.Command{
	Use:   "simulate <page.yaml>",
	Short: "Replay a scroll script headlessly and print every trigger toggle",
	Long: `Build the page without a window, drive it with a JSON scroll script
(the same format as the in-game test runner: scroll, scrollTo, sweep, resize,
refresh, wait, mark) at 60 ticks per second, and print one line per trigger
transition.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().String("script", "", "Path to the JSON scroll script (required)")
	simulateCmd.Flags().Int("max-frames", 36000, "Stop after this many frames even if the script has not finished")
	simulateCmd.Flags().Int("settle", 60, "Frames to run after the script finishes")
	_ = simulateCmd.MarkFlagRequired("script")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	scriptPath, _ := cmd.Flags().GetString("script")
	maxFrames, _ := cmd.Flags().GetInt("max-frames")
	settle, _ := cmd.Flags().GetInt("settle")

	spec, err := pagespec.Load(args[0])
	if err != nil {
		return err
	}
	runner, err := loadScript(scriptPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	page := parallax.NewPage(spec.Viewport.Width, spec.Viewport.Height)
	page.SetLogger(newLogger(cmd))
	page.SetEventSink(parallax.EventSinkFunc(func(ev parallax.TriggerEvent) {
		skipped := ""
		if ev.Skipped {
			skipped = " (skipped)"
		}
		fmt.Fprintf(out, "%6d  %-12s %-9s %s -> %s  scroll=%g action=%s%s\n",
			page.Frame(), ev.Name, ev.Kind, ev.From, ev.To, ev.ScrollY, ev.Action, skipped)
	}))
	runner.OnMark = func(label string, p *parallax.Page) {
		fmt.Fprintf(out, "%6d  mark %q scroll=%g\n", p.Frame(), label, p.Viewport().ScrollY)
	}
	page.SetTestRunner(runner)

	mount, err := pagespec.Build(page, spec)
	if err != nil {
		return err
	}

	frames := 0
	for ; frames < maxFrames && !runner.Done(); frames++ {
		page.Step(simulateDT)
	}
	if !runner.Done() {
		_ = mount.Unmount()
		return fmt.Errorf("script did not finish within %d frames", maxFrames)
	}
	for range settle {
		page.Step(simulateDT)
	}

	fmt.Fprintln(out, page.Stats())
	return mount.Unmount()
}

func loadScript(path string) (*parallax.TestRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return parallax.LoadTestScript(data)
}
