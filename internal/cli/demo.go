package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/relaytrace/ztrace"
)

func newDemoCommand() *cobra.Command {
	var name string
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a sample trace end to end against a logging reporter",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(name, delay)
		},
	}
	cmd.Flags().StringVar(&name, "name", "ztracectl.demo", "root span name")
	cmd.Flags().DurationVar(&delay, "delay", 20*time.Millisecond, "simulated work duration per span")
	return cmd
}

func runDemo(name string, delay time.Duration) error {
	h, err := ztrace.Start(ztrace.StartOptions{
		Name:     name,
		Sample:   true,
		Remote:   &ztrace.Endpoint{ServiceName: "downstream"},
		Reporter: ztrace.LoggingReporter{},
	})
	if err != nil {
		return err
	}

	h = ztrace.StartSpan(h, ztrace.SpanOptions{Name: "work", Local: "demo-worker"})
	time.Sleep(delay)
	h = ztrace.FinishSpan(h, ztrace.FinishSpanOptions{})

	ztrace.Finish(h, ztrace.FinishOptions{})

	// The terminal sweep runs asynchronously on the trace's own actor;
	// give it a moment to flush before the process exits.
	time.Sleep(50 * time.Millisecond)
	return nil
}
