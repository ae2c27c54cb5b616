package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/relaytrace/ztrace"
)

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode",
		Short: "Pretty-print a JSON wire batch read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runDecode(in io.Reader, out io.Writer) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("ztracectl: read stdin: %w", err)
	}

	var batch []ztrace.WireSpan
	if err := json.Unmarshal(raw, &batch); err != nil {
		return fmt.Errorf("ztracectl: decode wire batch: %w", err)
	}

	for _, span := range batch {
		fmt.Fprintf(out, "%s %s", span.TraceID, span.ID)
		if span.ParentID != "" {
			fmt.Fprintf(out, " parent=%s", span.ParentID)
		}
		fmt.Fprintf(out, " %q %dus\n", span.Name, span.Duration)
		for _, ann := range span.Annotations {
			fmt.Fprintf(out, "  @%d %s\n", ann.Timestamp, ann.Value)
		}
		for _, ann := range span.BinaryAnnotations {
			fmt.Fprintf(out, "  %s=%v\n", ann.Key, ann.Value)
		}
	}
	return nil
}
