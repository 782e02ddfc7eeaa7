package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newPushCommand(opts *RootOptions) *cobra.Command {
	var (
		cards  cardFlags
		rng    rangeFlags
		colors []string
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Copy warehouse annotations onto cards",
		Long: "Add every warehouse annotation in the date range whose color matches to each\n" +
			"selected card. Run sync afterwards to mirror the ids the cards assigned.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rng.parse()
			if err != nil {
				return err
			}

			res, err := opts.app.engine.Push(cmd.Context(), r, colors, cards.selection().IDs())
			if err != nil {
				return err
			}

			out := pushView{OperationID: res.OperationID, Pushed: res.Pushed, Failed: res.Failed}
			for _, row := range res.Rows {
				out.Rows = append(out.Rows, pushRowView{
					Annotation:  toView(row.Annotation),
					AssignedIDs: row.AssignedIDs,
					Failed:      toOutcomes(row.Failed),
				})
			}

			err = render(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) {
				fmt.Fprintln(w, "DATE\tCOLOR\tCARDS\tFAILED\tCONTENT")
				for _, row := range out.Rows {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
						row.Annotation.Date, row.Annotation.ColorName, len(row.AssignedIDs), len(row.Failed), row.Annotation.Content)
				}
				fmt.Fprintf(w, "\nPushed: %d, failed: %d\n", out.Pushed, out.Failed)
			})
			if err != nil {
				return err
			}
			if res.Failed > 0 {
				return fmt.Errorf("push incomplete: %d row(s) failed", res.Failed)
			}
			return nil
		},
	}

	cards.register(cmd)
	rng.register(cmd)
	cmd.Flags().StringSliceVar(&colors, "color", nil, "only push these colors (repeatable)")
	return cmd
}
