package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newSyncCommand(opts *RootOptions) *cobra.Command {
	var (
		cards cardFlags
		rng   rangeFlags
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror card annotations into the warehouse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rng.parse()
			if err != nil {
				return err
			}
			ids := cards.selection().IDs()
			if len(ids) == 0 {
				return errors.New("sync needs at least one --card")
			}

			results := opts.app.engine.SyncCards(cmd.Context(), ids, r)

			views := make([]syncView, 0, len(results))
			failed := 0
			for _, res := range results {
				views = append(views, toSyncView(res))
				if res.Err != nil || res.Failed > 0 {
					failed++
				}
			}

			err = render(cmd.OutOrStdout(), opts.Format, views, func(w io.Writer) {
				fmt.Fprintln(w, "CARD\tINSERTED\tUPDATED\tSKIPPED\tFAILED\tERROR")
				for _, v := range views {
					fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%s\n", v.CardID, v.Inserted, v.Updated, v.Skipped, v.Failed, dash(v.Error))
				}
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("sync incomplete for %d card(s)", failed)
			}
			return nil
		},
	}

	cards.register(cmd)
	rng.register(cmd)
	return cmd
}
