package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/annokeeper/internal/journal"
	"github.com/spf13/cobra"
)

var errNoJournal = errors.New("journal is disabled: set journal_path in the config")

func newJournalCommand(opts *RootOptions) *cobra.Command {
	var (
		failed bool
		limit  int
		opID   string
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recorded operation phases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j := opts.app.journal
			if j == nil {
				return errNoJournal
			}

			var (
				entries []journal.Entry
				err     error
			)
			switch {
			case opID != "":
				entries, err = j.Operation(cmd.Context(), opID)
			case failed:
				entries, err = j.Failures(cmd.Context(), limit)
			default:
				entries, err = j.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			views := toJournalViews(entries)
			return render(cmd.OutOrStdout(), opts.Format, views, func(w io.Writer) {
				fmt.Fprintln(w, "AT\tOPERATION\tKIND\tCARD\tANNOTATION\tPHASE\tSTATUS\tMESSAGE")
				for _, v := range views {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						v.At.Format("2006-01-02 15:04:05"), v.OperationID, v.Kind,
						optional(v.CardID), optional(v.AnnotationID), v.Phase, v.Status, v.Message)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&failed, "failed", false, "only failed phases")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries")
	cmd.Flags().StringVar(&opID, "op", "", "every phase of one operation")
	return cmd
}
