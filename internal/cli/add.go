package cli

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/annokeeper/internal/models"
	"github.com/spf13/cobra"
)

type addOptions struct {
	text     string
	date     string
	color    string
	userID   int64
	userName string
	cards    cardFlags
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	o := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an annotation to cards and the warehouse",
		Long: "Add an annotation to every selected card and mirror it into the warehouse.\n" +
			"Without --card the annotation is global and only the warehouse is written.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := models.ParseDate(o.date)
			if err != nil {
				return err
			}
			d := models.Draft{Content: o.text, EntryDate: date, Color: o.color}
			if o.userName != "" || cmd.Flags().Changed("user-id") {
				d.Author = &models.Author{UserName: o.userName}
				if cmd.Flags().Changed("user-id") {
					d.Author.UserID = models.Int64(o.userID)
				}
			}

			res, err := opts.app.engine.Add(cmd.Context(), d, o.cards.selection().IDs())
			if err != nil {
				return err
			}

			out := addView{
				OperationID:  res.OperationID,
				Global:       res.Global,
				SuccessCards: res.SuccessCards,
				AssignedIDs:  res.AssignedIDs,
				Partial:      toOutcomes(res.Partial),
				Failed:       toOutcomes(res.Failed),
			}
			if err := render(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) { writeAdd(w, out) }); err != nil {
				return err
			}
			if n := len(res.Partial) + len(res.Failed); n > 0 {
				return fmt.Errorf("add incomplete: %d card(s) not fully written", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&o.text, "text", "", "annotation text (required)")
	cmd.Flags().StringVar(&o.date, "date", "", "entry date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&o.color, "color", "", "palette name or hex value")
	cmd.Flags().Int64Var(&o.userID, "user-id", 0, "author user id")
	cmd.Flags().StringVar(&o.userName, "user-name", "", "author display name")
	o.cards.register(cmd)
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func writeAdd(w io.Writer, v addView) {
	if v.Global {
		fmt.Fprintln(w, "Global annotation saved to the warehouse")
		return
	}
	if len(v.SuccessCards) > 0 {
		fmt.Fprintln(w, "CARD\tANNOTATION")
		for _, id := range v.SuccessCards {
			fmt.Fprintf(w, "%d\t%d\n", id, v.AssignedIDs[id])
		}
	}
	for _, o := range v.Partial {
		fmt.Fprintf(w, "card %d: saved as %s but not mirrored (%s): %s\n", o.CardID, optional(o.AnnotationID), o.Phase, o.Error)
	}
	for _, o := range v.Failed {
		fmt.Fprintf(w, "card %d: failed at %s: %s\n", o.CardID, o.Phase, o.Error)
	}
}
