package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/annokeeper/internal/models"
	"github.com/spf13/cobra"
)

type deleteOptions struct {
	id     int64
	cardID int64
	text   string
	date   string
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	o := &deleteOptions{}

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an annotation",
		Long: "Delete by --id (with --card when the annotation lives on a card), or a global\n" +
			"annotation by --text and --date. The text and date form removes every match.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var a models.Annotation
			if cmd.Flags().Changed("id") {
				a.ID = models.Int64(o.id)
				if cmd.Flags().Changed("card") {
					a.CardID = models.Int64(o.cardID)
				}
			} else {
				date, err := models.ParseDate(o.date)
				if err != nil {
					return err
				}
				a.Content, a.EntryDate = o.text, date
			}

			res, err := opts.app.engine.Delete(cmd.Context(), a)
			if err != nil {
				return err
			}

			out := deleteView{
				OperationID:    res.OperationID,
				WarehouseRows:  res.WarehouseRows,
				WarehouseError: errString(res.WarehouseErr),
				CardAttempted:  res.CardAttempted,
				CardError:      errString(res.CardErr),
			}
			err = render(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) {
				if out.WarehouseError == "" {
					fmt.Fprintf(w, "warehouse:\t%d row(s) removed\n", out.WarehouseRows)
				} else {
					fmt.Fprintf(w, "warehouse:\tfailed: %s\n", out.WarehouseError)
				}
				switch {
				case !out.CardAttempted:
				case out.CardError == "":
					fmt.Fprintln(w, "card:\tremoved")
				default:
					fmt.Fprintf(w, "card:\tfailed: %s\n", out.CardError)
				}
			})
			if err != nil {
				return err
			}
			return errors.Join(res.WarehouseErr, res.CardErr)
		},
	}

	cmd.Flags().Int64Var(&o.id, "id", 0, "annotation id")
	cmd.Flags().Int64Var(&o.cardID, "card", 0, "card the annotation belongs to")
	cmd.Flags().StringVar(&o.text, "text", "", "content of a global annotation")
	cmd.Flags().StringVar(&o.date, "date", "", "entry date of a global annotation, YYYY-MM-DD")
	cmd.MarkFlagsMutuallyExclusive("id", "text")
	cmd.MarkFlagsMutuallyExclusive("card", "text")
	cmd.MarkFlagsRequiredTogether("text", "date")
	cmd.MarkFlagsOneRequired("id", "text")

	return cmd
}
