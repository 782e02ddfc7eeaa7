package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <card-id>",
		Short: "Show the annotations a card currently carries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid card id %q", args[0])
			}

			view, err := opts.app.engine.CardAnnotations(cmd.Context(), cardID)
			if err != nil {
				return err
			}

			out := struct {
				CardID      int64            `json:"card_id"`
				Title       string           `json:"title"`
				Annotations []annotationView `json:"annotations"`
			}{view.CardID, view.Title, toViews(view.Annotations)}

			return render(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) {
				fmt.Fprintf(w, "Card %d: %s\n\n", out.CardID, out.Title)
				writeAnnotations(w, out.Annotations)
			})
		},
	}
}
