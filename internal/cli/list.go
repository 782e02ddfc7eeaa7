package cli

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/annokeeper/internal/directory"
	"github.com/dmitrijs2005/annokeeper/internal/models"
	"github.com/spf13/cobra"
)

func newListCommand(opts *RootOptions) *cobra.Command {
	var (
		rng     rangeFlags
		cardID  int64
		globals bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List warehouse annotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rng.parse()
			if err != nil {
				return err
			}

			var rows []models.Annotation
			switch {
			case cmd.Flags().Changed("card"):
				rows, err = opts.app.dir.ForCard(cmd.Context(), cardID, r)
			case globals:
				rows, err = opts.app.dir.Globals(cmd.Context(), r)
			default:
				rows, err = opts.app.dir.InRange(cmd.Context(), r)
			}
			if err != nil {
				return err
			}

			sum := directory.Summarize(rows)
			out := struct {
				Annotations []annotationView       `json:"annotations"`
				Total       int                    `json:"total"`
				Globals     int                    `json:"globals"`
				ByColor     []directory.ColorCount `json:"by_color"`
			}{toViews(rows), sum.Total, sum.Globals, sum.ByColor}

			return render(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) {
				writeAnnotations(w, out.Annotations)
				fmt.Fprintf(w, "\n%s\n", sum)
				for _, c := range sum.ByColor {
					fmt.Fprintf(w, "%s\t%d\n", c.Name, c.Count)
				}
			})
		},
	}

	rng.register(cmd)
	cmd.Flags().Int64Var(&cardID, "card", 0, "only rows mirrored from this card")
	cmd.Flags().BoolVar(&globals, "globals", false, "only global rows")
	cmd.MarkFlagsMutuallyExclusive("card", "globals")
	return cmd
}
