package cli

import (
	"github.com/dmitrijs2005/annokeeper/internal/models"
	"github.com/spf13/cobra"
)

// rangeFlags adds --from and --to.
type rangeFlags struct {
	from, to string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "first entry date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last entry date, YYYY-MM-DD")
}

func (f *rangeFlags) parse() (models.DateRange, error) {
	var r models.DateRange
	var err error
	if f.from != "" {
		if r.From, err = models.ParseDate(f.from); err != nil {
			return r, err
		}
	}
	if f.to != "" {
		if r.To, err = models.ParseDate(f.to); err != nil {
			return r, err
		}
	}
	return r, nil
}

// cardFlags collects target cards: every --card is added to the selection,
// then every --uncard is removed from it.
type cardFlags struct {
	add    []int64
	remove []int64
}

func (f *cardFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64SliceVar(&f.add, "card", nil, "target card id (repeatable)")
	cmd.Flags().Int64SliceVar(&f.remove, "uncard", nil, "drop a card id from the selection (repeatable)")
}

func (f *cardFlags) selection() *models.CardSelection {
	s := models.NewCardSelection(f.add...)
	for _, id := range f.remove {
		s.Remove(id)
	}
	return s
}
