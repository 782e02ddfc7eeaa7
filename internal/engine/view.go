package engine

import (
	"context"

	"github.com/dmitrijs2005/annokeeper/internal/cardservice"
	"github.com/dmitrijs2005/annokeeper/internal/models"
)

// CardView is what the card service currently shows for a card.
type CardView struct {
	CardID      int64
	Title       string
	Annotations []models.Annotation
}

// CardAnnotations fetches a card and parses its annotations.
func (e *Engine) CardAnnotations(ctx context.Context, cardID int64) (CardView, error) {
	def, err := e.cards.FetchDefinition(ctx, cardID)
	if err != nil {
		return CardView{}, wrapPhase(&cardID, PhaseFetch, err)
	}
	return CardView{
		CardID:      cardID,
		Title:       cardservice.CardTitle(def),
		Annotations: def.Annotations(cardID),
	}, nil
}
