// Package cardservice talks to the remote card service that owns card
// definitions and their embedded annotations.
//
// The Client interface is what the engine depends on; HTTPClient is the
// concrete implementation over the card service JSON API. Non-success HTTP
// statuses surface as *RemoteServiceError, transport failures wrap
// common.ErrUnavailable. Nothing is cached and nothing is retried.
package cardservice

import (
	"context"

	"github.com/dmitrijs2005/annokeeper/internal/carddoc"
)

type Client interface {
	// FetchDefinition returns the full definition of a card, including its
	// annotation list.
	FetchDefinition(ctx context.Context, cardID int64) (*carddoc.Definition, error)

	// SaveDefinition pushes a save payload built by carddoc.BuildSavePayload.
	// A successful response with an empty body yields a nil map.
	SaveDefinition(ctx context.Context, cardID int64, payload map[string]any) (map[string]any, error)
}

// CardTitle returns the card title, or "Unknown" when the definition has none.
func CardTitle(def *carddoc.Definition) string {
	if t := def.Title(); t != "" {
		return t
	}
	return "Unknown"
}
