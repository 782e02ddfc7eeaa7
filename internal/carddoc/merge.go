package carddoc

import (
	"errors"

	"github.com/dmitrijs2005/annokeeper/internal/models"
)

var (
	ErrNoDataSource        = errors.New("card definition has no data source id")
	ErrAssignedIDNotFound  = errors.New("assigned annotation id not found")
	ErrAmbiguousAssignedID = errors.New("assigned annotation id is ambiguous")
)

// Delta is a one-shot change to a card's annotation set. Existing
// annotations are never modified in place.
type Delta struct {
	New     []models.Draft
	Deleted []int64
}

// BuildSavePayload returns the document the save endpoint expects for def with
// delta applied. def is not modified.
func BuildSavePayload(def *Definition, delta Delta) (map[string]any, error) {
	dataSourceID := def.DataSourceID
	if dataSourceID == "" {
		dataSourceID = def.ColumnSourceID()
	}
	if dataSourceID == "" {
		return nil, ErrNoDataSource
	}

	definition, _ := deepCopy(def.Inner()).(map[string]any)
	if definition == nil {
		definition = map[string]any{}
	}

	ensureDefaults(definition)

	added := make([]any, 0, len(delta.New))
	for _, d := range delta.New {
		added = append(added, formatNew(d))
	}
	deleted := make([]any, 0, len(delta.Deleted))
	for _, id := range delta.Deleted {
		deleted = append(deleted, id)
	}
	definition["annotations"] = map[string]any{
		"new":      added,
		"modified": []any{},
		"deleted":  deleted,
	}

	return map[string]any{
		"definition": definition,
		"dataProvider": map[string]any{
			"dataSourceId": dataSourceID,
		},
		"variables": true,
	}, nil
}

// ensureDefaults fills in the substructures the save endpoint requires.
func ensureDefaults(definition map[string]any) {
	if _, ok := definition["dynamicTitle"]; !ok {
		text := []any{}
		if title, _ := definition["title"].(string); title != "" {
			text = append(text, map[string]any{"text": title, "type": "TEXT"})
		}
		definition["dynamicTitle"] = map[string]any{"text": text}
	}
	if _, ok := definition["dynamicDescription"]; !ok {
		definition["dynamicDescription"] = map[string]any{
			"text":                 []any{},
			"displayOnCardDetails": true,
		}
	}
	if _, ok := definition["description"]; !ok {
		definition["description"] = ""
	}
	if _, ok := definition["controls"]; !ok {
		definition["controls"] = []any{}
	}

	definition["formulas"] = map[string]any{
		"dsUpdated": []any{},
		"dsDeleted": []any{},
		"card":      []any{},
	}
	definition["conditionalFormats"] = map[string]any{
		"card":       []any{},
		"datasource": []any{},
	}

	if segments, ok := definition["segments"].(map[string]any); ok {
		_, hasActive := segments["active"]
		_, hasDefinitions := segments["definitions"]
		if hasActive && hasDefinitions {
			active := segments["active"]
			if active == nil {
				active = []any{}
			}
			definition["segments"] = map[string]any{
				"active": active,
				"create": []any{},
				"update": []any{},
				"delete": []any{},
			}
		}
	}
}

func formatNew(d models.Draft) map[string]any {
	color := d.Color
	if color == "" {
		color = models.DefaultColor
	}
	m := map[string]any{
		"content":   d.Content,
		"dataPoint": map[string]any{"point1": models.FormatDate(d.EntryDate)},
		"color":     color,
	}
	if d.Author != nil {
		if d.Author.UserID != nil {
			m["userId"] = *d.Author.UserID
		}
		if d.Author.UserName != "" {
			m["userName"] = d.Author.UserName
		}
	}
	return m
}

// ResolveAssignedID finds the id the card service minted for want by
// comparing the annotation sets before and after the save. Exactly one new
// annotation must match; anything else is an error.
func ResolveAssignedID(before, after []models.Annotation, want models.Draft) (int64, error) {
	known := make(map[int64]struct{}, len(before))
	for _, a := range before {
		if a.ID != nil {
			known[*a.ID] = struct{}{}
		}
	}

	var found []int64
	for _, a := range after {
		if a.ID == nil {
			continue
		}
		if _, ok := known[*a.ID]; ok {
			continue
		}
		if want.Matches(a) {
			found = append(found, *a.ID)
		}
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return 0, ErrAssignedIDNotFound
	default:
		return 0, ErrAmbiguousAssignedID
	}
}
