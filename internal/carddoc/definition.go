package carddoc

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/models"
)

// Definition is a fetched card definition. Raw is the decoded response body;
// DataSourceID is captured at fetch time from the column metadata.
type Definition struct {
	Raw          map[string]any
	DataSourceID string
}

// Inner returns the nested "definition" object, or nil.
func (d *Definition) Inner() map[string]any {
	if d == nil {
		return nil
	}
	m, _ := d.Raw["definition"].(map[string]any)
	return m
}

// Title returns the card title, or "" when it is absent.
func (d *Definition) Title() string {
	s, _ := d.Inner()["title"].(string)
	return s
}

// Columns returns the column metadata entries that are objects.
func (d *Definition) Columns() []map[string]any {
	if d == nil {
		return nil
	}
	return objects(d.Raw["columns"])
}

// Subscriptions returns the subscription objects keyed by name.
func (d *Definition) Subscriptions() map[string]map[string]any {
	subs, _ := d.Inner()["subscriptions"].(map[string]any)
	out := make(map[string]map[string]any, len(subs))
	for name, v := range subs {
		if m, ok := v.(map[string]any); ok {
			out[name] = m
		}
	}
	return out
}

// FirstColumnSourceID returns the sourceId of the first column entry only,
// whether it was sent as a string or a number.
func (d *Definition) FirstColumnSourceID() string {
	cols := d.Columns()
	if len(cols) == 0 {
		return ""
	}
	return stringValue(cols[0]["sourceId"])
}

// ColumnSourceID returns the first non-empty column sourceId.
func (d *Definition) ColumnSourceID() string {
	for _, c := range d.Columns() {
		if s := stringValue(c["sourceId"]); s != "" {
			return s
		}
	}
	return ""
}

// Annotations parses the card's annotation list. Entries that are not objects
// are ignored; an unparseable date leaves EntryDate zero.
func (d *Definition) Annotations(cardID int64) []models.Annotation {
	raw := objects(d.Inner()["annotations"])
	out := make([]models.Annotation, 0, len(raw))
	for _, m := range raw {
		a := models.Annotation{
			CardID:  models.Int64(cardID),
			Content: stringValue(m["content"]),
			Color:   stringValue(m["color"]),
		}
		if id, ok := int64Value(m["id"]); ok && id > 0 {
			a.ID = models.Int64(id)
		}
		if dp, ok := m["dataPoint"].(map[string]any); ok {
			if day, err := models.ParseDate(stringValue(dp["point1"])); err == nil {
				a.EntryDate = day
			}
		}
		userID, hasID := int64Value(m["userId"])
		userName := stringValue(m["userName"])
		if hasID || userName != "" {
			a.CreatedBy = &models.Author{UserName: userName}
			if hasID {
				a.CreatedBy.UserID = models.Int64(userID)
			}
		}
		if ms, ok := int64Value(m["createdDate"]); ok && ms > 0 {
			a.CreatedAt = models.Time(time.UnixMilli(ms).UTC())
		}
		out = append(out, a)
	}
	return out
}

func objects(v any) []map[string]any {
	list, _ := v.([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	}
	return ""
}

func int64Value(v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	case float64:
		return int64(x), true
	case int64:
		return x, true
	case int:
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// deepCopy clones maps and slices produced by encoding/json.
func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = deepCopy(val)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, val := range x {
			s[i] = deepCopy(val)
		}
		return s
	default:
		return v
	}
}
