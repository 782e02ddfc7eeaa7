package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/engine"
	"github.com/dmitrijs2005/annokeeper/internal/journal"
	"github.com/dmitrijs2005/annokeeper/internal/models"
)

// render writes v as indented JSON, or calls text with a tab-aligned writer.
func render(w io.Writer, format string, v any, text func(w io.Writer)) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

type annotationView struct {
	ID        *int64     `json:"id,omitempty"`
	CardID    *int64     `json:"card_id,omitempty"`
	Date      string     `json:"date"`
	Color     string     `json:"color"`
	ColorName string     `json:"color_name"`
	Content   string     `json:"content"`
	Author    string     `json:"author,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func toView(a models.Annotation) annotationView {
	v := annotationView{
		ID:        a.ID,
		CardID:    a.CardID,
		Date:      models.FormatDate(a.EntryDate),
		Color:     a.Color,
		ColorName: models.ColorName(a.Color),
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
	}
	if a.CreatedBy != nil {
		v.Author = a.CreatedBy.UserName
		if v.Author == "" && a.CreatedBy.UserID != nil {
			v.Author = strconv.FormatInt(*a.CreatedBy.UserID, 10)
		}
	}
	return v
}

func toViews(as []models.Annotation) []annotationView {
	out := make([]annotationView, 0, len(as))
	for _, a := range as {
		out = append(out, toView(a))
	}
	return out
}

func writeAnnotations(w io.Writer, views []annotationView) {
	fmt.Fprintln(w, "ID\tCARD\tDATE\tCOLOR\tAUTHOR\tCREATED\tCONTENT")
	for _, v := range views {
		created := "N/A"
		if v.CreatedAt != nil {
			created = v.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			optional(v.ID), optional(v.CardID), v.Date, v.ColorName, dash(v.Author), created, v.Content)
	}
}

func optional(p *int64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatInt(*p, 10)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

type outcomeView struct {
	CardID       int64  `json:"card_id"`
	AnnotationID *int64 `json:"annotation_id,omitempty"`
	Phase        string `json:"phase,omitempty"`
	Error        string `json:"error,omitempty"`
}

func toOutcomes(outcomes []engine.CardOutcome) []outcomeView {
	out := make([]outcomeView, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, outcomeView{CardID: o.CardID, AnnotationID: o.AnnotationID, Phase: o.Phase, Error: errString(o.Err)})
	}
	return out
}

type addView struct {
	OperationID  string          `json:"operation_id"`
	Global       bool            `json:"global"`
	SuccessCards []int64         `json:"success_cards"`
	AssignedIDs  map[int64]int64 `json:"assigned_ids,omitempty"`
	Partial      []outcomeView   `json:"partial"`
	Failed       []outcomeView   `json:"failed"`
}

type syncView struct {
	CardID   int64    `json:"card_id"`
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func toSyncView(r engine.SyncResult) syncView {
	v := syncView{
		CardID:   r.CardID,
		Inserted: r.Inserted,
		Updated:  r.Updated,
		Skipped:  r.Skipped,
		Failed:   r.Failed,
		Error:    errString(r.Err),
	}
	for _, err := range r.Errors {
		v.Errors = append(v.Errors, err.Error())
	}
	return v
}

type pushRowView struct {
	Annotation  annotationView  `json:"annotation"`
	AssignedIDs map[int64]int64 `json:"assigned_ids"`
	Failed      []outcomeView   `json:"failed,omitempty"`
}

type pushView struct {
	OperationID string        `json:"operation_id"`
	Pushed      int           `json:"pushed"`
	Failed      int           `json:"failed"`
	Rows        []pushRowView `json:"rows"`
}

type deleteView struct {
	OperationID    string `json:"operation_id"`
	WarehouseRows  int64  `json:"warehouse_rows"`
	WarehouseError string `json:"warehouse_error,omitempty"`
	CardAttempted  bool   `json:"card_attempted"`
	CardError      string `json:"card_error,omitempty"`
}

type journalView struct {
	OperationID  string    `json:"operation_id"`
	Kind         string    `json:"kind"`
	CardID       *int64    `json:"card_id,omitempty"`
	AnnotationID *int64    `json:"annotation_id,omitempty"`
	Phase        string    `json:"phase"`
	Status       string    `json:"status"`
	Message      string    `json:"message,omitempty"`
	At           time.Time `json:"at"`
}

func toJournalViews(es []journal.Entry) []journalView {
	out := make([]journalView, 0, len(es))
	for _, e := range es {
		out = append(out, journalView{
			OperationID:  e.OperationID,
			Kind:         string(e.Kind),
			CardID:       e.CardID,
			AnnotationID: e.AnnotationID,
			Phase:        e.Phase,
			Status:       string(e.Status),
			Message:      e.Message,
			At:           e.At,
		})
	}
	return out
}
