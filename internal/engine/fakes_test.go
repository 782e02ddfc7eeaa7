package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/carddoc"
	"github.com/dmitrijs2005/annokeeper/internal/cardservice"
	"github.com/dmitrijs2005/annokeeper/internal/common"
	"github.com/dmitrijs2005/annokeeper/internal/models"
	"github.com/dmitrijs2005/annokeeper/internal/warehouse"
)

const testToken = "tok"

type fakeAnnotation struct {
	id       int64
	content  string
	date     string
	color    string
	userID   *int64
	userName string
	created  int64
}

// fakeCards is an in-memory card service. It mints ids on save the way the
// real service does and never returns them in the save response.
type fakeCards struct {
	mu      sync.Mutex
	nextID  int64
	now     time.Time
	titles  map[int64]string
	anns    map[int64][]fakeAnnotation
	fetches map[int64]int
	saves   map[int64]int

	// fetchErr, when set, is consulted before every fetch; call is 1-based.
	fetchErr func(cardID int64, call int) error
	saveErr  map[int64]error
	// mintTwice makes every save add each new annotation twice.
	mintTwice bool
}

func newFakeCards(cards ...int64) *fakeCards {
	f := &fakeCards{
		nextID:  1000,
		now:     time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
		titles:  map[int64]string{},
		anns:    map[int64][]fakeAnnotation{},
		fetches: map[int64]int{},
		saves:   map[int64]int{},
		saveErr: map[int64]error{},
	}
	for _, id := range cards {
		f.titles[id] = fmt.Sprintf("Card %d", id)
		f.anns[id] = nil
	}
	return f
}

func (f *fakeCards) seed(cardID int64, a fakeAnnotation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.anns[cardID] = append(f.anns[cardID], a)
}

func (f *fakeCards) edit(cardID, id int64, fn func(a *fakeAnnotation)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.anns[cardID] {
		if f.anns[cardID][i].id == id {
			fn(&f.anns[cardID][i])
		}
	}
}

func (f *fakeCards) list(cardID int64) []fakeAnnotation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeAnnotation(nil), f.anns[cardID]...)
}

func (f *fakeCards) raw(cardID int64) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches[cardID]++
	if f.fetchErr != nil {
		if err := f.fetchErr(cardID, f.fetches[cardID]); err != nil {
			return nil, err
		}
	}
	title, ok := f.titles[cardID]
	if !ok {
		return nil, &cardservice.RemoteServiceError{Op: "fetch card definition", StatusCode: http.StatusNotFound, Body: "card not found"}
	}

	anns := make([]any, 0, len(f.anns[cardID]))
	for _, a := range f.anns[cardID] {
		m := map[string]any{
			"content":   a.content,
			"color":     a.color,
			"dataPoint": map[string]any{"point1": a.date},
		}
		if a.id != 0 {
			m["id"] = a.id
		}
		if a.userID != nil {
			m["userId"] = *a.userID
		}
		if a.userName != "" {
			m["userName"] = a.userName
		}
		if a.created != 0 {
			m["createdDate"] = a.created
		}
		anns = append(anns, m)
	}
	return map[string]any{
		"definition": map[string]any{
			"title":       title,
			"annotations": anns,
		},
		"columns": []any{map[string]any{"sourceId": "ds-1"}},
	}, nil
}

func (f *fakeCards) FetchDefinition(_ context.Context, cardID int64) (*carddoc.Definition, error) {
	raw, err := f.raw(cardID)
	if err != nil {
		return nil, err
	}
	return &carddoc.Definition{Raw: raw, DataSourceID: "ds-1"}, nil
}

func (f *fakeCards) SaveDefinition(_ context.Context, cardID int64, payload map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saves[cardID]++
	if err := f.saveErr[cardID]; err != nil {
		return nil, err
	}
	if dp, _ := payload["dataProvider"].(map[string]any); dp == nil || dp["dataSourceId"] != "ds-1" {
		return nil, &cardservice.RemoteServiceError{Op: "save card definition", StatusCode: http.StatusBadRequest, Body: "missing data source"}
	}
	def, _ := payload["definition"].(map[string]any)
	delta, _ := def["annotations"].(map[string]any)

	deleted, _ := delta["deleted"].([]any)
	for _, v := range deleted {
		id := toInt64(v)
		kept := f.anns[cardID][:0]
		for _, a := range f.anns[cardID] {
			if a.id != id {
				kept = append(kept, a)
			}
		}
		f.anns[cardID] = kept
	}

	added, _ := delta["new"].([]any)
	for _, v := range added {
		m, _ := v.(map[string]any)
		dp, _ := m["dataPoint"].(map[string]any)
		a := fakeAnnotation{
			content: fmt.Sprint(m["content"]),
			color:   fmt.Sprint(m["color"]),
			date:    fmt.Sprint(dp["point1"]),
			created: f.now.UnixMilli(),
		}
		if uid, ok := m["userId"]; ok {
			id := toInt64(uid)
			a.userID = &id
		}
		if name, ok := m["userName"].(string); ok {
			a.userName = name
		}
		copies := 1
		if f.mintTwice {
			copies = 2
		}
		for i := 0; i < copies; i++ {
			f.nextID++
			a.id = f.nextID
			f.anns[cardID] = append(f.anns[cardID], a)
		}
	}
	return nil, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		i, _ := strconv.ParseInt(fmt.Sprint(v), 10, 64)
		return i
	}
}

// handler serves the fake over the card service HTTP API.
func (f *fakeCards) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/content/v3/cards/kpi/definition", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		var body struct {
			URN string `json:"urn"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id, _ := strconv.ParseInt(body.URN, 10, 64)
		raw, err := f.raw(id)
		var rse *cardservice.RemoteServiceError
		if errors.As(err, &rse) {
			http.Error(w, rse.Body, rse.StatusCode)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", common.JSONContentType)
		_ = json.NewEncoder(w).Encode(raw)
	})
	mux.HandleFunc("PUT /api/content/v3/cards/kpi/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		var payload map[string]any
		if err := dec.Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, err := f.SaveDefinition(r.Context(), id, payload); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeCards) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get(common.DeveloperTokenHeaderName) != testToken {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// memStore is an in-memory warehouse with the same filter semantics as the
// SQL implementation.
type memStore struct {
	mu   sync.Mutex
	rows []models.Annotation

	insertErr map[int64]error // keyed by card id, 0 for global rows
	updateErr error
	deleteErr error
	selectErr error
	inserts   int
	updates   int
}

func newMemStore(rows ...models.Annotation) *memStore {
	return &memStore{rows: rows, insertErr: map[int64]error{}}
}

func (s *memStore) Insert(_ context.Context, a models.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var key int64
	if a.CardID != nil {
		key = *a.CardID
	}
	if err := s.insertErr[key]; err != nil {
		return &warehouse.WarehouseError{Op: "insert", Err: err}
	}
	s.inserts++
	s.rows = append(s.rows, a)
	return nil
}

func (s *memStore) Update(_ context.Context, id int64, f warehouse.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return &warehouse.WarehouseError{Op: "update", Err: s.updateErr}
	}
	for i := range s.rows {
		r := &s.rows[i]
		if r.ID == nil || *r.ID != id {
			continue
		}
		r.Content, r.Color, r.EntryDate = f.Content, f.Color, models.Day(f.EntryDate)
		if f.CreatedBy != nil {
			r.CreatedBy = f.CreatedBy
		}
		if f.CreatedAt != nil {
			r.CreatedAt = f.CreatedAt
		}
		s.updates++
		return nil
	}
	return &warehouse.WarehouseError{Op: "update", Err: common.ErrNotFound}
}

func (s *memStore) DeleteByID(_ context.Context, id int64) (int64, error) {
	return s.deleteWhere(func(a models.Annotation) bool { return a.ID != nil && *a.ID == id })
}

func (s *memStore) DeleteByContentAndDate(_ context.Context, content string, day time.Time) (int64, error) {
	return s.deleteWhere(func(a models.Annotation) bool {
		return a.ID == nil && a.Content == content && models.SameDate(a.EntryDate, day)
	})
}

func (s *memStore) deleteWhere(match func(models.Annotation) bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, &warehouse.WarehouseError{Op: "delete", Err: s.deleteErr}
	}
	var n int64
	kept := s.rows[:0]
	for _, a := range s.rows {
		if match(a) {
			n++
			continue
		}
		kept = append(kept, a)
	}
	s.rows = kept
	return n, nil
}

func (s *memStore) Select(_ context.Context, f warehouse.Filter) ([]models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectErr != nil {
		return nil, &warehouse.WarehouseError{Op: "select", Err: s.selectErr}
	}
	var out []models.Annotation
	for _, a := range s.rows {
		if !f.Range.Contains(a.EntryDate) {
			continue
		}
		if f.CardID != nil && (a.CardID == nil || *a.CardID != *f.CardID) {
			continue
		}
		if f.WithIDOnly && a.ID == nil {
			continue
		}
		if f.GlobalOnly && !a.IsGlobal() {
			continue
		}
		if len(f.Colors) > 0 && !containsFold(f.Colors, a.Color) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EntryDate.After(out[j].EntryDate) })
	return out, nil
}

func (s *memStore) forCard(cardID int64) []models.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Annotation
	for _, a := range s.rows {
		if a.CardID != nil && *a.CardID == cardID {
			out = append(out, a)
		}
	}
	return out
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

type fakeArchiver struct {
	mu   sync.Mutex
	keys []int64
	err  error
}

func (a *fakeArchiver) Archive(_ context.Context, cardID int64, _ carddoc.Definition) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, cardID)
	return fmt.Sprintf("cards/%d/snapshot.json", cardID), nil
}

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
