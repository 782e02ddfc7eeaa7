// Package journal keeps a local record of every cross-store phase the engine
// runs, so an operator can see which phase of an operation failed.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindAdd    Kind = "add"
	KindDelete Kind = "delete"
	KindPush   Kind = "push"
	KindSync   Kind = "sync"
)

type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Entry is one phase outcome of an operation.
type Entry struct {
	OperationID  string
	Kind         Kind
	CardID       *int64
	AnnotationID *int64
	Phase        string
	Status       Status
	Message      string
	At           time.Time
}

type Repository interface {
	Record(ctx context.Context, e Entry) error
	// Recent returns the newest entries first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	// Failures returns the newest failed entries first.
	Failures(ctx context.Context, limit int) ([]Entry, error)
	// Operation returns the entries of one operation in the order recorded.
	Operation(ctx context.Context, operationID string) ([]Entry, error)
}

// Operation groups the entries of a single engine call.
type Operation struct {
	ID   string
	Kind Kind
}

func NewOperation(kind Kind) Operation {
	return Operation{ID: uuid.NewString(), Kind: kind}
}

// Entry builds a phase outcome. A nil err records success.
func (o Operation) Entry(phase string, cardID, annotationID *int64, err error, at time.Time) Entry {
	e := Entry{
		OperationID:  o.ID,
		Kind:         o.Kind,
		CardID:       cardID,
		AnnotationID: annotationID,
		Phase:        phase,
		Status:       StatusOK,
		At:           at,
	}
	if err != nil {
		e.Status = StatusFailed
		e.Message = err.Error()
	}
	return e
}
