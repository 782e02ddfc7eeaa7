package warehouse

import (
	"fmt"

	"github.com/dmitrijs2005/annokeeper/internal/common"
)

// WarehouseError wraps any failure talking to the warehouse. It matches
// common.ErrWarehouse and unwraps to the driver error.
type WarehouseError struct {
	Op  string
	Err error
}

func (e *WarehouseError) Error() string {
	return fmt.Sprintf("warehouse %s: %v", e.Op, e.Err)
}

func (e *WarehouseError) Unwrap() error {
	return e.Err
}

func (e *WarehouseError) Is(target error) bool {
	return target == common.ErrWarehouse
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &WarehouseError{Op: op, Err: err}
}
