package cardservice

import (
	"fmt"

	"github.com/dmitrijs2005/annokeeper/internal/common"
)

// maxErrorBody bounds how much of a failed response is kept in errors.
const maxErrorBody = 500

// RemoteServiceError reports a non-success status from the card service.
type RemoteServiceError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// Is lets callers match any RemoteServiceError with common.ErrRemoteService.
func (e *RemoteServiceError) Is(target error) bool {
	return target == common.ErrRemoteService
}
