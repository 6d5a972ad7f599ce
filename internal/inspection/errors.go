package inspection

import (
	"fmt"

	"condish/internal/services"
)

var (
	ErrRoomNotFound    = fmt.Errorf("room not found: %w", services.ErrNotFound)
	ErrFindingNotFound = fmt.Errorf("finding not found: %w", services.ErrNotFound)
	ErrIndexOutOfRange = fmt.Errorf("index out of range: %w", services.ErrValidation)
	ErrInvalidRooms    = fmt.Errorf("invalid room list: %w", services.ErrValidation)
	ErrInvalidDeposit  = fmt.Errorf("invalid deposit: %w", services.ErrValidation)
	ErrInvalidMode     = fmt.Errorf("invalid mode: %w", services.ErrValidation)
	ErrInvalidImage    = fmt.Errorf("invalid image: %w", services.ErrValidation)
	ErrNoRooms         = fmt.Errorf("no rooms loaded: %w", services.ErrConflict)
	ErrNotInProgress   = fmt.Errorf("inspection not in progress: %w", services.ErrConflict)
	ErrAlreadyStarted  = fmt.Errorf("inspection already started: %w", services.ErrConflict)
	ErrWrongMode       = fmt.Errorf("operation not allowed in current mode: %w", services.ErrConflict)
	// ErrStaleTicket reports a collaborator result that arrived after the
	// session moved on. The result was discarded.
	ErrStaleTicket = fmt.Errorf("stale collaborator result: %w", services.ErrConflict)
)
