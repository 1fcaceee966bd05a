package explore

import "errors"

// Rejected operations return one of these and leave all state untouched.
// The view layer treats them as silent no-ops.
var (
	ErrBusy               = errors.New("a fetch is already in flight")
	ErrEmptyProblem       = errors.New("problem is empty")
	ErrWrongStage         = errors.New("operation not allowed in the current stage")
	ErrDepthExceeded      = errors.New("maximum exploration depth reached")
	ErrInvalidDrillTarget = errors.New("node does not resolve to a vector of the current result")
	ErrInvalidLevel       = errors.New("breadcrumb level out of range")
	ErrStaleFetch         = errors.New("fetch belongs to a superseded exploration")
	ErrTabsHidden         = errors.New("tabs are not revealed yet")
	ErrUnknownTab         = errors.New("unknown tab")
)
