package errors

import (
	"fmt"
)

var (
	ErrInvalidConfig      = fmt.Errorf("agentloop: invalid config")
	ErrNotFound           = fmt.Errorf("agentloop: not found")
	ErrToolNotFound       = fmt.Errorf("agentloop: tool not found")
	ErrInvalidParams      = fmt.Errorf("agentloop: invalid params")
	ErrServiceUnavailable = fmt.Errorf("agentloop: service unavailable")
	ErrInternal           = fmt.Errorf("agentloop: internal error")
)
