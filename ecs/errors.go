package ecs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	gfn "github.com/panyam/goutils/fn"
)

var (
	ErrNotSpawnable       = errors.New("not a component or resource")
	ErrDuplicateComponent = errors.New("duplicate component")
	ErrNoEntity           = errors.New("no entity")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrUnknownSystem      = errors.New("unknown system")
)

// InvocationError reports the failure of one system invocation.
type InvocationError struct {
	System   string
	Entities []uuid.UUID // One per entity filter, in filter order
	Tick     int         // 0 for init systems
	Err      error
}

func (e *InvocationError) Error() string {
	ids := strings.Join(gfn.Map(e.Entities, uuid.UUID.String), ", ")
	switch len(e.Entities) {
	case 0:
		return fmt.Sprintf("system %s: %v", e.System, e.Err)
	case 1:
		return fmt.Sprintf("system %s (entity %s): %v", e.System, ids, e.Err)
	}
	return fmt.Sprintf("system %s (entities %s): %v", e.System, ids, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
