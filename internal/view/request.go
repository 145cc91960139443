package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/sadopc/calgrid/internal/store"
)

// ErrRefetch marks an Execute error where the mutation itself was stored
// and only reloading the page failed. Repeating the request would apply it
// twice.
var ErrRefetch = errors.New("refetch events")

type RequestKind int

const (
	RequestCreate RequestKind = iota
	RequestUpdate
	RequestDelete
)

func (k RequestKind) String() string {
	switch k {
	case RequestCreate:
		return "create"
	case RequestUpdate:
		return "update"
	case RequestDelete:
		return "delete"
	}
	return "unknown"
}

// Request describes one store mutation produced by a transition.
type Request struct {
	Kind   RequestKind
	ID     int64
	Fields store.EventFields
}

// Execute performs req against es and refetches events matching filter. On
// any failure it returns the error and no events, so the caller keeps its
// current list. A failed refetch after a stored mutation wraps ErrRefetch.
func Execute(ctx context.Context, es store.EventStore, req Request, filter store.EventFilter) ([]store.Event, error) {
	var err error
	switch req.Kind {
	case RequestCreate:
		_, err = es.Create(ctx, req.Fields)
	case RequestUpdate:
		_, err = es.Update(ctx, req.ID, req.Fields)
	case RequestDelete:
		err = es.Delete(ctx, req.ID)
	default:
		err = fmt.Errorf("unknown request kind %d", req.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s event: %w", req.Kind, err)
	}
	events, err := es.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w after %s: %w", ErrRefetch, req.Kind, err)
	}
	return events, nil
}

// Fetch loads the events for the current page.
func Fetch(ctx context.Context, es store.EventStore, filter store.EventFilter) ([]store.Event, error) {
	events, err := es.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	return events, nil
}
