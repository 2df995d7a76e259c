package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownResource is returned when a family is not in the registry.
	ErrUnknownResource = errors.New("resource: unknown resource")
	// ErrUnknownAction is returned when a family has no action with the
	// requested name. No request is issued.
	ErrUnknownAction = errors.New("resource: unknown action")
	// ErrInvalidCatalog wraps configuration problems found while building a
	// registry.
	ErrInvalidCatalog = errors.New("resource: invalid catalog")
	// ErrUnexpectedShape is returned when a payload cannot be shaped into the
	// action's declared arity.
	ErrUnexpectedShape = errors.New("resource: unexpected payload shape")
	// ErrEmptyPayload is returned by Result.Decode when there is nothing to
	// decode.
	ErrEmptyPayload = errors.New("resource: empty payload")
)

func unknownResource(family string) error {
	return fmt.Errorf("%w %q", ErrUnknownResource, family)
}

func unknownAction(family, action string) error {
	return fmt.Errorf("%w %q on %q", ErrUnknownAction, action, family)
}

func invalidCatalog(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCatalog, fmt.Sprintf(format, args...))
}
