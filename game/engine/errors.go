package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an operation was rejected
type ErrorKind uint8

const (
	ReasonNone ErrorKind = iota
	InvalidSource
	InvalidDestination
	IllegalCardPlacement
	InsufficientFaceUpRun
	EmptyPile
	NothingToUndo
	NothingToRedo
	AutocompletePreconditionFailed
)

var (
	ErrInvalidSource                  = errors.New("invalid source")
	ErrInvalidDestination             = errors.New("invalid destination")
	ErrIllegalCardPlacement           = errors.New("illegal card placement")
	ErrInsufficientFaceUpRun          = errors.New("not enough face-up cards for the requested run")
	ErrNothingToUndo                  = errors.New("nothing to undo")
	ErrNothingToRedo                  = errors.New("nothing to redo")
	ErrAutocompletePreconditionFailed = errors.New("autocomplete needs an empty waste and a fully revealed tableau")
)

var kindNames = map[ErrorKind]string{
	ReasonNone:                     "",
	InvalidSource:                  "invalid_source",
	InvalidDestination:             "invalid_destination",
	IllegalCardPlacement:           "illegal_card_placement",
	InsufficientFaceUpRun:          "insufficient_face_up_run",
	EmptyPile:                      "empty_pile",
	NothingToUndo:                  "nothing_to_undo",
	NothingToRedo:                  "nothing_to_redo",
	AutocompletePreconditionFailed: "autocomplete_precondition_failed",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error_kind(%d)", uint8(k))
}

// MarshalText encodes the kind as its snake_case code
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a snake_case code
func (k *ErrorKind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", text)
}

// Err returns the sentinel error for the kind, or nil for ReasonNone
func (k ErrorKind) Err() error {
	switch k {
	case ReasonNone:
		return nil
	case InvalidSource:
		return ErrInvalidSource
	case InvalidDestination:
		return ErrInvalidDestination
	case IllegalCardPlacement:
		return ErrIllegalCardPlacement
	case InsufficientFaceUpRun:
		return ErrInsufficientFaceUpRun
	case EmptyPile:
		return ErrEmptyPile
	case NothingToUndo:
		return ErrNothingToUndo
	case NothingToRedo:
		return ErrNothingToRedo
	case AutocompletePreconditionFailed:
		return ErrAutocompletePreconditionFailed
	}
	return fmt.Errorf("unknown rejection: %s", k)
}

// MoveOutcome reports whether an operation changed the game
type MoveOutcome struct {
	Applied bool      `json:"applied"`
	Reason  ErrorKind `json:"reason,omitempty"`
}

// Err returns nil when the outcome was applied, otherwise the reason's sentinel
func (o MoveOutcome) Err() error {
	if o.Applied {
		return nil
	}
	return o.Reason.Err()
}

func applied() MoveOutcome {
	return MoveOutcome{Applied: true}
}

func rejected(kind ErrorKind) MoveOutcome {
	return MoveOutcome{Reason: kind}
}
