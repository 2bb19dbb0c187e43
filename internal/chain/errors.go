package chain

import (
	"errors"
	"fmt"
)

// Kind classifies client failures so callers can tell transient
// transport trouble from semantic rejections by the node.
type Kind string

const (
	// KindNetwork covers connect failures and 5xx responses; transient.
	KindNetwork Kind = "network"
	// KindTimeout is a bounded-wait expiry; transient.
	KindTimeout Kind = "timeout"
	// KindNotFound is a missing account/transaction/block.
	KindNotFound Kind = "not_found"
	// KindRemote is a semantic rejection (insufficient funds, bad nonce,
	// invalid signature); never retried.
	KindRemote Kind = "remote"
	// KindBadResponse is an unparseable or shape-violating node reply.
	KindBadResponse Kind = "bad_response"
)

// Error is the normalized failure type for all client operations.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether retrying could plausibly help.
func IsTransient(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == KindNetwork || ce.Kind == KindTimeout
	}
	return false
}

// ErrKind extracts the kind from a client error, or "" for foreign errors.
func ErrKind(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
