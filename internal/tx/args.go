package tx

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// ArgKind tags the supported argument variants. Keeping the set closed
// makes the encoder total: every variant has exactly one byte rendering.
type ArgKind int

const (
	// ArgText is a free-text string (also used for decimal amounts).
	ArgText ArgKind = iota
	// ArgNumber is a JSON number, rendered as its decimal string.
	ArgNumber
	// ArgAddress is an {"address": ...} wrapper; base58, 48 bytes.
	ArgAddress
	// ArgBase58 is a {"b58": ...} wrapper; arbitrary base58 bytes.
	ArgBase58
	// ArgHex is a {"hex": ...} wrapper.
	ArgHex
	// ArgUtf8 is a {"utf8": ...} wrapper; explicit text bytes.
	ArgUtf8
)

// Arg is one element of a transaction's ordered argument list.
// Value holds the surface form (text, decimal digits, base58 or hex).
type Arg struct {
	Kind  ArgKind
	Value string
}

func (a *Arg) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Kind, a.Value = ArgText, s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		a.Kind, a.Value = ArgNumber, n.String()
		return nil
	}

	var wrapper map[string]string
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("argument must be a string, number or tagged object")
	}
	if len(wrapper) != 1 {
		return fmt.Errorf("tagged argument must have exactly one key")
	}
	for tag, value := range wrapper {
		switch tag {
		case "address":
			a.Kind = ArgAddress
		case "b58":
			a.Kind = ArgBase58
		case "hex":
			a.Kind = ArgHex
		case "utf8":
			a.Kind = ArgUtf8
		default:
			return fmt.Errorf("unknown argument tag %q", tag)
		}
		a.Value = value
	}
	return nil
}

func (a Arg) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ArgText:
		return json.Marshal(a.Value)
	case ArgNumber:
		return []byte(a.Value), nil
	case ArgAddress:
		return json.Marshal(map[string]string{"address": a.Value})
	case ArgBase58:
		return json.Marshal(map[string]string{"b58": a.Value})
	case ArgHex:
		return json.Marshal(map[string]string{"hex": a.Value})
	case ArgUtf8:
		return json.Marshal(map[string]string{"utf8": a.Value})
	}
	return nil, fmt.Errorf("unknown argument kind %d", a.Kind)
}

// Bytes renders the argument into the byte form the encoder consumes.
func (a Arg) Bytes() ([]byte, error) {
	switch a.Kind {
	case ArgText, ArgNumber, ArgUtf8:
		return []byte(a.Value), nil
	case ArgAddress:
		return DecodeAddress(a.Value)
	case ArgBase58:
		b := base58.Decode(a.Value)
		if len(b) == 0 {
			return nil, fmt.Errorf("invalid base58 argument %q", a.Value)
		}
		return b, nil
	case ArgHex:
		b, err := hex.DecodeString(strings.TrimPrefix(a.Value, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid hex argument %q", a.Value)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown argument kind %d", a.Kind)
}

// ArgBytes converts an ordered argument list, reporting the position of
// the first invalid element.
func ArgBytes(args []Arg) ([][]byte, error) {
	out := make([][]byte, len(args))
	for i, a := range args {
		b, err := a.Bytes()
		if err != nil {
			return nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}
