// Package tx implements the canonical Amadeus transaction encoding, the
// signing-hash derivation, and BLS12-381 signature handling.
//
// The encoding is the load-bearing piece: the same logical fields must
// always produce the same bytes, because the external signer and this
// server's verifier both re-derive the blob independently.
package tx

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Action is the single contract call carried by a transaction.
// Field order in the encoding is fixed by this schema.
type Action struct {
	Args           [][]byte
	Contract       string
	Function       string
	Op             string
	AttachedSymbol []byte
	AttachedAmount []byte
}

// Tx is the unsigned transaction wire form.
type Tx struct {
	Action Action
	Nonce  int64
	Signer []byte
}

// Packed is the signed wire form submitted to the node.
type Packed struct {
	Hash      []byte
	Signature []byte
	Tx        Tx
}

const (
	maxFieldLen  = 1 << 20
	maxArgCount  = 64
	flagSymbol   = 1 << 0
	flagAmount   = 1 << 1
)

// Encode serializes t deterministically. Fields are written in schema
// order; identical logical input always yields identical bytes.
func Encode(t *Tx) []byte {
	var buf bytes.Buffer
	encodeAction(&buf, &t.Action)
	writeVarint(&buf, t.Nonce)
	writeBytes(&buf, t.Signer)
	return buf.Bytes()
}

// Decode parses a canonical transaction blob. Trailing bytes are an
// error, which makes Decode(Encode(t)) the canonicality check: a blob
// that decodes and re-encodes to itself is canonical.
func Decode(blob []byte) (*Tx, error) {
	r := bytes.NewReader(blob)
	t, err := decodeTx(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("trailing %d bytes after transaction", r.Len())
	}
	return t, nil
}

// EncodePacked serializes a signed transaction for submission.
func EncodePacked(p *Packed) []byte {
	var buf bytes.Buffer
	writeBytes(&buf, p.Hash)
	writeBytes(&buf, p.Signature)
	encodeAction(&buf, &p.Tx.Action)
	writeVarint(&buf, p.Tx.Nonce)
	writeBytes(&buf, p.Tx.Signer)
	return buf.Bytes()
}

// DecodePacked parses a signed transaction wire blob.
func DecodePacked(blob []byte) (*Packed, error) {
	r := bytes.NewReader(blob)
	hash, err := readBytes(r)
	if err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}
	sig, err := readBytes(r)
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	t, err := decodeTx(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("trailing %d bytes after signed transaction", r.Len())
	}
	return &Packed{Hash: hash, Signature: sig, Tx: *t}, nil
}

func encodeAction(buf *bytes.Buffer, a *Action) {
	writeUvarint(buf, uint64(len(a.Args)))
	for _, arg := range a.Args {
		writeBytes(buf, arg)
	}
	writeString(buf, a.Contract)
	writeString(buf, a.Function)
	writeString(buf, a.Op)

	var flags byte
	if a.AttachedSymbol != nil {
		flags |= flagSymbol
	}
	if a.AttachedAmount != nil {
		flags |= flagAmount
	}
	buf.WriteByte(flags)
	if a.AttachedSymbol != nil {
		writeBytes(buf, a.AttachedSymbol)
	}
	if a.AttachedAmount != nil {
		writeBytes(buf, a.AttachedAmount)
	}
}

func decodeTx(r *bytes.Reader) (*Tx, error) {
	a, err := decodeAction(r)
	if err != nil {
		return nil, err
	}
	nonce, err := binary.ReadVarint(r)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	signer, err := readBytes(r)
	if err != nil {
		return nil, fmt.Errorf("signer: %w", err)
	}
	return &Tx{Action: *a, Nonce: nonce, Signer: signer}, nil
}

func decodeAction(r *bytes.Reader) (*Action, error) {
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("arg count: %w", err)
	}
	if count > maxArgCount {
		return nil, fmt.Errorf("too many args: %d", count)
	}
	args := make([][]byte, count)
	for i := range args {
		if args[i], err = readBytes(r); err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
	}

	a := &Action{Args: args}
	if a.Contract, err = readString(r); err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	if a.Function, err = readString(r); err != nil {
		return nil, fmt.Errorf("function: %w", err)
	}
	if a.Op, err = readString(r); err != nil {
		return nil, fmt.Errorf("op: %w", err)
	}

	flags, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if flags&^(flagSymbol|flagAmount) != 0 {
		return nil, fmt.Errorf("unknown flags 0x%02x", flags)
	}
	if flags&flagSymbol != 0 {
		if a.AttachedSymbol, err = readBytes(r); err != nil {
			return nil, fmt.Errorf("attached symbol: %w", err)
		}
	}
	if flags&flagAmount != 0 {
		if a.AttachedAmount, err = readBytes(r); err != nil {
			return nil, fmt.Errorf("attached amount: %w", err)
		}
	}
	return a, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeVarint(buf *bytes.Buffer, v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n > maxFieldLen {
		return nil, fmt.Errorf("field of %d bytes exceeds limit", n)
	}
	if n > uint64(r.Len()) {
		return nil, fmt.Errorf("field of %d bytes exceeds remaining input", n)
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func readString(r *bytes.Reader) (string, error) {
	b, err := readBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
