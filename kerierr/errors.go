// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package kerierr defines the error taxonomy shared by every layer of the
// KERI core: prefix codec, serializer, event semantics, and processor.
package kerierr

import "fmt"

// ErrorCode identifies a class of failure raised while parsing, validating,
// or committing a key event.
type ErrorCode int

const (
	// ErrSemantic covers structural or semantic violations: bad prefix
	// binding, cuts referencing absent witnesses, invalid key indices,
	// and any rule violation that is not one of the more specific codes
	// below.
	ErrSemantic ErrorCode = iota

	// ErrEventOutOfOrder means sn exceeds state.sn+1. The event is
	// escrowed by the caller before this error is returned.
	ErrEventOutOfOrder

	// ErrEventDuplicate means sn <= state.sn and the event is already
	// logged. Terminal; nothing is escrowed.
	ErrEventDuplicate

	// ErrNotEnoughSigs means fewer valid signatures were attached than
	// the active threshold requires. The event is escrowed by the
	// caller before this error is returned.
	ErrNotEnoughSigs

	// ErrCrypto means an underlying signature or digest primitive
	// failed or rejected its input.
	ErrCrypto

	// ErrSerialization means JSON/CBOR decoding failed, or the
	// version-string length field did not match the encoded length.
	ErrSerialization
)

// errorCodeStrings maps each ErrorCode to a human-readable name, following
// the map-plus-String() idiom used for service flags and chain errors
// throughout the corpus this module is built from.
var errorCodeStrings = map[ErrorCode]string{
	ErrSemantic:        "ErrSemantic",
	ErrEventOutOfOrder: "ErrEventOutOfOrder",
	ErrEventDuplicate:  "ErrEventDuplicate",
	ErrNotEnoughSigs:   "ErrNotEnoughSigs",
	ErrCrypto:          "ErrCrypto",
	ErrSerialization:   "ErrSerialization",
}

// String returns the ErrorCode in human-readable form.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// KERIError identifies a rule violation encountered while processing a key
// event message. It implements the error interface.
type KERIError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface and prints a human-readable message.
func (e KERIError) Error() string {
	return e.Description
}

// Is reports whether target is a KERIError carrying the same ErrorCode, so
// errors.Is(err, kerierr.KERIError{ErrorCode: kerierr.ErrEventDuplicate})
// matches any KERIError of that code whatever its Description.
func (e KERIError) Is(target error) bool {
	other, ok := target.(KERIError)
	if !ok {
		return false
	}
	return e.ErrorCode == other.ErrorCode
}

// keriError creates a KERIError, mirroring the ruleError(code, desc)
// constructor idiom used throughout the teacher's chain-validation rules.
func keriError(c ErrorCode, desc string) KERIError {
	return KERIError{ErrorCode: c, Description: desc}
}

// Semantic builds an ErrSemantic KERIError with the given description.
func Semantic(format string, args ...interface{}) KERIError {
	return keriError(ErrSemantic, fmt.Sprintf(format, args...))
}

// OutOfOrder builds an ErrEventOutOfOrder KERIError.
func OutOfOrder(format string, args ...interface{}) KERIError {
	return keriError(ErrEventOutOfOrder, fmt.Sprintf(format, args...))
}

// Duplicate builds an ErrEventDuplicate KERIError.
func Duplicate(format string, args ...interface{}) KERIError {
	return keriError(ErrEventDuplicate, fmt.Sprintf(format, args...))
}

// NotEnoughSigs builds an ErrNotEnoughSigs KERIError.
func NotEnoughSigs(format string, args ...interface{}) KERIError {
	return keriError(ErrNotEnoughSigs, fmt.Sprintf(format, args...))
}

// Crypto builds an ErrCrypto KERIError.
func Crypto(format string, args ...interface{}) KERIError {
	return keriError(ErrCrypto, fmt.Sprintf(format, args...))
}

// Serialization builds an ErrSerialization KERIError.
func Serialization(format string, args ...interface{}) KERIError {
	return keriError(ErrSerialization, fmt.Sprintf(format, args...))
}

// Is reports whether err is a KERIError carrying the given code. It is the
// preferred way for callers to branch on error taxonomy, e.g.:
//
//	if kerierr.Is(err, kerierr.ErrEventOutOfOrder) { escrow(...) }
func Is(err error, code ErrorCode) bool {
	ke, ok := err.(KERIError)
	return ok && ke.ErrorCode == code
}
