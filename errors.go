package spritekit

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedBytecode marks corrupt command data: an unknown opcode, a
	// truncated operand, or a value outside its documented range.
	ErrMalformedBytecode = errors.New("malformed bytecode")

	// ErrDanglingReference marks a SetImage, SetPalette or SetParent index that
	// does not resolve against the owning sprite or animation.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrMissingAsset marks a raster or palette file that could not be loaded.
	// It is recovered locally and only surfaces as a log warning.
	ErrMissingAsset = errors.New("missing asset")

	// ErrPackingDegenerate marks a zero-sized image handed to the atlas packer.
	ErrPackingDegenerate = errors.New("degenerate image")

	// ErrNoDelay is returned by Animator.Tick when the program cycles without
	// ever reaching a Delay.
	ErrNoDelay = errors.New("command cycle without delay")
)

// MalformedBytecodeError describes where and why a sequence failed to decode.
type MalformedBytecodeError struct {
	Offset int    // word offset of the offending command
	Word   uint16 // the command word itself
	Reason string
}

func (e *MalformedBytecodeError) Error() string {
	return fmt.Sprintf("malformed bytecode at %d (%04X): %s", e.Offset, e.Word, e.Reason)
}

func (e *MalformedBytecodeError) Unwrap() error { return ErrMalformedBytecode }

func malformed(offset int, word uint16, format string, args ...any) error {
	return &MalformedBytecodeError{Offset: offset, Word: word, Reason: fmt.Sprintf(format, args...)}
}

// DanglingReferenceError describes an index that does not resolve when a
// sprite is bound.
type DanglingReferenceError struct {
	Animation int
	Component int
	Offset    int
	Op        Opcode
	Index     int
	Limit     int // number of valid targets
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference in animation %02X component %X at %d: %s index %d out of %d",
		e.Animation, e.Component, e.Offset, e.Op, e.Index, e.Limit)
}

func (e *DanglingReferenceError) Unwrap() error { return ErrDanglingReference }
