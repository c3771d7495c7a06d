package spritekit

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Opcode is the high nibble of a command word.
type Opcode uint8

const (
	OpDelay       Opcode = iota // hold the pose for Value ticks
	OpSetImage                  // select raster Value, or NoImage
	OpGoto                      // jump back to word offset Value
	OpSetPosition               // Args[0:3] offset, Value absolute/relative flag
	OpSetAngle                  // Value, Args[0], Args[1] are the three angles
	OpSetScale                  // Value is a ScaleMode, Args[0] the percent
	OpSetPalette                // select live palette Value
	OpLoop                      // jump back to Value, Args[0] times
	OpSetParent                 // Value packs kind<<8 | component index
	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	"Delay", "SetImage", "Goto", "SetPosition", "SetAngle",
	"SetScale", "SetPalette", "Loop", "SetParent",
}

// operandCounts lists the operand words that follow each command word.
var operandCounts = [opcodeCount]int{0, 0, 0, 3, 2, 1, 0, 1, 0}

func (op Opcode) String() string {
	if op < opcodeCount {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%X)", uint8(op))
}

// Operands returns the number of operand words following the command word.
func (op Opcode) Operands() int {
	if op < opcodeCount {
		return operandCounts[op]
	}
	return 0
}

// IsJump reports whether op transfers control backward.
func (op Opcode) IsJump() bool {
	return op == OpGoto || op == OpLoop
}

const (
	// NoImage is the SetImage immediate that hides the component (word 1FFF).
	NoImage = -1
	// InheritPalette is the pose palette before any SetPalette runs.
	InheritPalette = -1

	MaxDelay     = 260 // longest hold in ticks
	MaxLoopCount = 24
	MaxAngle     = 180

	minImmediate = -2048
	maxImmediate = 2047

	// parentTailWords is how many words may follow a ParentSpecial SetParent.
	parentTailWords = 3
)

// RawSequence is the persisted word stream of one component.
type RawSequence []uint16

// Clone returns an independent copy of s.
func (s RawSequence) Clone() RawSequence {
	if s == nil {
		return nil
	}
	out := make(RawSequence, len(s))
	copy(out, s)
	return out
}

// String formats the words as space-separated four digit hex.
func (s RawSequence) String() string {
	var b strings.Builder
	for i, w := range s {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%04X", w)
	}
	return b.String()
}

// ParseSequenceHex parses words written as hex, separated by spaces, commas
// or newlines.
func ParseSequenceHex(text string) (RawSequence, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t' || r == '\r'
	})
	seq := make(RawSequence, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
		v, err := strconv.ParseUint(f, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("spritekit: bad command word %q: %w", f, err)
		}
		seq = append(seq, uint16(v))
	}
	return seq, nil
}

// ReadSequence reads n big-endian words from r.
func ReadSequence(r io.Reader, n int) (RawSequence, error) {
	seq := make(RawSequence, n)
	if err := binary.Read(r, binary.BigEndian, []uint16(seq)); err != nil {
		return nil, fmt.Errorf("spritekit: read sequence: %w", err)
	}
	return seq, nil
}

// WriteSequence writes s to w as big-endian words.
func WriteSequence(w io.Writer, s RawSequence) error {
	return binary.Write(w, binary.BigEndian, []uint16(s))
}

// Command is one decoded instruction. Value holds the sign-extended 12-bit
// immediate and Args the operand words, of which Op.Operands() are used.
type Command struct {
	Op    Opcode
	Value int
	Args  [3]int
}

// Instruction is a command placed at a word offset in its sequence.
type Instruction struct {
	Offset int
	Command
}

func Delay(ticks int) Command        { return Command{Op: OpDelay, Value: ticks} }
func SetImage(raster int) Command    { return Command{Op: OpSetImage, Value: raster} }
func Goto(target int) Command        { return Command{Op: OpGoto, Value: target} }
func SetPalette(palette int) Command { return Command{Op: OpSetPalette, Value: palette} }

// SetPosition sets the component offset. The relative flag is carried through
// unchanged; playback treats both forms as a direct assignment.
func SetPosition(relative bool, x, y, z int) Command {
	c := Command{Op: OpSetPosition, Args: [3]int{x, y, z}}
	if relative {
		c.Value = 1
	}
	return c
}

// SetAngle sets all three rotation angles in degrees.
func SetAngle(x, y, z int) Command {
	return Command{Op: OpSetAngle, Value: x, Args: [3]int{y, z}}
}

// SetScale writes percent to the axes selected by mode.
func SetScale(mode ScaleMode, percent int) Command {
	return Command{Op: OpSetScale, Value: int(mode), Args: [3]int{percent}}
}

// Loop jumps back to target count times, then falls through.
func Loop(target, count int) Command {
	return Command{Op: OpLoop, Value: target, Args: [3]int{count}}
}

// SetParent links the component to a parent described by kind and index.
func SetParent(kind ParentKind, index int) Command {
	return Command{Op: OpSetParent, Value: int(kind)<<8 | index&0xFF}
}

// Size is the number of words the command occupies.
func (c Command) Size() int {
	return 1 + c.Op.Operands()
}

// Target returns the jump destination of a Goto or Loop.
func (c Command) Target() int { return c.Value }

// Count returns the iteration count of a Loop.
func (c Command) Count() int { return c.Args[0] }

// Parent unpacks a SetParent immediate.
func (c Command) Parent() ParentLink {
	return ParentLink{Kind: ParentKind((c.Value >> 8) & 0xF), Index: c.Value & 0xFF}
}

func (c Command) String() string {
	switch c.Op {
	case OpSetPosition:
		return fmt.Sprintf("SetPosition(%d, %d, %d, %d)", c.Value, c.Args[0], c.Args[1], c.Args[2])
	case OpSetAngle:
		return fmt.Sprintf("SetAngle(%d, %d, %d)", c.Value, c.Args[0], c.Args[1])
	case OpSetScale:
		return fmt.Sprintf("SetScale(%d, %d)", c.Value, c.Args[0])
	case OpLoop:
		return fmt.Sprintf("Loop(%d, %d)", c.Value, c.Args[0])
	case OpSetParent:
		p := c.Parent()
		return fmt.Sprintf("SetParent(%s, %d)", p.Kind, p.Index)
	default:
		return fmt.Sprintf("%s(%d)", c.Op, c.Value)
	}
}

func signExtend12(w uint16) int {
	return int(int16(w<<4) >> 4)
}

// validate checks c as if placed at word offset pos in a sequence of total
// words. It returns an empty string when the command is in range.
func (c Command) validate(pos, total int) string {
	if c.Op >= opcodeCount {
		return fmt.Sprintf("unknown opcode %X", uint8(c.Op))
	}
	if c.Value < minImmediate || c.Value > maxImmediate {
		return fmt.Sprintf("immediate %d does not fit 12 bits", c.Value)
	}
	for i := 0; i < c.Op.Operands(); i++ {
		if c.Args[i] < -32768 || c.Args[i] > 32767 {
			return fmt.Sprintf("operand %d does not fit 16 bits", c.Args[i])
		}
	}
	switch c.Op {
	case OpDelay:
		if c.Value < 1 || c.Value > MaxDelay {
			return fmt.Sprintf("delay %d outside 1..%d", c.Value, MaxDelay)
		}
	case OpSetImage:
		if c.Value < NoImage {
			return fmt.Sprintf("image index %d", c.Value)
		}
	case OpGoto:
		if c.Value < 0 || c.Value >= pos {
			return fmt.Sprintf("goto target %d is not behind %d", c.Value, pos)
		}
	case OpSetPosition:
		if c.Value != 0 && c.Value != 1 {
			return fmt.Sprintf("position flag %d", c.Value)
		}
	case OpSetAngle:
		for _, a := range [3]int{c.Value, c.Args[0], c.Args[1]} {
			if a < -MaxAngle || a > MaxAngle {
				return fmt.Sprintf("angle %d outside -%d..%d", a, MaxAngle, MaxAngle)
			}
		}
	case OpSetScale:
		if c.Value < int(ScaleUniform) || c.Value > int(ScaleY) {
			return fmt.Sprintf("scale mode %d", c.Value)
		}
	case OpSetPalette:
		if c.Value < 0 {
			return fmt.Sprintf("palette index %d", c.Value)
		}
	case OpLoop:
		if c.Value < 0 || c.Value >= pos {
			return fmt.Sprintf("loop target %d is not behind %d", c.Value, pos)
		}
		if c.Args[0] < 0 || c.Args[0] > MaxLoopCount {
			return fmt.Sprintf("loop count %d outside 0..%d", c.Args[0], MaxLoopCount)
		}
	case OpSetParent:
		if c.Value < 0 {
			return fmt.Sprintf("parent descriptor %d", c.Value)
		}
		p := c.Parent()
		switch p.Kind {
		case ParentRoot:
			if p.Index != 0 {
				return fmt.Sprintf("root parent with index %d", p.Index)
			}
		case ParentComponent:
			if pos != 0 {
				return "component parent must be the first command"
			}
		case ParentSpecial:
			if p.Index != 1 && p.Index != 2 {
				return fmt.Sprintf("special parent index %d", p.Index)
			}
			if total-(pos+1) > parentTailWords {
				return "special parent must be near the end of the sequence"
			}
		default:
			return fmt.Sprintf("parent kind %d", p.Kind)
		}
	}
	return ""
}

// DecodeCommand decodes the command whose word sits at words[pos], reading
// its operands from the words that follow.
func DecodeCommand(words RawSequence, pos int) (Command, error) {
	if pos < 0 || pos >= len(words) {
		return Command{}, malformed(pos, 0, "offset outside sequence of %d words", len(words))
	}
	w := words[pos]
	op := Opcode(w >> 12)
	if op >= opcodeCount {
		return Command{}, malformed(pos, w, "unknown opcode %X", uint8(op))
	}
	n := op.Operands()
	if pos+1+n > len(words) {
		return Command{}, malformed(pos, w, "%s needs %d operand words", op, n)
	}
	c := Command{Op: op, Value: signExtend12(w)}
	for i := 0; i < n; i++ {
		c.Args[i] = int(int16(words[pos+1+i]))
	}
	if reason := c.validate(pos, len(words)); reason != "" {
		return Command{}, malformed(pos, w, "%s", reason)
	}
	return c, nil
}

// DecodeSequence decodes every command in seq. Jump targets must land on a
// command boundary.
func DecodeSequence(seq RawSequence) ([]Instruction, error) {
	var prog []Instruction
	starts := make(map[int]bool, len(seq))
	for pos := 0; pos < len(seq); {
		c, err := DecodeCommand(seq, pos)
		if err != nil {
			return nil, err
		}
		starts[pos] = true
		prog = append(prog, Instruction{Offset: pos, Command: c})
		pos += c.Size()
	}
	for _, ins := range prog {
		if ins.Op.IsJump() && !starts[ins.Target()] {
			return nil, malformed(ins.Offset, seq[ins.Offset], "%s target %d splits a command", ins.Op, ins.Target())
		}
	}
	return prog, nil
}

// EncodeCommand appends the words of c, placed at word offset pos of a
// sequence of total words, to dst. Nothing is appended when c is invalid.
func EncodeCommand(dst RawSequence, c Command, pos, total int) (RawSequence, error) {
	if reason := c.validate(pos, total); reason != "" {
		return dst, fmt.Errorf("spritekit: cannot encode %s at %d: %s", c, pos, reason)
	}
	dst = append(dst, uint16(c.Op)<<12|uint16(c.Value)&0x0FFF)
	for i := 0; i < c.Op.Operands(); i++ {
		dst = append(dst, uint16(int16(c.Args[i])))
	}
	return dst, nil
}

// EncodeSequence is the inverse of DecodeSequence. It validates every command
// before emitting anything.
func EncodeSequence(cmds []Command) (RawSequence, error) {
	total := 0
	starts := make(map[int]bool, len(cmds))
	for _, c := range cmds {
		starts[total] = true
		total += c.Size()
	}
	pos := 0
	for _, c := range cmds {
		if reason := c.validate(pos, total); reason != "" {
			return nil, fmt.Errorf("spritekit: cannot encode %s at %d: %s", c, pos, reason)
		}
		if c.Op.IsJump() && !starts[c.Target()] {
			return nil, fmt.Errorf("spritekit: cannot encode %s at %d: target splits a command", c, pos)
		}
		pos += c.Size()
	}
	seq := make(RawSequence, 0, total)
	pos = 0
	for _, c := range cmds {
		var err error
		if seq, err = EncodeCommand(seq, c, pos, total); err != nil {
			return nil, err
		}
		pos += c.Size()
	}
	return seq, nil
}

// Commands strips offsets from a decoded program.
func Commands(prog []Instruction) []Command {
	out := make([]Command, len(prog))
	for i, ins := range prog {
		out[i] = ins.Command
	}
	return out
}
