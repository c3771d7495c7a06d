package spritekit

import (
	"fmt"
)

// Pose is the interpreter output for one component at one tick.
type Pose struct {
	Image        int // raster index or NoImage
	Position     Vec3
	PositionFlag int // absolute/relative flag of the last SetPosition
	Rotation     Vec3
	Scale        Vec3 // percent per axis
	Palette      int  // live palette index or InheritPalette
	Parent       ParentLink
	HasParent    bool
}

// IdentityPose is the pose of a freshly reset component.
func IdentityPose() Pose {
	return Pose{
		Image:   NoImage,
		Scale:   Vec3{100, 100, 100},
		Palette: InheritPalette,
	}
}

// apply writes the pose-mutating effect of c. Control flow commands are
// ignored.
func (p *Pose) apply(c Command) {
	switch c.Op {
	case OpSetImage:
		p.Image = c.Value
	case OpSetPosition:
		p.Position = Vec3{c.Args[0], c.Args[1], c.Args[2]}
		p.PositionFlag = c.Value
	case OpSetAngle:
		p.Rotation = Vec3{c.Value, c.Args[0], c.Args[1]}
	case OpSetScale:
		switch ScaleMode(c.Value) {
		case ScaleUniform:
			p.Scale = Vec3{c.Args[0], c.Args[0], c.Args[0]}
		case ScaleX:
			p.Scale.X = c.Args[0]
		case ScaleY:
			p.Scale.Y = c.Args[0]
		}
	case OpSetPalette:
		p.Palette = c.Value
	case OpSetParent:
		p.Parent = c.Parent()
		p.HasParent = true
	}
}

// maxStepsPerTick bounds how many commands one tick may execute before the
// program is declared delay-free.
const maxStepsPerTick = 1 << 16

type loopCounter struct {
	at        int // instruction index of the Loop
	remaining int
}

// Animator plays one component's command sequence. It is not safe for
// concurrent use; tick it from the goroutine that owns rendering.
type Animator struct {
	program []Instruction
	index   map[int]int // word offset -> instruction index

	pc    int
	delay int
	loops []loopCounter
	pose  Pose
}

// NewAnimator decodes seq once and returns an Animator in its reset state.
// Decoding errors are returned as MalformedBytecodeError.
func NewAnimator(seq RawSequence) (*Animator, error) {
	prog, err := DecodeSequence(seq)
	if err != nil {
		return nil, err
	}
	a := &Animator{
		program: prog,
		index:   make(map[int]int, len(prog)),
	}
	for i, ins := range prog {
		a.index[ins.Offset] = i
	}
	a.Reset()
	return a, nil
}

// Reset rewinds the program counter and clears all playback state.
func (a *Animator) Reset() {
	a.pc = 0
	a.delay = 0
	a.loops = a.loops[:0]
	a.pose = IdentityPose()
}

// Pose returns the current pose.
func (a *Animator) Pose() Pose {
	return a.pose
}

// ProgramCounter returns the word offset of the next command to execute.
func (a *Animator) ProgramCounter() int {
	if a.pc >= len(a.program) {
		if len(a.program) == 0 {
			return 0
		}
		last := a.program[len(a.program)-1]
		return last.Offset + last.Size()
	}
	return a.program[a.pc].Offset
}

// DelayRemaining returns the ticks left on the active Delay.
func (a *Animator) DelayRemaining() int {
	return a.delay
}

// Tick advances playback by one frame. A pending delay is counted down first;
// once it expires, commands run until the next Delay. A program that runs off
// its end holds the last pose.
func (a *Animator) Tick() error {
	if a.delay > 0 {
		a.delay--
		if a.delay > 0 {
			return nil
		}
	}
	for steps := 0; a.pc < len(a.program); steps++ {
		if steps >= maxStepsPerTick {
			return fmt.Errorf("spritekit: at offset %d: %w", a.ProgramCounter(), ErrNoDelay)
		}
		if a.step() {
			return nil
		}
	}
	return nil
}

// step executes one instruction and reports whether it yielded.
func (a *Animator) step() bool {
	ins := a.program[a.pc]
	switch ins.Op {
	case OpDelay:
		a.delay = ins.Value
		a.pc++
		return true
	case OpGoto:
		a.pc = a.index[ins.Target()]
	case OpLoop:
		a.loop(ins)
	default:
		a.pose.apply(ins.Command)
		a.pc++
	}
	return false
}

// loop seeds a counter the first time a Loop is reached and jumps while the
// counter is positive. A count of zero never jumps.
func (a *Animator) loop(ins Instruction) {
	top := -1
	for i := len(a.loops) - 1; i >= 0; i-- {
		if a.loops[i].at == a.pc {
			top = i
			break
		}
	}
	if top < 0 {
		a.loops = append(a.loops, loopCounter{at: a.pc, remaining: ins.Count()})
		top = len(a.loops) - 1
	}
	// counters opened inside this loop's body are finished
	a.loops = a.loops[:top+1]

	if a.loops[top].remaining > 0 {
		a.loops[top].remaining--
		a.pc = a.index[ins.Target()]
		return
	}
	a.loops = a.loops[:top]
	a.pc++
}

// stateKey identifies the complete interpreter state for cycle detection.
func (a *Animator) stateKey() string {
	return fmt.Sprint(a.pc, a.delay, a.loops, a.pose)
}

// Trace resets a and returns the pose after each of n ticks.
func (a *Animator) Trace(n int) ([]Pose, error) {
	a.Reset()
	out := make([]Pose, 0, n)
	for i := 0; i < n; i++ {
		if err := a.Tick(); err != nil {
			return out, err
		}
		out = append(out, a.pose)
	}
	return out, nil
}

// Cycle resets a and ticks until the interpreter state repeats, returning one
// pose per tick up to the repeat. limit caps the search.
func (a *Animator) Cycle(limit int) ([]Pose, error) {
	a.Reset()
	seen := make(map[string]bool)
	var out []Pose
	for len(out) < limit {
		if err := a.Tick(); err != nil {
			return out, err
		}
		key := a.stateKey()
		if seen[key] {
			break
		}
		seen[key] = true
		out = append(out, a.pose)
	}
	return out, nil
}
