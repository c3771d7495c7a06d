package spritekit

import (
	"fmt"
)

// PositionKey is a keyframe's SetPosition payload.
type PositionKey struct {
	Vec3     `yaml:",inline"`
	Relative bool `yaml:"relative,omitempty"`
}

// ScaleKey is a keyframe's scale payload. Uniform is applied before the
// per-axis overrides.
type ScaleKey struct {
	Uniform *int `yaml:"uniform,omitempty"`
	X       *int `yaml:"x,omitempty"`
	Y       *int `yaml:"y,omitempty"`
}

// Jump closes a keyframe with a backward Goto, or a Loop when Loop is set.
// Target is a keyframe index, never a word offset.
type Jump struct {
	Target int  `yaml:"target"`
	Loop   bool `yaml:"loop,omitempty"`
	Count  int  `yaml:"count,omitempty"`
}

// Keyframe is the editable unit of a component. Nil fields leave the pose
// unchanged. Duration is the Delay closing the keyframe; zero means the
// keyframe takes no time and emits no Delay.
type Keyframe struct {
	Name     string       `yaml:"name,omitempty"`
	Duration int          `yaml:"duration"`
	Image    *int         `yaml:"image,omitempty"`
	Position *PositionKey `yaml:"position,omitempty"`
	Rotation *Vec3        `yaml:"rotation,omitempty"`
	Scale    *ScaleKey    `yaml:"scale,omitempty"`
	Palette  *int         `yaml:"palette,omitempty"`
	Parents  []ParentLink `yaml:"parents,omitempty"`
	Jump     *Jump        `yaml:"jump,omitempty"`
}

func intPtr(v int) *int { return &v }

// absorb folds a pose-mutating command into the keyframe.
func (k *Keyframe) absorb(c Command) {
	switch c.Op {
	case OpSetImage:
		k.Image = intPtr(c.Value)
	case OpSetPosition:
		k.Position = &PositionKey{Vec3: Vec3{c.Args[0], c.Args[1], c.Args[2]}, Relative: c.Value == 1}
	case OpSetAngle:
		k.Rotation = &Vec3{c.Value, c.Args[0], c.Args[1]}
	case OpSetScale:
		if k.Scale == nil {
			k.Scale = &ScaleKey{}
		}
		switch ScaleMode(c.Value) {
		case ScaleUniform:
			*k.Scale = ScaleKey{Uniform: intPtr(c.Args[0])}
		case ScaleX:
			k.Scale.X = intPtr(c.Args[0])
		case ScaleY:
			k.Scale.Y = intPtr(c.Args[0])
		}
	case OpSetPalette:
		k.Palette = intPtr(c.Value)
	case OpSetParent:
		k.Parents = append(k.Parents, c.Parent())
	}
}

// ToKeyframes converts a sequence into keyframes. A keyframe closes at every
// Delay and jump, and a new one opens at every jump target so loops can be
// kept as markers instead of being unrolled.
func ToKeyframes(seq RawSequence) ([]Keyframe, error) {
	prog, err := DecodeSequence(seq)
	if err != nil {
		return nil, err
	}
	targets := make(map[int]bool)
	for _, ins := range prog {
		if ins.Op.IsJump() {
			targets[ins.Target()] = true
		}
	}

	var out []Keyframe
	starts := make(map[int]int) // word offset -> keyframe index
	var cur Keyframe
	started := false
	flush := func() {
		out = append(out, cur)
		cur = Keyframe{}
		started = false
	}

	for _, ins := range prog {
		if targets[ins.Offset] && started {
			flush()
		}
		if !started {
			starts[ins.Offset] = len(out)
			started = true
		}
		switch ins.Op {
		case OpDelay:
			cur.Duration = ins.Value
			flush()
		case OpGoto:
			cur.Jump = &Jump{Target: ins.Target()}
			flush()
		case OpLoop:
			cur.Jump = &Jump{Target: ins.Target(), Loop: true, Count: ins.Count()}
			flush()
		default:
			cur.absorb(ins.Command)
		}
	}
	if started {
		flush()
	}

	for i := range out {
		if j := out[i].Jump; j != nil {
			j.Target = starts[j.Target]
		}
	}
	return out, nil
}

// poseFact is one field the keyframe compactor tracks.
type poseFact uint8

const (
	factImage poseFact = 1 << iota
	factPosition
	factRotation
	factScaleX
	factScaleY
	factScaleZ
	factPalette

	factAll = factImage | factPosition | factRotation | factScaleX | factScaleY | factScaleZ | factPalette
)

// poseKnowledge is the pose on entry to a keyframe, with known marking the
// fields that hold the same value on every path reaching it.
type poseKnowledge struct {
	pose  Pose
	known poseFact
}

func (k *Keyframe) transfer(in poseKnowledge) poseKnowledge {
	out := in
	if k.Image != nil {
		out.pose.Image = *k.Image
		out.known |= factImage
	}
	if k.Position != nil {
		out.pose.Position = k.Position.Vec3
		out.pose.PositionFlag = 0
		if k.Position.Relative {
			out.pose.PositionFlag = 1
		}
		out.known |= factPosition
	}
	if k.Rotation != nil {
		out.pose.Rotation = *k.Rotation
		out.known |= factRotation
	}
	if s := k.Scale; s != nil {
		if s.Uniform != nil {
			out.pose.Scale = Vec3{*s.Uniform, *s.Uniform, *s.Uniform}
			out.known |= factScaleX | factScaleY | factScaleZ
		}
		if s.X != nil {
			out.pose.Scale.X = *s.X
			out.known |= factScaleX
		}
		if s.Y != nil {
			out.pose.Scale.Y = *s.Y
			out.known |= factScaleY
		}
	}
	if k.Palette != nil {
		out.pose.Palette = *k.Palette
		out.known |= factPalette
	}
	return out
}

func meet(a, b poseKnowledge) poseKnowledge {
	known := a.known & b.known
	pa, pb := a.pose, b.pose
	if pa.Image != pb.Image {
		known &^= factImage
	}
	if pa.Position != pb.Position || pa.PositionFlag != pb.PositionFlag {
		known &^= factPosition
	}
	if pa.Rotation != pb.Rotation {
		known &^= factRotation
	}
	if pa.Scale.X != pb.Scale.X {
		known &^= factScaleX
	}
	if pa.Scale.Y != pb.Scale.Y {
		known &^= factScaleY
	}
	if pa.Scale.Z != pb.Scale.Z {
		known &^= factScaleZ
	}
	if pa.Palette != pb.Palette {
		known &^= factPalette
	}
	return poseKnowledge{pose: a.pose, known: known}
}

// entryKnowledge computes, for every keyframe, which pose fields are fixed on
// entry across all incoming edges (fall-through and jumps).
func entryKnowledge(kfs []Keyframe) []poseKnowledge {
	entry := make([]poseKnowledge, len(kfs))
	reached := make([]bool, len(kfs))
	if len(kfs) == 0 {
		return entry
	}
	entry[0] = poseKnowledge{pose: IdentityPose(), known: factAll}
	reached[0] = true
	work := []int{0}
	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]
		out := kfs[i].transfer(entry[i])

		var succ []int
		if j := kfs[i].Jump; j == nil || j.Loop {
			if i+1 < len(kfs) {
				succ = append(succ, i+1)
			}
		}
		if j := kfs[i].Jump; j != nil && j.Target >= 0 && j.Target < len(kfs) {
			succ = append(succ, j.Target)
		}
		for _, s := range succ {
			if !reached[s] {
				reached[s] = true
				entry[s] = out
				work = append(work, s)
				continue
			}
			m := meet(entry[s], out)
			if m.known != entry[s].known {
				entry[s] = m
				work = append(work, s)
			}
		}
	}
	for i := range entry {
		if !reached[i] {
			entry[i] = poseKnowledge{pose: IdentityPose()}
		}
	}
	return entry
}

// ToCommands converts keyframes back to a sequence. A field is omitted when
// every path into its keyframe already carries that value, unless dropping it
// would leave a jump with no command to land on. Jump targets are recomputed
// from the emitted offsets.
func ToCommands(kfs []Keyframe) (RawSequence, error) {
	entry := entryKnowledge(kfs)
	full := make([]bool, len(kfs)) // keyframes emitted without omission

	for {
		cmds, retry, err := emitKeyframes(kfs, entry, full)
		if err != nil {
			return nil, err
		}
		if retry {
			continue
		}
		seq, err := EncodeSequence(cmds)
		if err != nil {
			return nil, fmt.Errorf("spritekit: keyframes: %w", err)
		}
		return seq, nil
	}
}

// emitKeyframes lays out kfs once. When a jump would target its own offset it
// marks the first keyframe of the jumped range that has fields in full and
// reports retry.
func emitKeyframes(kfs []Keyframe, entry []poseKnowledge, full []bool) (cmds []Command, retry bool, err error) {
	var jumps []int // indices into cmds needing a target
	starts := make([]int, len(kfs))
	offset := 0
	emit := func(c Command) {
		cmds = append(cmds, c)
		offset += c.Size()
	}

	for i := range kfs {
		k := &kfs[i]
		starts[i] = offset
		in := entry[i]
		if full[i] {
			in = poseKnowledge{}
		}

		if k.Duration < 0 || k.Duration > MaxDelay {
			return nil, false, fmt.Errorf("spritekit: keyframe %d: duration %d outside 0..%d", i, k.Duration, MaxDelay)
		}

		k.emitFields(in, emit)
		if k.Duration > 0 {
			emit(Delay(k.Duration))
		}
		if j := k.Jump; j != nil {
			if j.Target < 0 || j.Target > i {
				return nil, false, fmt.Errorf("spritekit: keyframe %d: jump target %d is not behind it", i, j.Target)
			}
			if starts[j.Target] == offset {
				f := firstWithFields(kfs[j.Target : i+1])
				if f < 0 || full[j.Target+f] {
					return nil, false, fmt.Errorf("spritekit: keyframe %d: jump to keyframe %d skips no commands", i, j.Target)
				}
				full[j.Target+f] = true
				return nil, true, nil
			}
			jumps = append(jumps, len(cmds))
			if j.Loop {
				emit(Loop(j.Target, j.Count))
			} else {
				emit(Goto(j.Target))
			}
		}
	}

	for _, ci := range jumps {
		cmds[ci].Value = starts[cmds[ci].Value]
	}
	return cmds, false, nil
}

func firstWithFields(kfs []Keyframe) int {
	for i := range kfs {
		if kfs[i].hasFields() {
			return i
		}
	}
	return -1
}

func (k *Keyframe) hasFields() bool {
	if k.Image != nil || k.Position != nil || k.Rotation != nil || k.Palette != nil || len(k.Parents) > 0 {
		return true
	}
	s := k.Scale
	return s != nil && (s.Uniform != nil || s.X != nil || s.Y != nil)
}

// emitFields emits the commands of k that in does not already carry.
func (k *Keyframe) emitFields(in poseKnowledge, emit func(Command)) {
	for _, p := range k.Parents {
		if p.Kind == ParentComponent {
			emit(SetParent(p.Kind, p.Index))
		}
	}
	if k.Image != nil && !(in.known&factImage != 0 && in.pose.Image == *k.Image) {
		emit(SetImage(*k.Image))
	}
	if p := k.Position; p != nil {
		flag := 0
		if p.Relative {
			flag = 1
		}
		if !(in.known&factPosition != 0 && in.pose.Position == p.Vec3 && in.pose.PositionFlag == flag) {
			emit(SetPosition(p.Relative, p.X, p.Y, p.Z))
		}
	}
	if r := k.Rotation; r != nil && !(in.known&factRotation != 0 && in.pose.Rotation == *r) {
		emit(SetAngle(r.X, r.Y, r.Z))
	}
	if s := k.Scale; s != nil {
		cur := in
		if u := s.Uniform; u != nil {
			all := factScaleX | factScaleY | factScaleZ
			same := cur.pose.Scale == Vec3{*u, *u, *u}
			if !(cur.known&all == all && same) {
				emit(SetScale(ScaleUniform, *u))
			}
			cur.pose.Scale = Vec3{*u, *u, *u}
			cur.known |= all
		}
		if x := s.X; x != nil && !(cur.known&factScaleX != 0 && cur.pose.Scale.X == *x) {
			emit(SetScale(ScaleX, *x))
		}
		if y := s.Y; y != nil && !(cur.known&factScaleY != 0 && cur.pose.Scale.Y == *y) {
			emit(SetScale(ScaleY, *y))
		}
	}
	if k.Palette != nil && !(in.known&factPalette != 0 && in.pose.Palette == *k.Palette) {
		emit(SetPalette(*k.Palette))
	}
	for _, p := range k.Parents {
		if p.Kind != ParentComponent {
			emit(SetParent(p.Kind, p.Index))
		}
	}
}
