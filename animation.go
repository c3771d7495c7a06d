package spritekit

import (
	"errors"
	"fmt"
)

// trajectoryLimit caps the ticks searched when caching a component's cycle.
const trajectoryLimit = 4096

// Component is one independently animated part of an animation.
type Component struct {
	Name   string
	ZIndex int
	// Sequence is the authoritative bytecode. Keyframes are an editing view
	// that replaces it only through ConvertToCommands.
	Sequence  RawSequence
	Keyframes []Keyframe

	animator   *Animator
	trajectory []Pose
}

// NewComponent returns a component playing seq.
func NewComponent(name string, seq RawSequence) *Component {
	return &Component{Name: name, Sequence: seq.Clone()}
}

// SetSequence replaces the bytecode and drops cached playback state.
func (c *Component) SetSequence(seq RawSequence) {
	c.Sequence = seq.Clone()
	c.animator = nil
	c.trajectory = nil
}

// Animator returns the component's interpreter, decoding the sequence on
// first use.
func (c *Component) Animator() (*Animator, error) {
	if c.animator != nil {
		return c.animator, nil
	}
	a, err := NewAnimator(c.Sequence)
	if err != nil {
		return nil, err
	}
	c.animator = a
	return a, nil
}

// Pose returns the current pose, or the identity pose before playback.
func (c *Component) Pose() Pose {
	if c.animator == nil {
		return IdentityPose()
	}
	return c.animator.Pose()
}

// Trajectory returns the poses of one full cycle cached by Generate.
func (c *Component) Trajectory() []Pose {
	return c.trajectory
}

// Generate rebuilds keyframes and the cached trajectory from the sequence.
func (c *Component) Generate() error {
	if err := c.ConvertToKeyframes(); err != nil {
		return err
	}
	a, err := NewAnimator(c.Sequence)
	if err != nil {
		return err
	}
	traj, err := a.Cycle(trajectoryLimit)
	if err != nil && !errors.Is(err, ErrNoDelay) {
		return err
	}
	c.trajectory = traj
	return err
}

// ConvertToKeyframes replaces Keyframes with the decoded sequence.
func (c *Component) ConvertToKeyframes() error {
	kfs, err := ToKeyframes(c.Sequence)
	if err != nil {
		return err
	}
	c.Keyframes = kfs
	return nil
}

// ConvertToCommands re-encodes Keyframes into the sequence. The sequence is
// left unchanged on error.
func (c *Component) ConvertToCommands() error {
	seq, err := ToCommands(c.Keyframes)
	if err != nil {
		return err
	}
	c.SetSequence(seq)
	return nil
}

// Animation is an ordered set of components played in lockstep. Component
// order is significant: parent links and draw order refer to it.
type Animation struct {
	Name       string
	Components []*Component

	maxComponents int
}

// AddComponent appends a component playing seq.
func (a *Animation) AddComponent(name string, seq RawSequence) (*Component, error) {
	if a.maxComponents > 0 && len(a.Components) >= a.maxComponents {
		return nil, fmt.Errorf("spritekit: animation %q already has %d components", a.Name, a.maxComponents)
	}
	c := NewComponent(name, seq)
	a.Components = append(a.Components, c)
	return c, nil
}

// RemoveComponent deletes the component at index. Later components shift
// down, so parent links pointing past index are rechecked by Bind.
func (a *Animation) RemoveComponent(index int) error {
	if index < 0 || index >= len(a.Components) {
		return fmt.Errorf("spritekit: component index %d out of range [0, %d)", index, len(a.Components))
	}
	a.Components = append(a.Components[:index], a.Components[index+1:]...)
	return nil
}

// Reset rewinds every component. Components whose bytecode fails to decode
// are reported and keep the identity pose.
func (a *Animation) Reset() error {
	var errs []error
	for i, c := range a.Components {
		anim, err := c.Animator()
		if err != nil {
			errs = append(errs, fmt.Errorf("component %02X: %w", i, err))
			continue
		}
		anim.Reset()
	}
	return errors.Join(errs...)
}

// Tick advances every component by one frame.
func (a *Animation) Tick() error {
	var errs []error
	for i, c := range a.Components {
		anim, err := c.Animator()
		if err != nil {
			errs = append(errs, fmt.Errorf("component %02X: %w", i, err))
			continue
		}
		if err := anim.Tick(); err != nil {
			errs = append(errs, fmt.Errorf("component %02X: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Poses returns the current pose of every component in order.
func (a *Animation) Poses() []Pose {
	out := make([]Pose, len(a.Components))
	for i, c := range a.Components {
		out[i] = c.Pose()
	}
	return out
}
