package spritekit

import (
	"errors"
	"strings"
	"testing"
)

var walkSeq = RawSequence{0x1000, 0x0002, 0x1001, 0x0002, 0x2000}

func TestComponentClonesSequence(t *testing.T) {
	seq := walkSeq.Clone()
	c := NewComponent("body", seq)
	seq[0] = 0x1005
	if c.Sequence[0] != 0x1000 {
		t.Error("component shares caller's sequence")
	}
	if c.Pose() != IdentityPose() {
		t.Errorf("pose before playback = %+v", c.Pose())
	}
}

func TestComponentSetSequenceDropsState(t *testing.T) {
	c := NewComponent("body", walkSeq)
	a, err := c.Animator()
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Tick(); err != nil {
		t.Fatal(err)
	}
	if err := c.Generate(); err != nil {
		t.Fatal(err)
	}

	c.SetSequence(RawSequence{0x1003, 0x0001})
	if c.Trajectory() != nil {
		t.Error("trajectory kept after SetSequence")
	}
	if c.Pose() != IdentityPose() {
		t.Errorf("pose kept after SetSequence: %+v", c.Pose())
	}
	b, err := c.Animator()
	if err != nil {
		t.Fatal(err)
	}
	if b == a {
		t.Error("animator kept after SetSequence")
	}
}

func TestComponentGenerate(t *testing.T) {
	c := NewComponent("body", walkSeq)
	if err := c.Generate(); err != nil {
		t.Fatal(err)
	}
	if got := len(c.Trajectory()); got != 4 {
		t.Errorf("trajectory length = %d, want 4", got)
	}
	if got := len(c.Keyframes); got != 2 {
		t.Errorf("keyframes = %d, want 2", got)
	}
}

func TestComponentConvertToCommandsKeepsSequenceOnError(t *testing.T) {
	c := NewComponent("body", walkSeq)
	c.Keyframes = []Keyframe{{Duration: MaxDelay + 1}}
	if err := c.ConvertToCommands(); err == nil {
		t.Fatal("expected error")
	}
	if !equalWords(c.Sequence, walkSeq) {
		t.Errorf("sequence changed to %v", c.Sequence)
	}
}

func TestAnimationTickReportsBadComponents(t *testing.T) {
	var a Animation
	if _, err := a.AddComponent("good", walkSeq); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddComponent("bad", RawSequence{0x3000}); err != nil {
		t.Fatal(err)
	}

	err := a.Tick()
	if !errors.Is(err, ErrMalformedBytecode) {
		t.Fatalf("Tick = %v, want ErrMalformedBytecode", err)
	}
	if !strings.Contains(err.Error(), "component 01") {
		t.Errorf("error does not name the component: %v", err)
	}
	poses := a.Poses()
	if poses[0].Image != 0 || poses[1] != IdentityPose() {
		t.Errorf("poses = %+v", poses)
	}
	if err := a.Reset(); !errors.Is(err, ErrMalformedBytecode) {
		t.Errorf("Reset = %v", err)
	}
}

func TestAnimationRemoveComponent(t *testing.T) {
	var a Animation
	for _, name := range []string{"a", "b", "c"} {
		if _, err := a.AddComponent(name, walkSeq); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.RemoveComponent(1); err != nil {
		t.Fatal(err)
	}
	if len(a.Components) != 2 || a.Components[1].Name != "c" {
		t.Errorf("components after remove = %d", len(a.Components))
	}
	if err := a.RemoveComponent(2); err == nil {
		t.Error("RemoveComponent out of range succeeded")
	}
}
