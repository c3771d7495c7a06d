package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/spritekit"
	"github.com/phanxgames/spritekit/internal/config"
)

func TestPlayCommand_Ticks(t *testing.T) {
	playTicks = 5
	defer func() { playTicks = 0 }()

	output, err := runCommand(t, playCmd, runPlay, "", walkCycle)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "TICK")
	assert.Contains(t, lines[1], "image=0")
	assert.Contains(t, lines[2], "image=0")
	assert.Contains(t, lines[3], "image=1")
	assert.Contains(t, lines[4], "image=1")
	assert.Contains(t, lines[5], "image=0")
	assert.Contains(t, lines[1], "scale=(100,100,100) palette=-")
}

func TestPlayCommand_DefaultTicksFromConfig(t *testing.T) {
	c := config.DefaultConfig()
	c.Playback.Ticks = 3
	cfg = &c
	defer func() { cfg = nil }()

	output, err := runCommand(t, playCmd, runPlay, "", walkCycle)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(output), "\n"), 4)
}

func TestPlayCommand_Cycle(t *testing.T) {
	playCycle = true
	defer func() { playCycle = false }()

	output, err := runCommand(t, playCmd, runPlay, "", walkCycle)
	require.NoError(t, err)
	assert.Contains(t, output, "cycle length: 4")
}

func TestPlayCommand_NoDelay(t *testing.T) {
	playTicks = 2
	defer func() { playTicks = 0 }()

	_, err := runCommand(t, playCmd, runPlay, "", "1000 2000")
	require.Error(t, err)
	assert.ErrorIs(t, err, spritekit.ErrNoDelay)
	assert.Contains(t, err.Error(), "tick 1")
}

func TestFormatPose_Parent(t *testing.T) {
	p := spritekit.IdentityPose()
	p.Image = 2
	p.Palette = 1
	p.HasParent = true
	p.Parent = spritekit.ParentLink{Kind: spritekit.ParentComponent, Index: 3}
	assert.Equal(t,
		"image=2 pos=(0,0,0) rot=(0,0,0) scale=(100,100,100) palette=1 parent=component:3",
		formatPose(p))
}

func TestKeyframesCompileRoundTrip(t *testing.T) {
	output, err := runCommand(t, keyframesCmd, runKeyframes, "", walkCycle)
	require.NoError(t, err)
	assert.Contains(t, output, "duration: 2")
	assert.Contains(t, output, "jump:")

	path := filepath.Join(t.TempDir(), "walk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(output), 0o644))

	compiled, err := runCommand(t, compileCmd, runCompile, "", path)
	require.NoError(t, err)

	seq, err := spritekit.ParseSequenceHex(compiled)
	require.NoError(t, err)
	want, err := spritekit.ParseSequenceHex(walkCycle)
	require.NoError(t, err)
	assert.Equal(t, trace(t, want), trace(t, seq))
}

func TestCompileCommand_Stdin(t *testing.T) {
	kfs := "- image: 3\n  duration: 4\n"
	output, err := runCommand(t, compileCmd, runCompile, kfs, "-")
	require.NoError(t, err)
	assert.Equal(t, "1003 0004\n", output)
}

func TestCompileCommand_Errors(t *testing.T) {
	_, err := runCommand(t, compileCmd, runCompile, "- duration: [", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse keyframes")

	_, err = runCommand(t, compileCmd, runCompile, "", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read keyframes")
}

func trace(t *testing.T, seq spritekit.RawSequence) []spritekit.Pose {
	t.Helper()
	a, err := spritekit.NewAnimator(seq)
	require.NoError(t, err)
	poses, err := a.Trace(20)
	require.NoError(t, err)
	return poses
}
