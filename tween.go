package spritekit

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// PoseTween interpolates the continuous fields of a pose (position, rotation
// and scale) between two poses. Image, palette and parent snap to the target
// at the start. Call Update(dt) each frame; there is no global manager.
type PoseTween struct {
	tweens  [9]*gween.Tween
	current Pose
	Done    bool
}

// NewPoseTween returns a tween from one pose to another over duration
// seconds using fn.
func NewPoseTween(from, to Pose, duration float32, fn ease.TweenFunc) *PoseTween {
	t := &PoseTween{current: to}
	src := poseFields(&from)
	dst := poseFields(&to)
	for i := range t.tweens {
		t.tweens[i] = gween.New(float32(*src[i]), float32(*dst[i]), duration, fn)
	}
	out := poseFields(&t.current)
	for i := range out {
		*out[i] = *src[i]
	}
	return t
}

// Update advances the tween by dt seconds and returns the interpolated pose.
func (t *PoseTween) Update(dt float32) Pose {
	if t.Done {
		return t.current
	}
	out := poseFields(&t.current)
	allDone := true
	for i, tw := range t.tweens {
		val, finished := tw.Update(dt)
		*out[i] = int(math.Round(float64(val)))
		if !finished {
			allDone = false
		}
	}
	t.Done = allDone
	return t.current
}

// Pose returns the most recent interpolated pose.
func (t *PoseTween) Pose() Pose {
	return t.current
}

func poseFields(p *Pose) [9]*int {
	return [9]*int{
		&p.Position.X, &p.Position.Y, &p.Position.Z,
		&p.Rotation.X, &p.Rotation.Y, &p.Rotation.Z,
		&p.Scale.X, &p.Scale.Y, &p.Scale.Z,
	}
}

// Preview plays an Animator in wall-clock time for the editor, smoothing
// each pose change over one tick.
type Preview struct {
	TickSeconds float32
	Ease        ease.TweenFunc

	anim  *Animator
	tween *PoseTween
	acc   float32
}

// NewPreview resets a and returns a preview ticking every tickSeconds.
func NewPreview(a *Animator, tickSeconds float32, fn ease.TweenFunc) *Preview {
	a.Reset()
	if fn == nil {
		fn = ease.Linear
	}
	return &Preview{TickSeconds: tickSeconds, Ease: fn, anim: a}
}

// Update advances playback by dt seconds and returns the pose to display.
func (p *Preview) Update(dt float32) (Pose, error) {
	p.acc += dt
	advance := dt
	for p.TickSeconds > 0 && p.acc >= p.TickSeconds {
		p.acc -= p.TickSeconds
		shown := p.anim.Pose()
		if p.tween != nil {
			shown = p.tween.Pose()
		}
		if err := p.anim.Tick(); err != nil {
			return shown, err
		}
		if next := p.anim.Pose(); next != shown {
			p.tween = NewPoseTween(shown, next, p.TickSeconds, p.Ease)
			// a fresh tween only runs for the time since its tick
			advance = p.acc
		}
	}
	if p.tween == nil {
		return p.anim.Pose(), nil
	}
	return p.tween.Update(advance), nil
}
