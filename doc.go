// Package spritekit plays and edits animated billboard sprites for
// [Ebitengine].
//
// A sprite is a set of palettes, rasters (indexed images bound to a
// palette) and animations. Each animation is an ordered list of components,
// and each component is driven by a compact program of 16-bit command words.
//
// # Bytecode
//
// Every command word packs a 4-bit opcode above a signed 12-bit immediate;
// some opcodes are followed by operand words. [DecodeSequence] and
// [EncodeSequence] convert between raw words and [Command] values and reject
// anything out of range with a [MalformedBytecodeError].
//
//	seq := spritekit.RawSequence{0x1000, 0x000A, 0x2000}
//	prog, err := spritekit.DecodeSequence(seq)
//
// # Playback
//
// An [Animator] interprets one sequence tick by tick and exposes the
// resulting [Pose]:
//
//	a, err := spritekit.NewAnimator(seq)
//	for range 60 {
//		if err := a.Tick(); err != nil {
//			return err
//		}
//		draw(a.Pose())
//	}
//
// [Sprite.Render] ticks nothing; it draws the current pose of every
// component of one animation through a [Renderer]. [EbitenRenderer] draws
// onto an [ebiten.Image] from the atlas pages built by [Sprite.Activate].
//
// # Editing
//
// [ToKeyframes] turns a sequence into [Keyframe] values for editing, and
// [ToCommands] compiles them back, dropping settings that are already in
// effect on every path into a keyframe.
//
// # Atlas
//
// [PackAtlas] lays images out in padded rows and [AtlasLayout.Pick] maps a
// point back to the image under it. Layouts export to TexturePacker JSON,
// and [Sprite.SaveAtlas] writes the palette-colored atlas as PNG.
//
// # Documents and assets
//
// Sprites persist as YAML ([ReadDocument], [Sprite.WriteDocument]). Image and
// palette files load in the background with [LoadAssets]; apply the result
// on the render goroutine with [Sprite.ApplyAssets].
//
// [Ebitengine]: https://ebitengine.org
package spritekit
