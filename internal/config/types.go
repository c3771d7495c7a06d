package config

// Atlas defines atlas packing parameters for the pack command.
type Atlas struct {
	Padding       int     `yaml:"padding"`
	SelectPadding float64 `yaml:"select_padding"`
	Alignment     int     `yaml:"alignment"`
	AspectRatio   float64 `yaml:"aspect_ratio"`
}

// Playback defines how the play command runs animations.
type Playback struct {
	Ticks      int `yaml:"ticks"`
	CycleLimit int `yaml:"cycle_limit"`
}

// Assets defines where rasters and palettes are read from.
type Assets struct {
	// Root overrides the document directory when set.
	Root string `yaml:"root,omitempty"`
}

// Config represents the .spritekit.yaml file.
type Config struct {
	Atlas    Atlas    `yaml:"atlas"`
	Playback Playback `yaml:"playback"`
	Assets   Assets   `yaml:"assets"`
	Verbose  bool     `yaml:"verbose"`
}
