package atlasgen

// ProgressFunc is invoked as the orchestrator makes progress through a
// generate call: once per duplicate resolved and once per item placed
// by the packer, with a running total of both.
type ProgressFunc func(done int)

// Config is the immutable set of knobs Generator.Generate runs under.
// Built once via NewConfig, which clamps the size, scale and extrude
// fields to limits.go's bounds.
type Config struct {
	maxWidth, maxHeight int
	scale               float64
	extrude             int
	parallel            bool
	alphaThreshold      uint8
	accuracy            float64
	progress            ProgressFunc
}

// NewConfig builds a Config, clamping width/height/scale/extrude to
// limits.go's bounds. accuracy controls the packer's occupancy grid
// resolution (0.6 in release, 1.0 in debug); a value outside (0, 1]
// falls back to 0.6.
func NewConfig(maxWidth, maxHeight int, scale float64, extrude int, alphaThreshold uint8, parallel bool, accuracy float64, progress ProgressFunc) Config {
	if accuracy <= 0 || accuracy > 1 {
		accuracy = 0.6
	}
	return Config{
		maxWidth:       clampInt(maxWidth, MinTextureDimension, MaxTextureDimension),
		maxHeight:      clampInt(maxHeight, MinTextureDimension, MaxTextureDimension),
		scale:          clampFloat(scale, MinScale, MaxScale),
		extrude:        clampInt(extrude, MinExtrude, MaxExtrude),
		parallel:       parallel,
		alphaThreshold: alphaThreshold,
		accuracy:       accuracy,
		progress:       progress,
	}
}

// DefaultConfig mirrors what cmd/atlasgen/main.go falls back to when
// the CLI's flags are left at their defaults: a 2048x2048 atlas
// ceiling, no rescale, a 2px extrude border, serial processing and
// release-grade packer accuracy.
func DefaultConfig() Config {
	return NewConfig(2048, 2048, 1.0, 2, 1, false, 0.6, nil)
}

func (c Config) Width() int            { return c.maxWidth }
func (c Config) Height() int           { return c.maxHeight }
func (c Config) Scale() float64        { return c.scale }
func (c Config) Extrude() int          { return c.extrude }
func (c Config) Parallel() bool        { return c.parallel }
func (c Config) AlphaThreshold() uint8 { return c.alphaThreshold }
func (c Config) Accuracy() float64     { return c.accuracy }

func (c Config) tick(n int) {
	if c.progress != nil {
		c.progress(n)
	}
}
