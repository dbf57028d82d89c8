package postprocess

// Scale selects how onset/offset fractions are mapped onto a sequence's
// value range before binarization.
type Scale string

const (
	// ScaleAbsolute treats the sequence as bounded by [0, 1].
	ScaleAbsolute Scale = "absolute"
	// ScaleRelative uses the sequence's own min and max as bounds.
	ScaleRelative Scale = "relative"
	// ScalePercentile uses the 1st and 99th nearest-rank percentiles as bounds.
	ScalePercentile Scale = "percentile"
)

// Params holds the postprocessing thresholds for one batch run. Onset and
// Offset are fractions in [0, 1] until Calibrate maps them into the
// sequence's native scale.
type Params struct {
	Onset             float64
	Offset            float64
	PadOnset          float64
	PadOffset         float64
	MinDurationOn     float64
	MinDurationOff    float64
	FilterSpeechFirst bool
	Scale             Scale
	FrameLength       float64
}

// DefaultParams returns the conventional postprocessing defaults: symmetric
// 0.5 thresholds, no padding, no duration filters, speech filtered first,
// absolute scale, 10 ms frames.
func DefaultParams() Params {
	return Params{
		Onset:             0.5,
		Offset:            0.5,
		FilterSpeechFirst: true,
		Scale:             ScaleAbsolute,
		FrameLength:       0.01,
	}
}
