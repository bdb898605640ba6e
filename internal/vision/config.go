package vision

// Config is the detector's fixed, load-time configuration; Detect is a
// pure function of (frame, Config) — no state carried between frames
// (spec.md §4.5 contract).
type Config struct {
	ROITop    float64 // fraction of frame height, e.g. 0.25
	ROIBottom float64 // fraction of frame height, e.g. 0.95

	SaturationThreshold int // S > this
	LaplacianThreshold  int // |laplacian| > this
	CannyLow            int
	CannyHigh           int

	MinAreaPx      float64
	MaxAspectRatio float64 // width/height
	MinHeightPx    int

	SmallSizeMax  float64 // area threshold: small if < this
	MediumSizeMax float64 // medium if < this, else large

	CenterDistanceThreshold float32 // has_center if distance > this
	SideDistanceThreshold   float32 // has_left/has_right if distance > this
	StopDistanceThreshold   float32 // STOP if d_c > this
}

// DefaultConfig mirrors the thresholds of spec.md §4.5, resolving the
// Open Question in §9 toward the more cautious 0.65 STOP threshold
// (configurable via Config.StopDistanceThreshold).
func DefaultConfig() Config {
	return Config{
		ROITop:    0.25,
		ROIBottom: 0.95,

		SaturationThreshold: 70,
		LaplacianThreshold:  25,
		CannyLow:            60,
		CannyHigh:           120,

		MinAreaPx:      4000,
		MaxAspectRatio: 8,
		MinHeightPx:    35,

		SmallSizeMax:  5000,
		MediumSizeMax: 15000,

		CenterDistanceThreshold: 0.50,
		SideDistanceThreshold:   0.45,
		StopDistanceThreshold:   0.65,
	}
}
