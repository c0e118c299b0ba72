package trafficfusion

// Congestion class labels, from best to worst.
const (
	CongestionLight    = "light"
	CongestionModerate = "moderate"
	CongestionHeavy    = "heavy"
	CongestionSevere   = "severe"
)

// ClassifyCongestion maps a congestion level to its qualitative label.
// The mapping is total over [0,1] and monotonic; boundary values fall in
// the upper bucket (0.3 is "moderate", not "light").
func ClassifyCongestion(level float64) string {
	switch {
	case level < 0.3:
		return CongestionLight
	case level < 0.6:
		return CongestionModerate
	case level < 0.8:
		return CongestionHeavy
	default:
		return CongestionSevere
	}
}
