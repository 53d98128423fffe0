package evaluate

import "math"

// Score maps a frame's detection count against the expected animal
// count to an accuracy in [0, 1]. The base metric is detections found
// over animals expected, clamped at 1 so extra detections never raise
// the score. With penalizeExtra set, each detection beyond the expected
// count instead subtracts from a perfect score, floored at 0.
func Score(detections, expected int, penalizeExtra bool) float64 {
	if expected <= 0 {
		return 0
	}
	ratio := float64(detections) / float64(expected)
	if ratio <= 1 {
		return ratio
	}
	if penalizeExtra {
		return math.Max(0, 1-math.Abs(1-ratio))
	}
	return 1
}

// mean is the arithmetic mean of values. Callers guard against empty
// input; see ErrNoFrames.
func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
