package peaks_test

import (
	"math"
	"testing"

	"wavebench/internal/paths"
	"wavebench/internal/payload"
	"wavebench/internal/peaks"
	"wavebench/internal/testsupport"
)

// ditherNoise superimposes a deterministic alternating floor so the MAD and
// pretrigger noise estimates are nonzero without randomness in tests.
func ditherNoise(y []float64, amp float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		if i%2 == 0 {
			out[i] = v + amp
		} else {
			out[i] = v - amp
		}
	}
	return out
}

func pulsePayload(channels map[string][]float64) payload.Map {
	tAxis := testsupport.Linspace(0, 1, 1001)
	return testsupport.Waveform(tAxis, channels, map[string]string{"file": "run", "shot": "9"})
}

func channelRecord(t *testing.T, result payload.Map, key string) payload.Map {
	t.Helper()
	value, err := paths.Resolve(result, "events.candidate_peaks.by_channel."+key)
	if err != nil {
		t.Fatalf("resolve channel record %s: %v", key, err)
	}
	return value.(payload.Map)
}

func peakTimes(t *testing.T, record payload.Map) payload.Array {
	t.Helper()
	times, ok := payload.Numeric(record["t"])
	if !ok {
		t.Fatalf("record t is %s, want numeric", payload.TypeName(record["t"]))
	}
	return times
}

func TestDetectSinglePulse(t *testing.T) {
	tAxis := testsupport.Linspace(0, 1, 1001)
	y := ditherNoise(testsupport.Gaussian(1.0, 0.5, 0.01, tAxis), 0.01)
	p := pulsePayload(map[string][]float64{"A": y})

	params := peaks.DefaultParams()
	params.MinDistanceSamples = 50

	result, err := peaks.Detect(p, params)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	record := channelRecord(t, result, "A")
	times := peakTimes(t, record)
	if len(times) != 1 {
		t.Fatalf("peak count = %d, want 1 (times %v)", len(times), times)
	}
	if math.Abs(times[0]-0.5) > 0.005 {
		t.Fatalf("peak time = %v, want near 0.5", times[0])
	}
	amps, _ := payload.Numeric(record["amp"])
	if amps[0] < 0.9 {
		t.Fatalf("peak amplitude = %v, want near 1.0", amps[0])
	}

	noise := float64(record["noise"].(payload.Number))
	threshold := float64(record["threshold"].(payload.Number))
	if noise <= 0 || threshold <= 0 || math.IsInf(threshold, 1) {
		t.Fatalf("noise = %v threshold = %v, want finite positive", noise, threshold)
	}

	snrs, ok := payload.Numeric(record["snr"])
	if !ok || len(snrs) != 1 || snrs[0] < 5 {
		t.Fatalf("snr = %v, want one value above the 5 sigma threshold", record["snr"])
	}
	starts, _ := payload.Numeric(record["region_start"])
	ends, _ := payload.Numeric(record["region_end"])
	if len(starts) != 1 || len(ends) != 1 || !(starts[0] < 500 && 500 < ends[0]) {
		t.Fatalf("region = [%v, %v), want to bracket the pulse center", starts, ends)
	}

	// The input payload stays untouched.
	if _, err := paths.Resolve(p, "events.candidate_peaks"); err == nil {
		t.Fatal("detect wrote events into the input payload")
	}
}

func TestDetectAppendsHistoryAndUID(t *testing.T) {
	tAxis := testsupport.Linspace(0, 1, 1001)
	y := ditherNoise(testsupport.Gaussian(1.0, 0.5, 0.01, tAxis), 0.01)
	p := pulsePayload(map[string][]float64{"A": y})

	result, err := peaks.Detect(p, peaks.DefaultParams())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	history := payload.History(result)
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	entry := history[0].(payload.Map)
	if entry["op_name"] != payload.String("detect_candidate_peaks") {
		t.Fatalf("history op = %v", entry["op_name"])
	}
	uid, err := paths.Resolve(result, "meta.__uid__")
	if err != nil || uid != payload.String("run__9") {
		t.Fatalf("uid = %v (err %v), want run__9", uid, err)
	}
}

func TestDetectDeadTimeKeepsHigherPeak(t *testing.T) {
	tAxis := testsupport.Linspace(0, 1, 1001)
	y := ditherNoise(testsupport.Sum(
		testsupport.Gaussian(1.0, 0.2, 0.003, tAxis),
		testsupport.Gaussian(2.0, 0.21, 0.003, tAxis),
	), 0.01)
	p := pulsePayload(map[string][]float64{"A": y})

	params := peaks.DefaultParams()
	params.MinDistanceSamples = 50

	result, err := peaks.Detect(p, params)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	record := channelRecord(t, result, "A")
	times := peakTimes(t, record)
	if len(times) != 1 {
		t.Fatalf("peak count = %d, want 1 after dead-time filtering (times %v)", len(times), times)
	}
	if math.Abs(times[0]-0.21) > 0.005 {
		t.Fatalf("surviving peak at %v, want the higher pulse near 0.21", times[0])
	}
	amps, _ := payload.Numeric(record["amp"])
	if amps[0] < 1.5 {
		t.Fatalf("surviving amplitude = %v, want the 2.0 pulse", amps[0])
	}
}

func TestDetectAutoPolarityFlipsNegativePulse(t *testing.T) {
	tAxis := testsupport.Linspace(0, 1, 1001)
	base := testsupport.Gaussian(1.0, 0.7, 0.01, tAxis)
	neg := make([]float64, len(base))
	for i, v := range base {
		neg[i] = -v
	}
	p := pulsePayload(map[string][]float64{"A": ditherNoise(neg, 0.01)})

	params := peaks.DefaultParams()
	params.MinDistanceSamples = 50
	params.Polarity = peaks.PolarityAuto

	result, err := peaks.Detect(p, params)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	times := peakTimes(t, channelRecord(t, result, "A"))
	if len(times) != 1 || math.Abs(times[0]-0.7) > 0.005 {
		t.Fatalf("auto-polarity peaks = %v, want one near 0.7", times)
	}
}

func TestDetectInvertPolarity(t *testing.T) {
	tAxis := testsupport.Linspace(0, 1, 1001)
	base := testsupport.Gaussian(1.0, 0.4, 0.01, tAxis)
	neg := make([]float64, len(base))
	for i, v := range base {
		neg[i] = -v
	}
	p := pulsePayload(map[string][]float64{"A": ditherNoise(neg, 0.01)})

	params := peaks.DefaultParams()
	params.MinDistanceSamples = 50
	params.Polarity = peaks.PolarityInvert

	result, err := peaks.Detect(p, params)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	times := peakTimes(t, channelRecord(t, result, "A"))
	if len(times) != 1 || math.Abs(times[0]-0.4) > 0.005 {
		t.Fatalf("inverted peaks = %v, want one near 0.4", times)
	}
}

func TestDetectThresholdControlsSensitivity(t *testing.T) {
	tAxis := testsupport.Linspace(0, 1, 1001)
	y := ditherNoise(testsupport.Gaussian(1.0, 0.5, 0.01, tAxis), 0.01)
	p := pulsePayload(map[string][]float64{"A": y})

	loose := peaks.DefaultParams()
	loose.MinDistanceSamples = 50
	result, err := peaks.Detect(p, loose)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if times := peakTimes(t, channelRecord(t, result, "A")); len(times) != 1 {
		t.Fatalf("5 sigma peaks = %v, want 1", times)
	}

	strict := loose
	strict.ThresholdSigma = 100
	result, err = peaks.Detect(p, strict)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if times := peakTimes(t, channelRecord(t, result, "A")); len(times) != 0 {
		t.Fatalf("100 sigma peaks = %v, want none", times)
	}
}

func TestDetectZeroNoiseDisablesDetection(t *testing.T) {
	p := pulsePayload(map[string][]float64{"flat": make([]float64, 1001)})

	result, err := peaks.Detect(p, peaks.DefaultParams())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	record := channelRecord(t, result, "flat")
	if times := peakTimes(t, record); len(times) != 0 {
		t.Fatalf("flat trace yielded peaks: %v", times)
	}
	threshold := float64(record["threshold"].(payload.Number))
	if !math.IsInf(threshold, 1) {
		t.Fatalf("threshold = %v, want +Inf for zero noise", threshold)
	}
}

func TestDetectSaturationRejection(t *testing.T) {
	tAxis := testsupport.Linspace(0, 1, 1001)
	y := ditherNoise(testsupport.Sum(
		testsupport.Gaussian(1.0, 0.3, 0.01, tAxis),
		testsupport.Gaussian(5.0, 0.7, 0.01, tAxis),
	), 0.01)
	p := pulsePayload(map[string][]float64{"A": y})

	level := 3.0
	params := peaks.DefaultParams()
	params.MinDistanceSamples = 50
	params.RejectSaturated = true
	params.SaturationLevel = &level

	result, err := peaks.Detect(p, params)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	times := peakTimes(t, channelRecord(t, result, "A"))
	if len(times) != 1 || math.Abs(times[0]-0.3) > 0.005 {
		t.Fatalf("peaks after saturation rejection = %v, want only the pulse near 0.3", times)
	}
}

func TestDetectMaxPeaksKeepsStrongestInTimeOrder(t *testing.T) {
	tAxis := testsupport.Linspace(0, 1, 1001)
	y := ditherNoise(testsupport.Sum(
		testsupport.Gaussian(1.0, 0.2, 0.01, tAxis),
		testsupport.Gaussian(3.0, 0.5, 0.01, tAxis),
		testsupport.Gaussian(2.0, 0.8, 0.01, tAxis),
	), 0.01)
	p := pulsePayload(map[string][]float64{"A": y})

	params := peaks.DefaultParams()
	params.MinDistanceSamples = 50
	params.MaxPeaksPerChannel = 2

	result, err := peaks.Detect(p, params)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	times := peakTimes(t, channelRecord(t, result, "A"))
	if len(times) != 2 {
		t.Fatalf("capped peak count = %d, want 2", len(times))
	}
	if math.Abs(times[0]-0.5) > 0.005 || math.Abs(times[1]-0.8) > 0.005 {
		t.Fatalf("capped peaks = %v, want [0.5 0.8] in time order", times)
	}
}

func TestDetectPretriggerNoise(t *testing.T) {
	tAxis := testsupport.Linspace(0, 1, 1001)
	y := ditherNoise(testsupport.Gaussian(1.0, 0.6, 0.01, tAxis), 0.01)
	p := pulsePayload(map[string][]float64{"A": y})

	params := peaks.DefaultParams()
	params.MinDistanceSamples = 50
	params.NoiseMethod = peaks.NoiseStdPretrigger
	params.PretriggerTimeRange = &peaks.TimeRange{Lo: 0, Hi: 0.1}

	result, err := peaks.Detect(p, params)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	record := channelRecord(t, result, "A")
	noise := float64(record["noise"].(payload.Number))
	if math.Abs(noise-0.01) > 0.001 {
		t.Fatalf("pretrigger noise = %v, want about 0.01", noise)
	}
	if times := peakTimes(t, record); len(times) != 1 {
		t.Fatalf("pretrigger peaks = %v, want 1", times)
	}
}

func TestDetectPretriggerRequiresRange(t *testing.T) {
	params := peaks.DefaultParams()
	params.NoiseMethod = peaks.NoiseStdPretrigger
	if err := params.Validate(); err == nil {
		t.Fatal("expected validation error without pretrigger range")
	}
}

func TestDetectChannelSelection(t *testing.T) {
	tAxis := testsupport.Linspace(0, 1, 1001)
	y := ditherNoise(testsupport.Gaussian(1.0, 0.5, 0.01, tAxis), 0.01)
	p := pulsePayload(map[string][]float64{"A": y, "B": y})

	params := peaks.DefaultParams()
	params.ChannelKeys = []string{"A", "ghost"}

	result, err := peaks.Detect(p, params)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	byChannel, err := paths.Resolve(result, "events.candidate_peaks.by_channel")
	if err != nil {
		t.Fatalf("resolve by_channel: %v", err)
	}
	records := byChannel.(payload.Map)
	if len(records) != 1 {
		t.Fatalf("selected channels = %v, want only A", records.SortedKeys())
	}
	if _, present := records["A"]; !present {
		t.Fatal("channel A missing from results")
	}
}

func TestDetectLengthMismatch(t *testing.T) {
	p := testsupport.Waveform([]float64{0, 1, 2},
		map[string][]float64{"A": {1, 2}}, nil)
	if _, err := peaks.Detect(p, peaks.DefaultParams()); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestDetectParamsRecorded(t *testing.T) {
	tAxis := testsupport.Linspace(0, 1, 1001)
	y := ditherNoise(testsupport.Gaussian(1.0, 0.5, 0.01, tAxis), 0.01)
	p := pulsePayload(map[string][]float64{"A": y})

	params := peaks.DefaultParams()
	params.ThresholdSigma = 6

	result, err := peaks.Detect(p, params)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	recorded, err := paths.Resolve(result, "events.candidate_peaks.params.threshold_sigma")
	if err != nil || recorded != payload.Number(6) {
		t.Fatalf("recorded threshold_sigma = %v (err %v), want 6", recorded, err)
	}
}
