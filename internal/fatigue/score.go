package fatigue

import "time"

// Metrics are the raw fatigue indicators for one period.
type Metrics struct {
	// BlinkRate is blinks per minute over the rate window.
	BlinkRate float64 `json:"blink_rate"`
	// AvgBlinkDuration is the mean length of the blinks kept in the blink window.
	AvgBlinkDuration time.Duration `json:"avg_blink_duration"`
	YawnCount        int           `json:"yawn_count"`
	DroopEvents      int           `json:"droop_events"`
	// Perclos is the percentage of recent frames with both eyes closed.
	Perclos float64 `json:"perclos"`
}

// Level buckets a fatigue score.
type Level string

const (
	LevelFresh    Level = "fresh"
	LevelMild     Level = "mild"
	LevelModerate Level = "moderate"
	LevelSevere   Level = "severe"
)

// Score thresholds between levels. SevereScore also makes a break due.
const (
	MildScore     = 20
	ModerateScore = 40
	SevereScore   = 60
	MaxScore      = 100
)

// Score combines the indicators with a fixed additive schedule. Each factor
// contributes a bounded number of points and the total is capped at MaxScore.
func Score(m Metrics) int {
	score := 0

	switch {
	case m.BlinkRate > 25:
		score += 20
	case m.BlinkRate > 20:
		score += 10
	}

	switch {
	case m.AvgBlinkDuration > 300*time.Millisecond:
		score += 20
	case m.AvgBlinkDuration > 200*time.Millisecond:
		score += 10
	}

	score += min(10*min(max(0, m.YawnCount), 3), 25)
	score += min(10*min(max(0, m.DroopEvents), 2), 20)

	switch {
	case m.Perclos >= 30:
		score += 25
	case m.Perclos >= 15:
		score += 15
	case m.Perclos >= 8:
		score += 5
	}

	return min(score, MaxScore)
}

// LevelFor buckets score.
func LevelFor(score int) Level {
	switch {
	case score < MildScore:
		return LevelFresh
	case score < ModerateScore:
		return LevelMild
	case score < SevereScore:
		return LevelModerate
	default:
		return LevelSevere
	}
}
