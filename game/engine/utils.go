package engine

import "time"

const (
	CompletionBonus = 100

	// Elapsed time past this threshold costs one point per slowPenaltyStep
	slowThreshold   = 1200
	slowPenaltyStep = 30
)

// timeBonuses maps an elapsed-minutes ceiling to the bonus awarded below it
var timeBonuses = []struct {
	underMinutes int
	bonus        int
}{
	{5, 350},
	{10, 250},
	{15, 150},
	{20, 50},
}

// TimeBonus returns the bonus for finishing in the given elapsed time
func TimeBonus(elapsed time.Duration) int {
	minutes := int(elapsed.Seconds()) / 60
	for _, tb := range timeBonuses {
		if minutes < tb.underMinutes {
			return tb.bonus
		}
	}
	return 0
}

// TimePenalty returns one point for every 30 seconds past the twenty-minute mark
func TimePenalty(elapsed time.Duration) int {
	seconds := int(elapsed.Seconds())
	if seconds <= slowThreshold {
		return 0
	}
	return (seconds - slowThreshold) / slowPenaltyStep
}

// FinalScore combines the running score with the completion bonus and the time
// bonus or penalty, floored at zero
func FinalScore(score int, elapsed time.Duration) int {
	final := score + CompletionBonus + TimeBonus(elapsed) - TimePenalty(elapsed)
	if final < 0 {
		return 0
	}
	return final
}
