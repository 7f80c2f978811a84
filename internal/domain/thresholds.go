package domain

// Thresholds is the single source of truth for the qualitative terms the
// prompt teaches the model. Serializer-derived fields and the prompt
// instruction text must agree on these values, so both consume one instance.
type Thresholds struct {
	// HighValueMin is the deal value above which a deal counts as "high value".
	HighValueMin float64
	// AtRiskProbabilityMax is the close probability below which a deal is "at risk".
	AtRiskProbabilityMax int
	// StaleContactDays is the days without contact after which a contact is "stale".
	StaleContactDays int
	// UpcomingEventDays is the window in days for an event to count as "upcoming".
	UpcomingEventDays int
}

// DefaultThresholds returns the stock controlled-vocabulary thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighValueMin:         50000,
		AtRiskProbabilityMax: 30,
		StaleContactDays:     30,
		UpcomingEventDays:    7,
	}
}
