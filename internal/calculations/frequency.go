package calculations

import (
	"math"
	"strings"
)

// Frequency периодичность начисления процентов или взносов
type Frequency string

const (
	FrequencyNone      Frequency = "none"
	FrequencyDaily     Frequency = "daily"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnually  Frequency = "annually"
	// FrequencyAnnual синоним FrequencyAnnually
	FrequencyAnnual Frequency = "annual"
)

// normalize приводит синонимы к каноническому виду
func (f Frequency) normalize() Frequency {
	switch Frequency(strings.ToLower(strings.TrimSpace(string(f)))) {
	case FrequencyDaily:
		return FrequencyDaily
	case FrequencyMonthly:
		return FrequencyMonthly
	case FrequencyQuarterly:
		return FrequencyQuarterly
	case FrequencyAnnually, FrequencyAnnual:
		return FrequencyAnnually
	case FrequencyNone, "":
		return FrequencyNone
	}
	return f
}

// PeriodsPerYear число периодов в году; 0 для none и неизвестных значений
func (f Frequency) PeriodsPerYear() int {
	switch f.normalize() {
	case FrequencyDaily:
		return 365
	case FrequencyMonthly:
		return 12
	case FrequencyQuarterly:
		return 4
	case FrequencyAnnually:
		return 1
	}
	return 0
}

// MonthlyFactor множитель для перевода взноса этой периодичности в месячный
func (f Frequency) MonthlyFactor() float64 {
	return float64(f.PeriodsPerYear()) / 12.0
}

// contributionStep шаг (в периодах начисления внутри года) между взносами,
// когда взносы реже начислений. Отношение округляется до ближайшего целого:
// ежеквартальные взносы при ежедневном начислении идут каждые 91 день.
func contributionStep(periodsPerYear, contributionsPerYear int) int {
	step := int(math.Round(float64(periodsPerYear) / float64(contributionsPerYear)))
	if step < 1 {
		step = 1
	}
	return step
}
