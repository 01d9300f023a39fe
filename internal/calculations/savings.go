package calculations

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cloud-ru/finplan-go/pkg/utils"
)

func (g SavingsGoal) cadence() Frequency {
	if g.ContributionCadence.normalize() == FrequencyNone {
		return FrequencyMonthly
	}
	return g.ContributionCadence.normalize()
}

// Validate проверяет цель накопления
func (g SavingsGoal) Validate() error {
	if err := checkPositive("target_amount", g.TargetAmount); err != nil {
		return err
	}
	if err := checkNonNegative("current_amount", g.CurrentAmount); err != nil {
		return err
	}
	if err := checkNonNegative("annual_rate_percent", g.AnnualRatePercent); err != nil {
		return err
	}
	if g.TargetDate.IsZero() {
		return invalid("target_date", "обязательное поле")
	}
	if g.cadence().PeriodsPerYear() == 0 {
		return invalid("contribution_cadence", "допустимые значения: daily monthly quarterly annually")
	}
	return nil
}

// periodsBetween целое число периодов (с отбрасыванием остатка) от from до to
func periodsBetween(cadence Frequency, from, to utils.Date) int {
	switch cadence {
	case FrequencyDaily:
		return utils.DaysBetween(from, to)
	case FrequencyQuarterly:
		return utils.MonthsBetween(from, to) / 3
	case FrequencyAnnually:
		return utils.MonthsBetween(from, to) / 12
	}
	return utils.MonthsBetween(from, to)
}

// advance сдвигает дату на n периодов
func advance(cadence Frequency, from utils.Date, n int) utils.Date {
	switch cadence {
	case FrequencyDaily:
		return utils.AddDays(from, n)
	case FrequencyQuarterly:
		return utils.AddMonths(from, 3*n)
	case FrequencyAnnually:
		return utils.AddMonths(from, 12*n)
	}
	return utils.AddMonths(from, n)
}

// projectCompletion ищет первый период, в котором накопления достигают цели.
// Возвращает false, если цель не достигается за GoalHorizonYears.
func projectCompletion(goal SavingsGoal, contribution float64, cadence Frequency) (int, bool) {
	if goal.CurrentAmount >= goal.TargetAmount {
		return 0, true
	}
	r := goal.AnnualRatePercent / 100.0 / float64(cadence.PeriodsPerYear())
	if contribution <= 0 && (r == 0 || goal.CurrentAmount == 0) {
		return 0, false
	}

	horizon := GoalHorizonYears * cadence.PeriodsPerYear()
	balance := goal.CurrentAmount
	for p := 1; p <= horizon; p++ {
		balance += balance * r
		balance += contribution
		if balance >= goal.TargetAmount {
			return p, true
		}
	}
	return 0, false
}

// ComputeGoalProjection считает темп накопления для цели на дату asOf
func ComputeGoalProjection(goal SavingsGoal, contributionPerPeriod float64, asOf time.Time) (*SavingsGoalProjection, error) {
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := checkNonNegative("contribution_per_period", contributionPerPeriod); err != nil {
		return nil, err
	}

	cadence := goal.cadence()
	today := utils.DateOf(asOf)
	periods := max(0, periodsBetween(cadence, today, goal.TargetDate))
	remaining := math.Max(0, goal.TargetAmount-goal.CurrentAmount)
	funded := goal.CurrentAmount >= goal.TargetAmount

	required := remaining
	if periods > 0 {
		required = remaining / float64(periods)
	}

	projection := &SavingsGoalProjection{
		Name:                         goal.Name,
		PeriodsRemaining:             periods,
		RequiredPeriodicContribution: Money(required),
		ContributionPerPeriod:        Money(contributionPerPeriod),
		IsAchievable:                 funded || (periods > 0 && contributionPerPeriod >= required),
		ProgressPercentage:           utils.Round2(goal.CurrentAmount * 100 / goal.TargetAmount),
		RemainingAmount:              Money(remaining),
		MonthlyEquivalentRequired:    Money(required * cadence.MonthlyFactor()),
		MonthlyEquivalentPlanned:     Money(contributionPerPeriod * cadence.MonthlyFactor()),
	}

	if p, ok := projectCompletion(goal, contributionPerPeriod, cadence); ok {
		date := advance(cadence, today, p)
		projection.ExpectedCompletionDate = &date
		projection.Reachable = true
	}

	return projection, nil
}

// SummarizeGoals сводит несколько целей с разной периодичностью к месячным суммам
func SummarizeGoals(goals []GoalInput, asOf time.Time) (*GoalsOverview, error) {
	overview := &GoalsOverview{
		Goals: make([]SavingsGoalProjection, 0, len(goals)),
	}

	for i, in := range goals {
		projection, err := ComputeGoalProjection(in.Goal, in.ContributionPerPeriod, asOf)
		if err != nil {
			var se *ScenarioError
			if errors.As(err, &se) {
				return nil, &ScenarioError{Field: fmt.Sprintf("goals[%d].%s", i, se.Field), Reason: se.Reason}
			}
			return nil, err
		}

		overview.TotalSaved += Money(in.Goal.CurrentAmount)
		overview.TotalTarget += Money(in.Goal.TargetAmount)
		overview.TotalMonthlyNeeded += projection.MonthlyEquivalentRequired
		overview.TotalMonthlyPlanned += projection.MonthlyEquivalentPlanned
		if projection.IsAchievable {
			overview.AchievableCount++
		}
		overview.Goals = append(overview.Goals, *projection)
	}

	if overview.TotalTarget > 0 {
		overview.OverallProgressPercent = utils.Round2(float64(overview.TotalSaved) * 100 / float64(overview.TotalTarget))
	}
	return overview, nil
}

