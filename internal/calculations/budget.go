package calculations

import (
	"fmt"

	"github.com/cloud-ru/finplan-go/pkg/utils"
)

// Validate проверяет бюджет
func (b BudgetPlan) Validate() error {
	if err := checkNonNegative("monthly_income", b.MonthlyIncome); err != nil {
		return err
	}
	for i, c := range b.Categories {
		if c.Name == "" {
			return invalid(fmt.Sprintf("categories[%d].name", i), "обязательное поле")
		}
		if err := checkNonNegative(fmt.Sprintf("categories[%d].planned", i), c.Planned); err != nil {
			return err
		}
		if err := checkNonNegative(fmt.Sprintf("categories[%d].actual", i), c.Actual); err != nil {
			return err
		}
	}
	return nil
}

// ComputeBudget сравнивает план и факт по статьям месячного бюджета
func ComputeBudget(plan BudgetPlan) (*BudgetSummary, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	income := plan.MonthlyIncome
	summary := &BudgetSummary{
		MonthlyIncome: Money(income),
		OverBudget:    []string{},
		Categories:    make([]CategoryVariance, 0, len(plan.Categories)),
	}

	var planned, actual float64
	for _, c := range plan.Categories {
		planned += c.Planned
		actual += c.Actual

		share := 0.0
		if income > 0 {
			share = utils.Round2(c.Actual * 100 / income)
		}
		over := c.Actual > c.Planned
		if over {
			summary.OverBudget = append(summary.OverBudget, c.Name)
		}
		summary.Categories = append(summary.Categories, CategoryVariance{
			Name:          c.Name,
			Planned:       Money(c.Planned),
			Actual:        Money(c.Actual),
			Variance:      Money(c.Planned - c.Actual),
			ShareOfIncome: share,
			OverBudget:    over,
		})
	}

	summary.TotalPlanned = Money(planned)
	summary.TotalActual = Money(actual)
	summary.PlannedSurplus = Money(income - planned)
	summary.ActualSurplus = Money(income - actual)
	if income > 0 {
		summary.SavingsRatePercent = utils.Round2((income - actual) * 100 / income)
	}
	return summary, nil
}
