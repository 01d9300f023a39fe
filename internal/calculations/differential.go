package calculations

import (
	"github.com/cloud-ru/finplan-go/pkg/utils"
)

// ComputeDifferential рассчитывает график дифференцированного кредита:
// основной долг гасится равными частями, проценты начисляются на остаток.
func ComputeDifferential(scenario LoanScenario) (*LoanSummary, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	P := scenario.Principal
	n := scenario.TermMonths()
	r := scenario.AnnualRatePercent / 100.0 / 12.0

	principalComponentRaw := P / float64(n)
	remaining := P
	totalPaid := 0.0
	schedule := make([]AmortizationEntry, 0, n)

	for m := 1; m <= n; m++ {
		interest := remaining * r
		principalComponent := principalComponentRaw
		if m == n {
			principalComponent = remaining
		}
		payment := principalComponent + interest

		remaining -= principalComponent
		if m == n || remaining < 0 {
			remaining = 0
		}
		totalPaid += payment

		schedule = append(schedule, AmortizationEntry{
			PeriodIndex:      m,
			DueDate:          utils.AddMonths(scenario.StartDate, m),
			PaymentAmount:    Money(payment),
			PrincipalPortion: Money(principalComponent),
			InterestPortion:  Money(interest),
			RemainingBalance: Money(remaining),
		})
	}

	if !utils.IsFinite(totalPaid) {
		return nil, invalid("annual_rate_percent", "общая сумма выплат не является конечным числом")
	}

	return &LoanSummary{
		Principal:         Money(P),
		AnnualRatePercent: scenario.AnnualRatePercent,
		TermMonths:        n,
		PeriodicPayment:   schedule[0].PaymentAmount,
		FirstPayment:      schedule[0].PaymentAmount,
		LastPayment:       schedule[n-1].PaymentAmount,
		TotalInterest:     Money(totalPaid - P),
		TotalPayment:      Money(totalPaid),
		Schedule:          schedule,
	}, nil
}
