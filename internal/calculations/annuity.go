package calculations

import (
	"math"

	"github.com/cloud-ru/finplan-go/pkg/utils"
)

// Validate проверяет параметры кредита
func (s LoanScenario) Validate() error {
	if err := checkPositive("principal", s.Principal); err != nil {
		return err
	}
	if err := checkNonNegative("annual_rate_percent", s.AnnualRatePercent); err != nil {
		return err
	}
	switch s.TermUnit {
	case TermYears, TermMonths, "":
	default:
		return invalid("term_unit", "допустимые значения: years months")
	}
	if s.TermCount <= 0 {
		return invalid("term_count", "значение должно быть > 0")
	}
	if n := s.TermMonths(); n > MaxTermMonths {
		return invalid("term_count", "срок %d мес. превышает предел %d", n, MaxTermMonths)
	}
	if s.StartDate.IsZero() {
		return invalid("start_date", "обязательное поле")
	}
	return nil
}

// growthFactor возвращает (1+r)^k - 1 через Expm1/Log1p, без потери точности при малых r
func growthFactor(r float64, k int) float64 {
	return math.Expm1(float64(k) * math.Log1p(r))
}

// annuityPayment фиксированный ежемесячный платеж
func annuityPayment(principal, r float64, n int) float64 {
	if r == 0.0 {
		return principal / float64(n)
	}
	g := growthFactor(r, n)
	return principal * r * (g + 1.0) / g
}

// openingBalance остаток долга после k платежей в замкнутой форме:
// B_k = P * ((1+r)^n - (1+r)^k) / ((1+r)^n - 1). Ошибка не накапливается
// от периода к периоду, B_n равен нулю точно.
func openingBalance(principal, r float64, k, n int, gn float64) float64 {
	if k >= n {
		return 0
	}
	if r == 0.0 {
		return principal * float64(n-k) / float64(n)
	}
	return principal * (gn - growthFactor(r, k)) / gn
}

// ComputeAmortization рассчитывает график аннуитетного кредита
func ComputeAmortization(scenario LoanScenario) (*LoanSummary, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	P := scenario.Principal
	n := scenario.TermMonths()
	r := scenario.AnnualRatePercent / 100.0 / 12.0

	gn := 0.0
	if r > 0 {
		gn = growthFactor(r, n)
		if !utils.IsFinite(gn) {
			return nil, invalid("annual_rate_percent", "ставка %.6g%% на %d мес. дает переполнение при расчете платежа", scenario.AnnualRatePercent, n)
		}
	}
	payment := annuityPayment(P, r, n)
	if !utils.IsFinite(payment) {
		return nil, invalid("annual_rate_percent", "платеж не является конечным числом")
	}

	schedule := make([]AmortizationEntry, 0, n)
	opening := P
	totalPayment := 0.0

	for m := 1; m <= n; m++ {
		interest := opening * r
		remaining := openingBalance(P, r, m, n, gn)
		principalComponent := opening - remaining
		totalPayment += principalComponent + interest

		schedule = append(schedule, AmortizationEntry{
			PeriodIndex:      m,
			DueDate:          utils.AddMonths(scenario.StartDate, m),
			PaymentAmount:    Money(principalComponent + interest),
			PrincipalPortion: Money(principalComponent),
			InterestPortion:  Money(interest),
			RemainingBalance: Money(remaining),
		})
		opening = remaining
	}

	return &LoanSummary{
		Principal:         Money(P),
		AnnualRatePercent: scenario.AnnualRatePercent,
		TermMonths:        n,
		PeriodicPayment:   Money(payment),
		FirstPayment:      schedule[0].PaymentAmount,
		LastPayment:       schedule[n-1].PaymentAmount,
		TotalInterest:     Money(totalPayment - P),
		TotalPayment:      Money(totalPayment),
		Schedule:          schedule,
	}, nil
}
