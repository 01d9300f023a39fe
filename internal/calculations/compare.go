package calculations

import (
	"math"

	"github.com/cloud-ru/finplan-go/pkg/utils"
)

// comparisonTolerance относительная разница в общей сумме выплат, которой пренебрегаем
const comparisonTolerance = 1e-9

// CompareLoans сравнивает аннуитетный и дифференцированный кредиты
func CompareLoans(scenario LoanScenario) (*LoanComparison, error) {
	annuity, err := ComputeAmortization(scenario)
	if err != nil {
		return nil, err
	}
	differential, err := ComputeDifferential(scenario)
	if err != nil {
		return nil, err
	}

	totalPaidDiff := annuity.TotalPayment - differential.TotalPayment
	interestDiff := annuity.TotalInterest - differential.TotalInterest

	var cheaperType, recommendation string
	var savings Money

	switch {
	case utils.NearlyEqual(annuity.TotalPayment.Float64(), differential.TotalPayment.Float64(), comparisonTolerance):
		cheaperType = "equal"
		recommendation = "Both repayment types cost the same in total."
	case totalPaidDiff > 0:
		cheaperType = "differential"
		savings = totalPaidDiff
		recommendation = "Differential repayment costs less in total, but the first payments are higher than with a fixed annuity payment."
	default:
		cheaperType = "annuity"
		savings = -totalPaidDiff
		recommendation = "Annuity repayment costs less in total and keeps every monthly payment the same."
	}

	P := scenario.Principal

	return &LoanComparison{
		Principal:                  Money(P),
		AnnualRatePercent:          scenario.AnnualRatePercent,
		TermMonths:                 annuity.TermMonths,
		Annuity:                    annuity,
		Differential:               differential,
		TotalPaymentDiff:           totalPaidDiff,
		InterestDiff:               interestDiff,
		CheaperType:                cheaperType,
		Savings:                    Money(math.Abs(float64(savings))),
		Recommendation:             recommendation,
		AnnuityOverpaymentPercent:  utils.Round2(float64(annuity.TotalInterest) * 100 / P),
		DifferentialOverpaymentPct: utils.Round2(float64(differential.TotalInterest) * 100 / P),
	}, nil
}
