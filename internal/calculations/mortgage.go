package calculations

import "github.com/cloud-ru/finplan-go/pkg/utils"

// Validate проверяет параметры ипотеки
func (s MortgageScenario) Validate() error {
	if err := checkPositive("home_price", s.HomePrice); err != nil {
		return err
	}
	if err := checkNonNegative("down_payment", s.DownPayment); err != nil {
		return err
	}
	if s.DownPayment >= s.HomePrice {
		return invalid("down_payment", "значение должно быть меньше home_price")
	}
	if err := checkNonNegative("property_tax_rate_percent", s.PropertyTaxRatePercent); err != nil {
		return err
	}
	if err := checkNonNegative("annual_insurance", s.AnnualInsurance); err != nil {
		return err
	}
	return checkNonNegative("monthly_hoa", s.MonthlyHOA)
}

// loanScenario кредитная часть ипотеки
func (s MortgageScenario) loanScenario() LoanScenario {
	return LoanScenario{
		Principal:         s.HomePrice - s.DownPayment,
		AnnualRatePercent: s.AnnualRatePercent,
		TermCount:         s.TermYears,
		TermUnit:          TermYears,
		StartDate:         s.StartDate,
	}
}

// ComputeMortgage раскладывает ежемесячный платеж по ипотеке на
// основной долг с процентами, налог на имущество, страховку и взносы HOA.
func ComputeMortgage(scenario MortgageScenario) (*MortgageSummary, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	loan, err := ComputeAmortization(scenario.loanScenario())
	if err != nil {
		return nil, err
	}

	tax := scenario.HomePrice * scenario.PropertyTaxRatePercent / 100.0 / 12.0
	insurance := scenario.AnnualInsurance / 12.0
	hoa := scenario.MonthlyHOA
	escrow := (tax + insurance + hoa) * float64(loan.TermMonths)
	loanAmount := scenario.HomePrice - scenario.DownPayment

	return &MortgageSummary{
		HomePrice:            Money(scenario.HomePrice),
		DownPayment:          Money(scenario.DownPayment),
		LoanAmount:           Money(loanAmount),
		LoanToValuePercent:   utils.Round2(loanAmount * 100 / scenario.HomePrice),
		PrincipalAndInterest: loan.PeriodicPayment,
		MonthlyPropertyTax:   Money(tax),
		MonthlyInsurance:     Money(insurance),
		MonthlyHOA:           Money(hoa),
		TotalMonthlyPayment:  loan.PeriodicPayment + Money(tax+insurance+hoa),
		TotalInterest:        loan.TotalInterest,
		TotalCost:            Money(scenario.DownPayment) + loan.TotalPayment + Money(escrow),
		PayoffDate:           loan.Schedule[len(loan.Schedule)-1].DueDate,
		Amortization:         loan,
	}, nil
}
