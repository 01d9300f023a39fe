package calculations

import (
	"strings"

	"github.com/cloud-ru/finplan-go/pkg/utils"
)

// PayFrequency периодичность выплаты зарплаты
type PayFrequency string

const (
	PayWeekly    PayFrequency = "weekly"
	PayBiweekly  PayFrequency = "biweekly"
	PayMonthly   PayFrequency = "monthly"
	PayQuarterly PayFrequency = "quarterly"
	PayAnnually  PayFrequency = "annually"
)

var payPeriodsPerYear = map[PayFrequency]int{
	PayWeekly:    52,
	PayBiweekly:  26,
	PayMonthly:   12,
	PayQuarterly: 4,
	PayAnnually:  1,
}

// PeriodsPerYear число выплат в году; 0 для неизвестной периодичности
func (f PayFrequency) PeriodsPerYear() int {
	return payPeriodsPerYear[PayFrequency(strings.ToLower(strings.TrimSpace(string(f))))]
}

// SalaryRecord запись о зарплате
type SalaryRecord struct {
	Employer         string       `json:"employer,omitempty"`
	GrossPerPeriod   float64      `json:"gross_per_period" validate:"gt=0"`
	PayFrequency     PayFrequency `json:"pay_frequency" validate:"required"`
	TaxRatePercent   float64      `json:"tax_rate_percent" validate:"gte=0,lte=100"`
	DeductionsPerPay float64      `json:"deductions_per_period" validate:"gte=0"`
}

// SalarySummary годовые и месячные суммы по зарплате
type SalarySummary struct {
	Employer      string  `json:"employer,omitempty"`
	PaysPerYear   int     `json:"pays_per_year"`
	AnnualGross   Money   `json:"annual_gross"`
	AnnualTax     Money   `json:"annual_tax"`
	AnnualNet     Money   `json:"annual_net"`
	MonthlyGross  Money   `json:"monthly_gross"`
	MonthlyNet    Money   `json:"monthly_net"`
	NetPerPeriod  Money   `json:"net_per_period"`
	EffectiveRate float64 `json:"effective_deduction_rate_percent"`
}

// Validate проверяет запись о зарплате
func (s SalaryRecord) Validate() error {
	if err := checkPositive("gross_per_period", s.GrossPerPeriod); err != nil {
		return err
	}
	if s.PayFrequency.PeriodsPerYear() == 0 {
		return invalid("pay_frequency", "допустимые значения: weekly biweekly monthly quarterly annually")
	}
	if err := checkNonNegative("tax_rate_percent", s.TaxRatePercent); err != nil {
		return err
	}
	if s.TaxRatePercent > 100 {
		return invalid("tax_rate_percent", "значение должно быть ≤ 100")
	}
	return checkNonNegative("deductions_per_period", s.DeductionsPerPay)
}

// ComputeSalary приводит выплату за период к годовым и месячным суммам.
// Налог считается от брутто, вычеты вычитаются после налога.
func ComputeSalary(record SalaryRecord) (*SalarySummary, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	pays := record.PayFrequency.PeriodsPerYear()
	tax := record.GrossPerPeriod * record.TaxRatePercent / 100.0
	netPerPay := record.GrossPerPeriod - tax - record.DeductionsPerPay

	annualGross := record.GrossPerPeriod * float64(pays)
	annualNet := netPerPay * float64(pays)

	return &SalarySummary{
		Employer:      record.Employer,
		PaysPerYear:   pays,
		AnnualGross:   Money(annualGross),
		AnnualTax:     Money(tax * float64(pays)),
		AnnualNet:     Money(annualNet),
		MonthlyGross:  Money(annualGross / 12.0),
		MonthlyNet:    Money(annualNet / 12.0),
		NetPerPeriod:  Money(netPerPay),
		EffectiveRate: utils.Round2((record.GrossPerPeriod - netPerPay) * 100 / record.GrossPerPeriod),
	}, nil
}
