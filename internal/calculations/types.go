package calculations

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/cloud-ru/finplan-go/pkg/utils"
)

// Money денежная величина. Внутри хранится с полной точностью,
// до копеек округляется только при сериализации.
type Money float64

// Float64 возвращает значение без округления
func (m Money) Float64() float64 {
	return float64(m)
}

// Cents возвращает значение, округленное до копеек (половина округляется от нуля)
func (m Money) Cents() decimal.Decimal {
	return decimal.NewFromFloat(float64(m)).Round(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	if !utils.IsFinite(float64(m)) {
		return []byte("null"), nil
	}
	return []byte(m.Cents().StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Money(v)
	return nil
}

// TermUnit единица срока кредита
type TermUnit string

const (
	TermYears  TermUnit = "years"
	TermMonths TermUnit = "months"
)

// LoanScenario параметры кредита
type LoanScenario struct {
	Principal         float64    `json:"principal" validate:"gt=0"`
	AnnualRatePercent float64    `json:"annual_rate_percent" validate:"gte=0"`
	TermCount         int        `json:"term_count" validate:"gt=0"`
	TermUnit          TermUnit   `json:"term_unit" validate:"omitempty,oneof=years months"`
	StartDate         utils.Date `json:"start_date"`
}

// TermMonths возвращает срок в месяцах
func (s LoanScenario) TermMonths() int {
	if s.TermUnit == TermYears {
		return s.TermCount * 12
	}
	return s.TermCount
}

// AmortizationEntry одна строка графика платежей
type AmortizationEntry struct {
	PeriodIndex      int        `json:"period_index"`
	DueDate          utils.Date `json:"due_date"`
	PaymentAmount    Money      `json:"payment_amount"`
	PrincipalPortion Money      `json:"principal_portion"`
	InterestPortion  Money      `json:"interest_portion"`
	RemainingBalance Money      `json:"remaining_balance"`
}

// LoanSummary сводка по кредиту
type LoanSummary struct {
	Principal         Money               `json:"principal"`
	AnnualRatePercent float64             `json:"annual_rate_percent"`
	TermMonths        int                 `json:"term_months"`
	PeriodicPayment   Money               `json:"periodic_payment"`
	FirstPayment      Money               `json:"first_payment,omitempty"`
	LastPayment       Money               `json:"last_payment,omitempty"`
	TotalInterest     Money               `json:"total_interest"`
	TotalPayment      Money               `json:"total_payment"`
	Schedule          []AmortizationEntry `json:"schedule,omitempty"`
}

// Summary возвращает копию без графика (для сохранения)
func (s LoanSummary) Summary() interface{} {
	s.Schedule = nil
	return s
}

// LoanComparison сравнение аннуитетной и дифференцированной схем
type LoanComparison struct {
	Principal                  Money        `json:"principal"`
	AnnualRatePercent          float64      `json:"annual_rate_percent"`
	TermMonths                 int          `json:"term_months"`
	Annuity                    *LoanSummary `json:"annuity"`
	Differential               *LoanSummary `json:"differential"`
	TotalPaymentDiff           Money        `json:"total_payment_diff"`
	InterestDiff               Money        `json:"interest_diff"`
	CheaperType                string       `json:"cheaper_type"`
	Savings                    Money        `json:"savings"`
	Recommendation             string       `json:"recommendation"`
	AnnuityOverpaymentPercent  float64      `json:"annuity_overpayment_percent"`
	DifferentialOverpaymentPct float64      `json:"differential_overpayment_percent"`
}

// Summary возвращает копию без графиков
func (c LoanComparison) Summary() interface{} {
	if c.Annuity != nil {
		a := c.Annuity.Summary().(LoanSummary)
		c.Annuity = &a
	}
	if c.Differential != nil {
		d := c.Differential.Summary().(LoanSummary)
		c.Differential = &d
	}
	return c
}

// MortgageScenario параметры ипотеки
type MortgageScenario struct {
	HomePrice              float64    `json:"home_price" validate:"gt=0"`
	DownPayment            float64    `json:"down_payment" validate:"gte=0"`
	AnnualRatePercent      float64    `json:"annual_rate_percent" validate:"gte=0"`
	TermYears              int        `json:"term_years" validate:"gt=0"`
	PropertyTaxRatePercent float64    `json:"property_tax_rate_percent" validate:"gte=0"`
	AnnualInsurance        float64    `json:"annual_insurance" validate:"gte=0"`
	MonthlyHOA             float64    `json:"monthly_hoa" validate:"gte=0"`
	StartDate              utils.Date `json:"start_date"`
}

// MortgageSummary разбивка ежемесячного платежа по ипотеке
type MortgageSummary struct {
	HomePrice            Money        `json:"home_price"`
	DownPayment          Money        `json:"down_payment"`
	LoanAmount           Money        `json:"loan_amount"`
	LoanToValuePercent   float64      `json:"loan_to_value_percent"`
	PrincipalAndInterest Money        `json:"principal_and_interest"`
	MonthlyPropertyTax   Money        `json:"monthly_property_tax"`
	MonthlyInsurance     Money        `json:"monthly_insurance"`
	MonthlyHOA           Money        `json:"monthly_hoa"`
	TotalMonthlyPayment  Money        `json:"total_monthly_payment"`
	TotalInterest        Money        `json:"total_interest"`
	TotalCost            Money        `json:"total_cost"`
	PayoffDate           utils.Date   `json:"payoff_date"`
	Amortization         *LoanSummary `json:"amortization,omitempty"`
}

// Summary возвращает копию без графика
func (s MortgageSummary) Summary() interface{} {
	s.Amortization = nil
	return s
}

// InvestmentScenario параметры инвестиции
type InvestmentScenario struct {
	InitialAmount           float64   `json:"initial_amount" validate:"gte=0"`
	PeriodicContribution    float64   `json:"periodic_contribution" validate:"gte=0"`
	ContributionFrequency   Frequency `json:"contribution_frequency" validate:"omitempty,oneof=none monthly quarterly annual annually"`
	ContributionAtBeginning bool      `json:"contribution_at_beginning"`
	AnnualRatePercent       float64   `json:"annual_rate_percent" validate:"gte=0"`
	CompoundingFrequency    Frequency `json:"compounding_frequency" validate:"omitempty,oneof=daily monthly quarterly annual annually"`
	TermYears               int       `json:"term_years" validate:"gt=0"`
}

// GrowthPoint значение инвестиции на конец года
type GrowthPoint struct {
	TimeIndex          int   `json:"time_index"`
	AccumulatedValue   Money `json:"accumulated_value"`
	TotalContributions Money `json:"total_contributions"`
	InterestEarned     Money `json:"interest_earned"`
}

// InvestmentSummary сводка по инвестиции
type InvestmentSummary struct {
	FinalValue              Money         `json:"final_value"`
	InterestEarned          Money         `json:"interest_earned"`
	TotalContributions      Money         `json:"total_contributions"`
	ROIPercent              float64       `json:"roi_percent"`
	AnnualizedReturnPercent float64       `json:"annualized_return_percent"`
	PeriodsPerYear          int           `json:"periods_per_year"`
	GrowthSeries            []GrowthPoint `json:"growth_series,omitempty"`
}

// Summary возвращает копию без ряда
func (s InvestmentSummary) Summary() interface{} {
	s.GrowthSeries = nil
	return s
}

// RetirementProfile исходные данные для пенсионного прогноза
type RetirementProfile struct {
	CurrentAge            int     `json:"current_age" validate:"gte=0"`
	RetirementAge         int     `json:"retirement_age" validate:"gtfield=CurrentAge"`
	LifeExpectancy        int     `json:"life_expectancy" validate:"gtfield=RetirementAge"`
	CurrentSavings        float64 `json:"current_savings" validate:"gte=0"`
	MonthlyContribution   float64 `json:"monthly_contribution" validate:"gte=0"`
	ExpectedReturnPercent float64 `json:"expected_return_percent" validate:"gte=0"`
	InflationRatePercent  float64 `json:"inflation_rate_percent" validate:"gte=0"`
	DesiredMonthlyIncome  float64 `json:"desired_monthly_income" validate:"gte=0"`
}

// RetirementPoint накопления на конец года с возрастом
type RetirementPoint struct {
	Year    int   `json:"year"`
	Age     int   `json:"age"`
	Savings Money `json:"savings"`
}

// RetirementProjection результат пенсионного прогноза
type RetirementProjection struct {
	YearsToRetirement           int               `json:"years_to_retirement"`
	YearsInRetirement           int               `json:"years_in_retirement"`
	ProjectedSavings            Money             `json:"projected_savings"`
	RequiredSavings             Money             `json:"required_savings"`
	IsGoalMet                   bool              `json:"is_goal_met"`
	ShortfallOrSurplus          Money             `json:"shortfall_or_surplus"`
	AnnualIncomeAtRetirement    Money             `json:"annual_income_at_retirement"`
	RequiredMonthlyContribution Money             `json:"required_monthly_contribution"`
	TotalContributions          Money             `json:"total_contributions"`
	YearByYearSeries            []RetirementPoint `json:"year_by_year_series,omitempty"`
}

// Summary возвращает копию без ряда
func (p RetirementProjection) Summary() interface{} {
	p.YearByYearSeries = nil
	return p
}

// SavingsGoal цель накопления
type SavingsGoal struct {
	Name                string     `json:"name" validate:"required"`
	TargetAmount        float64    `json:"target_amount" validate:"gt=0"`
	CurrentAmount       float64    `json:"current_amount" validate:"gte=0"`
	TargetDate          utils.Date `json:"target_date"`
	ContributionCadence Frequency  `json:"contribution_cadence" validate:"omitempty,oneof=daily monthly quarterly annual annually"`
	AnnualRatePercent   float64    `json:"annual_rate_percent,omitempty" validate:"gte=0"`
}

// SavingsGoalProjection прогноз по цели накопления
type SavingsGoalProjection struct {
	Name                         string      `json:"name"`
	PeriodsRemaining             int         `json:"periods_remaining"`
	RequiredPeriodicContribution Money       `json:"required_periodic_contribution"`
	ContributionPerPeriod        Money       `json:"contribution_per_period"`
	IsAchievable                 bool        `json:"is_achievable"`
	Reachable                    bool        `json:"reachable"`
	ExpectedCompletionDate       *utils.Date `json:"expected_completion_date"`
	ProgressPercentage           float64     `json:"progress_percentage"`
	RemainingAmount              Money       `json:"remaining_amount"`
	MonthlyEquivalentRequired    Money       `json:"monthly_equivalent_required"`
	MonthlyEquivalentPlanned     Money       `json:"monthly_equivalent_planned"`
}

// GoalInput цель вместе с планируемым взносом
type GoalInput struct {
	Goal                  SavingsGoal `json:"goal"`
	ContributionPerPeriod float64     `json:"contribution_per_period" validate:"gte=0"`
}

// GoalsOverview сводка по нескольким целям
type GoalsOverview struct {
	TotalSaved             Money                   `json:"total_saved"`
	TotalTarget            Money                   `json:"total_target"`
	TotalMonthlyNeeded     Money                   `json:"total_monthly_needed"`
	TotalMonthlyPlanned    Money                   `json:"total_monthly_planned"`
	OverallProgressPercent float64                 `json:"overall_progress_percent"`
	AchievableCount        int                     `json:"achievable_count"`
	Goals                  []SavingsGoalProjection `json:"goals"`
}

// BudgetCategory статья бюджета
type BudgetCategory struct {
	Name    string  `json:"name" validate:"required"`
	Planned float64 `json:"planned" validate:"gte=0"`
	Actual  float64 `json:"actual" validate:"gte=0"`
}

// BudgetPlan месячный бюджет
type BudgetPlan struct {
	MonthlyIncome float64          `json:"monthly_income" validate:"gte=0"`
	Categories    []BudgetCategory `json:"categories" validate:"dive"`
}

// CategoryVariance отклонение по статье
type CategoryVariance struct {
	Name          string  `json:"name"`
	Planned       Money   `json:"planned"`
	Actual        Money   `json:"actual"`
	Variance      Money   `json:"variance"`
	ShareOfIncome float64 `json:"share_of_income_percent"`
	OverBudget    bool    `json:"over_budget"`
}

// BudgetSummary сводка по бюджету
type BudgetSummary struct {
	MonthlyIncome      Money              `json:"monthly_income"`
	TotalPlanned       Money              `json:"total_planned"`
	TotalActual        Money              `json:"total_actual"`
	PlannedSurplus     Money              `json:"planned_surplus"`
	ActualSurplus      Money              `json:"actual_surplus"`
	SavingsRatePercent float64            `json:"savings_rate_percent"`
	OverBudget         []string           `json:"over_budget"`
	Categories         []CategoryVariance `json:"categories"`
}
