package tools

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/finplan-go/internal/calculations"
	"github.com/cloud-ru/finplan-go/internal/config"
	"github.com/cloud-ru/finplan-go/internal/validators"
	"github.com/cloud-ru/finplan-go/pkg/utils"
)

// loanParams разбирает и проверяет параметры кредита.
// Без start_date график начинается с текущей даты.
func loanParams(cfg *config.Config, now func() time.Time, params map[string]interface{}) (calculations.LoanScenario, error) {
	var s calculations.LoanScenario
	if err := decodeParams(params, &s); err != nil {
		return s, err
	}
	if s.TermUnit == "" {
		s.TermUnit = calculations.TermMonths
	}
	if s.StartDate.IsZero() {
		s.StartDate = utils.DateOf(now())
	}
	if err := validators.Struct(s); err != nil {
		return s, err
	}
	if err := validators.CheckPrincipal(cfg, "principal", s.Principal); err != nil {
		return s, err
	}
	if err := validators.CheckRate(cfg, "annual_rate_percent", s.AnnualRatePercent); err != nil {
		return s, err
	}
	if err := validators.CheckMonths(cfg, s.TermMonths()); err != nil {
		return s, err
	}
	return s, nil
}

func loanAttributes(ctx context.Context, s calculations.LoanScenario) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Float64("principal", s.Principal),
		attribute.Float64("annual_rate_percent", s.AnnualRatePercent),
		attribute.Int("term_months", s.TermMonths()),
	)
}

// LoanAmortizationHandler обрабатывает запрос на расчет аннуитетного кредита
func LoanAmortizationHandler(cfg *config.Config, now func() time.Time) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		s, err := loanParams(cfg, now, params)
		if err != nil {
			return nil, err
		}
		loanAttributes(ctx, s)

		summary, err := calculations.ComputeAmortization(s)
		if err != nil {
			return nil, err
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Float64("periodic_payment", summary.PeriodicPayment.Float64()),
			attribute.Float64("total_payment", summary.TotalPayment.Float64()),
		)
		return summary, nil
	}
}

// LoanScheduleDifferentialHandler обрабатывает запрос на расчет дифференцированного кредита
func LoanScheduleDifferentialHandler(cfg *config.Config, now func() time.Time) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		s, err := loanParams(cfg, now, params)
		if err != nil {
			return nil, err
		}
		loanAttributes(ctx, s)

		summary, err := calculations.ComputeDifferential(s)
		if err != nil {
			return nil, err
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Float64("first_payment", summary.FirstPayment.Float64()),
			attribute.Float64("last_payment", summary.LastPayment.Float64()),
		)
		return summary, nil
	}
}

// CompareLoanSchedulesHandler сравнивает две схемы погашения
func CompareLoanSchedulesHandler(cfg *config.Config, now func() time.Time) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		s, err := loanParams(cfg, now, params)
		if err != nil {
			return nil, err
		}
		loanAttributes(ctx, s)

		comparison, err := calculations.CompareLoans(s)
		if err != nil {
			return nil, err
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("cheaper_type", comparison.CheaperType))
		return comparison, nil
	}
}

// MortgageBreakdownHandler раскладывает ежемесячный платеж по ипотеке
func MortgageBreakdownHandler(cfg *config.Config, now func() time.Time) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		var s calculations.MortgageScenario
		if err := decodeParams(params, &s); err != nil {
			return nil, err
		}
		if s.StartDate.IsZero() {
			s.StartDate = utils.DateOf(now())
		}
		if err := validators.Struct(s); err != nil {
			return nil, err
		}
		if err := validators.CheckPrincipal(cfg, "home_price", s.HomePrice); err != nil {
			return nil, err
		}
		if err := validators.CheckRate(cfg, "annual_rate_percent", s.AnnualRatePercent); err != nil {
			return nil, err
		}
		if err := validators.CheckYears(cfg, "term_years", s.TermYears); err != nil {
			return nil, err
		}

		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Float64("home_price", s.HomePrice),
			attribute.Float64("down_payment", s.DownPayment),
			attribute.Int("term_years", s.TermYears),
		)

		summary, err := calculations.ComputeMortgage(s)
		if err != nil {
			return nil, err
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Float64("total_monthly_payment", summary.TotalMonthlyPayment.Float64()),
		)
		return summary, nil
	}
}

// InvestmentGrowthHandler считает рост инвестиции
func InvestmentGrowthHandler(cfg *config.Config) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		var s calculations.InvestmentScenario
		if err := decodeParams(params, &s); err != nil {
			return nil, err
		}
		if err := validators.Struct(s); err != nil {
			return nil, err
		}
		if err := validators.CheckAmount(cfg, "initial_amount", s.InitialAmount); err != nil {
			return nil, err
		}
		if err := validators.CheckContribution(cfg, "periodic_contribution", s.PeriodicContribution); err != nil {
			return nil, err
		}
		if err := validators.CheckRate(cfg, "annual_rate_percent", s.AnnualRatePercent); err != nil {
			return nil, err
		}
		if err := validators.CheckYears(cfg, "term_years", s.TermYears); err != nil {
			return nil, err
		}

		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Float64("initial_amount", s.InitialAmount),
			attribute.Float64("periodic_contribution", s.PeriodicContribution),
			attribute.Int("term_years", s.TermYears),
		)

		summary, err := calculations.ComputeGrowth(s)
		if err != nil {
			return nil, err
		}
		if err := validators.CheckBalance(cfg, "final_value", summary.FinalValue.Float64()); err != nil {
			return nil, err
		}
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Float64("final_value", summary.FinalValue.Float64()),
			attribute.Float64("roi_percent", summary.ROIPercent),
		)
		return summary, nil
	}
}

// RetirementProjectionHandler строит пенсионный прогноз
func RetirementProjectionHandler(cfg *config.Config) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		var p calculations.RetirementProfile
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if err := validators.Struct(p); err != nil {
			return nil, err
		}
		if err := validators.CheckAmount(cfg, "current_savings", p.CurrentSavings); err != nil {
			return nil, err
		}
		if err := validators.CheckContribution(cfg, "monthly_contribution", p.MonthlyContribution); err != nil {
			return nil, err
		}
		if err := validators.CheckRate(cfg, "expected_return_percent", p.ExpectedReturnPercent); err != nil {
			return nil, err
		}
		if err := validators.CheckRate(cfg, "inflation_rate_percent", p.InflationRatePercent); err != nil {
			return nil, err
		}

		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int("current_age", p.CurrentAge),
			attribute.Int("retirement_age", p.RetirementAge),
			attribute.Int("life_expectancy", p.LifeExpectancy),
		)

		projection, err := calculations.ComputeRetirementProjection(p)
		if err != nil {
			return nil, err
		}
		if err := validators.CheckBalance(cfg, "projected_savings", projection.ProjectedSavings.Float64()); err != nil {
			return nil, err
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("is_goal_met", projection.IsGoalMet))
		return projection, nil
	}
}

// goalProjectionParams цель накопления с планируемым взносом.
// as_of по умолчанию текущая дата.
type goalProjectionParams struct {
	calculations.SavingsGoal
	ContributionPerPeriod float64    `json:"contribution_per_period"`
	AsOf                  utils.Date `json:"as_of"`
}

// SavingsGoalProjectionHandler считает темп накопления для цели
func SavingsGoalProjectionHandler(cfg *config.Config, now func() time.Time) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		var p goalProjectionParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if err := validators.Struct(p.SavingsGoal); err != nil {
			return nil, err
		}
		if err := validators.CheckAmount(cfg, "target_amount", p.TargetAmount); err != nil {
			return nil, err
		}
		if err := validators.CheckContribution(cfg, "contribution_per_period", p.ContributionPerPeriod); err != nil {
			return nil, err
		}
		asOf := p.AsOf.Time
		if p.AsOf.IsZero() {
			asOf = now()
		}

		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("goal", p.Name),
			attribute.Float64("target_amount", p.TargetAmount),
			attribute.String("target_date", p.TargetDate.String()),
		)

		projection, err := calculations.ComputeGoalProjection(p.SavingsGoal, p.ContributionPerPeriod, asOf)
		if err != nil {
			return nil, err
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("is_achievable", projection.IsAchievable))
		return projection, nil
	}
}

type goalsOverviewParams struct {
	Goals []calculations.GoalInput `json:"goals" validate:"required,min=1,dive"`
	AsOf  utils.Date               `json:"as_of"`
}

// SavingsGoalsOverviewHandler сводит несколько целей
func SavingsGoalsOverviewHandler(cfg *config.Config, now func() time.Time) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		var p goalsOverviewParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if err := validators.Struct(p); err != nil {
			return nil, err
		}
		for _, g := range p.Goals {
			if err := validators.CheckAmount(cfg, "target_amount", g.Goal.TargetAmount); err != nil {
				return nil, err
			}
		}
		asOf := p.AsOf.Time
		if p.AsOf.IsZero() {
			asOf = now()
		}

		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("goals", len(p.Goals)))

		overview, err := calculations.SummarizeGoals(p.Goals, asOf)
		if err != nil {
			return nil, err
		}
		return overview, nil
	}
}

// BudgetSummaryHandler сравнивает план и факт по бюджету
func BudgetSummaryHandler(cfg *config.Config) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		var plan calculations.BudgetPlan
		if err := decodeParams(params, &plan); err != nil {
			return nil, err
		}
		if err := validators.Struct(plan); err != nil {
			return nil, err
		}
		if err := validators.CheckAmount(cfg, "monthly_income", plan.MonthlyIncome); err != nil {
			return nil, err
		}

		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Float64("monthly_income", plan.MonthlyIncome),
			attribute.Int("categories", len(plan.Categories)),
		)

		summary, err := calculations.ComputeBudget(plan)
		if err != nil {
			return nil, err
		}
		return summary, nil
	}
}

// SalaryBreakdownHandler приводит зарплату к годовым и месячным суммам
func SalaryBreakdownHandler(cfg *config.Config) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		var rec calculations.SalaryRecord
		if err := decodeParams(params, &rec); err != nil {
			return nil, err
		}
		if err := validators.Struct(rec); err != nil {
			return nil, err
		}
		if err := validators.CheckContribution(cfg, "gross_per_period", rec.GrossPerPeriod); err != nil {
			return nil, err
		}

		trace.SpanFromContext(ctx).SetAttributes(attribute.String("pay_frequency", string(rec.PayFrequency)))

		summary, err := calculations.ComputeSalary(rec)
		if err != nil {
			return nil, err
		}
		return summary, nil
	}
}
