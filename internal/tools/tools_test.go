package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cloud-ru/finplan-go/internal/calculations"
	"github.com/cloud-ru/finplan-go/internal/config"
	"github.com/cloud-ru/finplan-go/internal/logging"
	"github.com/cloud-ru/finplan-go/internal/storage"
	"github.com/cloud-ru/finplan-go/pkg/utils"
)

var testNow = time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)

func newTestRegistry(cfg *config.Config) *Registry {
	if cfg == nil {
		cfg = config.Default()
	}
	return NewRegistry(cfg, noop.NewTracerProvider().Tracer("test"), logging.Discard(),
		WithClock(func() time.Time { return testNow }))
}

func TestRegistryList(t *testing.T) {
	list := newTestRegistry(nil).List()
	require.Len(t, list, 10)

	names := make([]string, 0, len(list))
	for _, tool := range list {
		names = append(names, tool.Name)
		assert.True(t, tool.Kind.Valid(), tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.NotNil(t, tool.Handler)
	}
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "loan_amortization")
	assert.Contains(t, names, "savings_goals_overview")
}

func TestRegistryLookup(t *testing.T) {
	r := newTestRegistry(nil)

	tool, err := r.Lookup("investment_growth")
	require.NoError(t, err)
	assert.Equal(t, storage.KindROI, tool.Kind)

	_, err = r.Call(context.Background(), "stock_picker", nil)
	assert.True(t, errors.Is(err, ErrUnknownTool))
	assert.False(t, IsValidationError(err))
}

func TestLoanAmortizationTool(t *testing.T) {
	result, err := newTestRegistry(nil).Call(context.Background(), "loan_amortization", map[string]interface{}{
		"principal":           25000.0,
		"annual_rate_percent": 8.5,
		"term_count":          5.0,
		"term_unit":           "years",
	})
	require.NoError(t, err)

	summary, ok := result.(*calculations.LoanSummary)
	require.True(t, ok)
	assert.Equal(t, 60, summary.TermMonths)
	assert.InDelta(t, 512.91, summary.PeriodicPayment.Float64(), 0.01)
	require.Len(t, summary.Schedule, 60)
	// Без start_date отсчет идет от текущей даты, 31 января -> 28 февраля
	assert.Equal(t, utils.NewDate(2025, 2, 28), summary.Schedule[0].DueDate)
}

func TestLoanToolsShareParams(t *testing.T) {
	r := newTestRegistry(nil)
	params := map[string]interface{}{
		"principal":           120000.0,
		"annual_rate_percent": 12.0,
		"term_count":          12.0,
		"start_date":          "2025-03-01",
	}

	result, err := r.Call(context.Background(), "loan_schedule_differential", params)
	require.NoError(t, err)
	diff := result.(*calculations.LoanSummary)
	assert.Equal(t, utils.NewDate(2025, 4, 1), diff.Schedule[0].DueDate)
	assert.Greater(t, diff.FirstPayment.Float64(), diff.LastPayment.Float64())

	result, err = r.Call(context.Background(), "compare_loan_schedules", params)
	require.NoError(t, err)
	assert.Equal(t, "differential", result.(*calculations.LoanComparison).CheaperType)
}

func TestToolValidationErrors(t *testing.T) {
	cfg := config.Default()
	cfg.MaxBalanceCap = 1000

	tests := []struct {
		name   string
		tool   string
		params map[string]interface{}
		field  string
	}{
		{
			name:   "principal above config limit",
			tool:   "loan_amortization",
			params: map[string]interface{}{"principal": 5e9, "annual_rate_percent": 5.0, "term_count": 12.0},
			field:  "principal",
		},
		{
			name:   "negative rate from struct tags",
			tool:   "loan_amortization",
			params: map[string]interface{}{"principal": 1000.0, "annual_rate_percent": -5.0, "term_count": 12.0},
			field:  "annual_rate_percent",
		},
		{
			name:   "term above limit",
			tool:   "loan_amortization",
			params: map[string]interface{}{"principal": 1000.0, "term_count": 101.0, "term_unit": "years"},
			field:  "term_count",
		},
		{
			name:   "down payment equals price",
			tool:   "mortgage_breakdown",
			params: map[string]interface{}{"home_price": 300000.0, "down_payment": 300000.0, "annual_rate_percent": 6.0, "term_years": 30.0},
			field:  "down_payment",
		},
		{
			name: "balance cap",
			tool: "investment_growth",
			params: map[string]interface{}{
				"initial_amount":        5000.0,
				"annual_rate_percent":   10.0,
				"term_years":            5.0,
				"compounding_frequency": "annually",
			},
			field: "final_value",
		},
		{
			name:   "overview goal path",
			tool:   "savings_goals_overview",
			params: map[string]interface{}{"goals": []interface{}{map[string]interface{}{"goal": map[string]interface{}{"name": "car", "target_amount": 0.0, "target_date": "2026-01-01"}}}},
			field:  "goals[0].goal.target_amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestRegistry(cfg).Call(context.Background(), tt.tool, tt.params)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			var se *calculations.ScenarioError
			require.True(t, errors.As(err, &se), err.Error())
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestToolInvalidParams(t *testing.T) {
	r := newTestRegistry(nil)

	_, err := r.Call(context.Background(), "loan_amortization", map[string]interface{}{"principal": "lots"})
	assert.True(t, errors.Is(err, ErrInvalidParams))

	_, err = r.Call(context.Background(), "budget_summary", map[string]interface{}{"monthly_income": 1000.0, "bonus": 1.0})
	assert.True(t, errors.Is(err, ErrInvalidParams))
	assert.True(t, IsValidationError(err))
}

func TestInvestmentGrowthTool(t *testing.T) {
	result, err := newTestRegistry(nil).Call(context.Background(), "investment_growth", map[string]interface{}{
		"initial_amount":         10000.0,
		"periodic_contribution":  500.0,
		"contribution_frequency": "monthly",
		"annual_rate_percent":    8.0,
		"compounding_frequency":  "monthly",
		"term_years":             10.0,
	})
	require.NoError(t, err)

	summary := result.(*calculations.InvestmentSummary)
	assert.InDelta(t, 113669.42, summary.FinalValue.Float64(), 0.01)
	assert.Len(t, summary.GrowthSeries, 11)
}

func TestSavingsGoalProjectionTool(t *testing.T) {
	r := newTestRegistry(nil)
	params := map[string]interface{}{
		"name":                    "Emergency fund",
		"target_amount":           30000.0,
		"current_amount":          22500.0,
		"target_date":             "2026-01-01",
		"contribution_cadence":    "monthly",
		"contribution_per_period": 625.0,
		"as_of":                   "2025-01-01",
	}

	result, err := r.Call(context.Background(), "savings_goal_projection", params)
	require.NoError(t, err)

	projection := result.(*calculations.SavingsGoalProjection)
	assert.Equal(t, 12, projection.PeriodsRemaining)
	assert.Equal(t, calculations.Money(625), projection.RequiredPeriodicContribution)
	assert.True(t, projection.IsAchievable)

	// Без as_of расчет идет от текущей даты
	delete(params, "as_of")
	result, err = r.Call(context.Background(), "savings_goal_projection", params)
	require.NoError(t, err)
	assert.Equal(t, 11, result.(*calculations.SavingsGoalProjection).PeriodsRemaining)
}

func TestSavingsGoalsOverviewTool(t *testing.T) {
	result, err := newTestRegistry(nil).Call(context.Background(), "savings_goals_overview", map[string]interface{}{
		"as_of": "2025-01-01",
		"goals": []interface{}{
			map[string]interface{}{
				"goal": map[string]interface{}{
					"name":                 "Emergency fund",
					"target_amount":        30000.0,
					"current_amount":       22500.0,
					"target_date":          "2026-01-01",
					"contribution_cadence": "monthly",
				},
				"contribution_per_period": 625.0,
			},
			map[string]interface{}{
				"goal": map[string]interface{}{
					"name":                 "Vacation",
					"target_amount":        4000.0,
					"current_amount":       0.0,
					"target_date":          "2026-01-01",
					"contribution_cadence": "quarterly",
				},
				"contribution_per_period": 500.0,
			},
		},
	})
	require.NoError(t, err)

	overview := result.(*calculations.GoalsOverview)
	require.Len(t, overview.Goals, 2)
	assert.Equal(t, calculations.Money(22500), overview.TotalSaved)
	assert.Equal(t, calculations.Money(34000), overview.TotalTarget)
	assert.Equal(t, 1, overview.AchievableCount)
}

func TestRetirementBudgetSalaryTools(t *testing.T) {
	r := newTestRegistry(nil)
	ctx := context.Background()

	result, err := r.Call(ctx, "retirement_projection", map[string]interface{}{
		"current_age":             30.0,
		"retirement_age":          65.0,
		"life_expectancy":         90.0,
		"current_savings":         50000.0,
		"monthly_contribution":    1000.0,
		"expected_return_percent": 7.0,
		"inflation_rate_percent":  2.5,
		"desired_monthly_income":  5000.0,
	})
	require.NoError(t, err)
	projection := result.(*calculations.RetirementProjection)
	assert.Equal(t, 35, projection.YearsToRetirement)
	assert.Len(t, projection.YearByYearSeries, 36)

	result, err = r.Call(ctx, "budget_summary", map[string]interface{}{
		"monthly_income": 5000.0,
		"categories": []interface{}{
			map[string]interface{}{"name": "rent", "planned": 1500.0, "actual": 1500.0},
			map[string]interface{}{"name": "food", "planned": 600.0, "actual": 750.0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"food"}, result.(*calculations.BudgetSummary).OverBudget)

	result, err = r.Call(ctx, "salary_breakdown", map[string]interface{}{
		"gross_per_period": 5000.0,
		"pay_frequency":    "monthly",
		"tax_rate_percent": 13.0,
	})
	require.NoError(t, err)
	assert.Equal(t, calculations.Money(60000), result.(*calculations.SalarySummary).AnnualGross)
}

func TestSummarizerStripsSchedules(t *testing.T) {
	result, err := newTestRegistry(nil).Call(context.Background(), "mortgage_breakdown", map[string]interface{}{
		"home_price":          400000.0,
		"down_payment":        80000.0,
		"annual_rate_percent": 6.5,
		"term_years":          30.0,
	})
	require.NoError(t, err)

	s, ok := result.(Summarizer)
	require.True(t, ok)
	short := s.Summary().(calculations.MortgageSummary)
	assert.Nil(t, short.Amortization)
	assert.NotNil(t, result.(*calculations.MortgageSummary).Amortization)
}
