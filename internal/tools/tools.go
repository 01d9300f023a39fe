package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/finplan-go/internal/calculations"
	"github.com/cloud-ru/finplan-go/internal/config"
	"github.com/cloud-ru/finplan-go/internal/metrics"
	"github.com/cloud-ru/finplan-go/internal/storage"
)

var (
	// ErrUnknownTool инструмент с таким именем не зарегистрирован
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidParams параметры не удалось разобрать
	ErrInvalidParams = errors.New("invalid parameters")
)

// ToolHandler представляет обработчик инструмента
type ToolHandler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// Tool описание инструмента
type Tool struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Kind        storage.Kind `json:"kind"`
	Handler     ToolHandler  `json:"-"`
}

// Summarizer реализуют результаты, у которых для сохранения есть
// сокращенная форма без графиков и рядов.
type Summarizer interface {
	Summary() interface{}
}

// Registry набор инструментов, каждый вызов которых трассируется и
// учитывается в метриках.
type Registry struct {
	cfg    *config.Config
	tracer trace.Tracer
	logger *slog.Logger
	now    func() time.Time
	tools  map[string]Tool
}

// Option настраивает Registry
type Option func(*Registry)

// WithClock задает источник текущего времени (дата начала графика,
// дата расчета по целям накопления).
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry регистрирует все инструменты
func NewRegistry(cfg *config.Config, tracer trace.Tracer, logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
		now:    time.Now,
		tools:  make(map[string]Tool),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.register("loan_amortization", "Аннуитетный кредит: график платежей и переплата", storage.KindEMI,
		LoanAmortizationHandler(cfg, r.clock))
	r.register("loan_schedule_differential", "Дифференцированный кредит: график с убывающими платежами", storage.KindEMI,
		LoanScheduleDifferentialHandler(cfg, r.clock))
	r.register("compare_loan_schedules", "Сравнение аннуитетной и дифференцированной схем", storage.KindEMI,
		CompareLoanSchedulesHandler(cfg, r.clock))
	r.register("mortgage_breakdown", "Ипотека: ежемесячный платеж с налогом, страховкой и HOA", storage.KindMortgage,
		MortgageBreakdownHandler(cfg, r.clock))
	r.register("investment_growth", "Рост инвестиций со сложным процентом и регулярными взносами", storage.KindROI,
		InvestmentGrowthHandler(cfg))
	r.register("retirement_projection", "Пенсионный прогноз: накопления против требуемого капитала", storage.KindRetirement,
		RetirementProjectionHandler(cfg))
	r.register("savings_goal_projection", "Темп накопления для одной цели", storage.KindSavingsGoal,
		SavingsGoalProjectionHandler(cfg, r.clock))
	r.register("savings_goals_overview", "Сводка по нескольким целям накопления", storage.KindSavingsGoal,
		SavingsGoalsOverviewHandler(cfg, r.clock))
	r.register("budget_summary", "Месячный бюджет: план и факт по статьям", storage.KindBudget,
		BudgetSummaryHandler(cfg))
	r.register("salary_breakdown", "Зарплата: годовые и месячные суммы брутто и нетто", storage.KindSalary,
		SalaryBreakdownHandler(cfg))

	return r
}

func (r *Registry) clock() time.Time {
	return r.now()
}

func (r *Registry) register(name, description string, kind storage.Kind, h ToolHandler) {
	r.tools[name] = Tool{
		Name:        name,
		Description: description,
		Kind:        kind,
		Handler:     r.instrument(name, h),
	}
}

// List возвращает инструменты, отсортированные по имени
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup ищет инструмент по имени
func (r *Registry) Lookup(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t, nil
}

// Call выполняет инструмент
func (r *Registry) Call(ctx context.Context, name string, params map[string]interface{}) (interface{}, error) {
	t, err := r.Lookup(name)
	if err != nil {
		metrics.ToolCalls.WithLabelValues("unknown", metrics.StatusError).Inc()
		return nil, err
	}
	return t.Handler(ctx, params)
}

// IsValidationError true для ошибок разбора и проверки параметров
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidParams) || errors.Is(err, calculations.ErrInvalidScenario)
}

// instrument оборачивает обработчик спаном, метриками и логом
func (r *Registry) instrument(toolName string, h ToolHandler) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		ctx, span := r.tracer.Start(ctx, toolName)
		defer span.End()

		start := time.Now()
		result, err := h(ctx, params)
		metrics.ToolDuration.WithLabelValues(toolName).Observe(time.Since(start).Seconds())

		if err != nil {
			status, errType := metrics.StatusError, "calculation"
			if IsValidationError(err) {
				status, errType = metrics.StatusValidationError, "validation"
			}
			span.SetAttributes(attribute.String("error", status))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.ToolCalls.WithLabelValues(toolName, status).Inc()
			metrics.CalculationErrors.WithLabelValues(toolName, errType).Inc()
			r.logger.WarnContext(ctx, "tool call failed",
				slog.String("tool", toolName),
				slog.String("status", status),
				slog.String("error", err.Error()))
			return nil, err
		}

		span.SetAttributes(attribute.Bool("success", true))
		metrics.ToolCalls.WithLabelValues(toolName, metrics.StatusSuccess).Inc()
		r.logger.DebugContext(ctx, "tool call succeeded",
			slog.String("tool", toolName),
			slog.Duration("duration", time.Since(start)))
		return result, nil
	}
}

// decodeParams переносит параметры в типизированную структуру.
// Неизвестные поля считаются ошибкой.
func decodeParams(params map[string]interface{}, dst interface{}) error {
	if params == nil {
		params = map[string]interface{}{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
