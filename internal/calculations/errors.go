package calculations

import (
	"errors"
	"fmt"

	"github.com/cloud-ru/finplan-go/pkg/utils"
)

// ErrInvalidScenario параметры расчета нарушают инварианты
var ErrInvalidScenario = errors.New("invalid scenario")

// ScenarioError указывает поле, не прошедшее проверку
type ScenarioError struct {
	Field  string
	Reason string
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidScenario, e.Field, e.Reason)
}

func (e *ScenarioError) Unwrap() error {
	return ErrInvalidScenario
}

func invalid(field, format string, args ...interface{}) error {
	return &ScenarioError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Кредиты ограничены числом периодов, прогнозы роста и целей ограничены
// горизонтом в годах: при ежедневной капитализации это не более
// MaxTermYears*365 шагов с постоянной работой на шаг.
const (
	// MaxTermMonths предел срока кредита (100 лет)
	MaxTermMonths = 1200
	// MaxTermYears предел горизонта инвестиций и пенсионного прогноза
	MaxTermYears = 100
	// GoalHorizonYears предел прогноза по цели накопления
	GoalHorizonYears = 100
)

func checkFinite(field string, v float64) error {
	if !utils.IsFinite(v) {
		return invalid(field, "значение не является конечным числом")
	}
	return nil
}

func checkPositive(field string, v float64) error {
	if err := checkFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return invalid(field, "значение должно быть > 0")
	}
	return nil
}

func checkNonNegative(field string, v float64) error {
	if err := checkFinite(field, v); err != nil {
		return err
	}
	if v < 0 {
		return invalid(field, "значение должно быть ≥ 0")
	}
	return nil
}
