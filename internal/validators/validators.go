package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cloud-ru/finplan-go/internal/calculations"
	"github.com/cloud-ru/finplan-go/internal/config"
	"github.com/cloud-ru/finplan-go/pkg/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// В ошибках используем имена полей из json тегов
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldError(name, format string, args ...interface{}) error {
	return &calculations.ScenarioError{Field: name, Reason: fmt.Sprintf(format, args...)}
}

// Struct проверяет validate теги структуры параметров.
// Возвращает *calculations.ScenarioError по первому нарушению.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", calculations.ErrInvalidScenario, err)
	}
	fe := verrs[0]
	return fieldError(fieldPath(fe), "%s", formatValidationError(fe))
}

// fieldPath путь поля без имени корневой структуры: goals[0].goal.target_amount
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "gt":
		return fmt.Sprintf("значение должно быть > %s", fe.Param())
	case "gte":
		return fmt.Sprintf("значение должно быть ≥ %s", fe.Param())
	case "lte":
		return fmt.Sprintf("значение должно быть ≤ %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("допустимые значения: %s", fe.Param())
	case "gtfield":
		return fmt.Sprintf("значение должно быть больше %s", jsonName(fe.Param()))
	default:
		return fmt.Sprintf("не прошло проверку %s", fe.Tag())
	}
}

// jsonName переводит имя Go поля (RetirementAge) в snake_case
func jsonName(goName string) string {
	var b strings.Builder
	for i, r := range goName {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidatePositiveNumber проверяет, что число конечное и в допустимом диапазоне
func ValidatePositiveNumber(name string, value float64, minInclusive, maxInclusive float64) error {
	if !utils.IsFinite(value) {
		return fieldError(name, "значение не является конечным числом")
	}
	if value < minInclusive {
		return fieldError(name, "значение должно быть ≥ %g", minInclusive)
	}
	if value > maxInclusive {
		return fieldError(name, "значение слишком велико (>%g)", maxInclusive)
	}
	return nil
}

// ValidateIntRange проверяет, что целое число в допустимом диапазоне
func ValidateIntRange(name string, value int, minInclusive, maxInclusive int) error {
	if value < minInclusive || value > maxInclusive {
		return fieldError(name, "значение должно быть в диапазоне [%d; %d]", minInclusive, maxInclusive)
	}
	return nil
}

// CheckPrincipal проверяет сумму кредита или стоимость недвижимости
func CheckPrincipal(cfg *config.Config, name string, principal float64) error {
	return ValidatePositiveNumber(name, principal, 1e-9, cfg.MaxPrincipal)
}

// CheckRate проверяет процентную ставку
func CheckRate(cfg *config.Config, name string, rate float64) error {
	return ValidatePositiveNumber(name, rate, 0.0, cfg.MaxRate)
}

// CheckMonths проверяет срок в месяцах
func CheckMonths(cfg *config.Config, months int) error {
	return ValidateIntRange("term_count", months, 1, cfg.MaxMonths)
}

// CheckYears проверяет горизонт в годах
func CheckYears(cfg *config.Config, name string, years int) error {
	return ValidateIntRange(name, years, 1, cfg.MaxYears)
}

// CheckAmount проверяет накопленную сумму (начальный капитал, текущие накопления)
func CheckAmount(cfg *config.Config, name string, amount float64) error {
	return ValidatePositiveNumber(name, amount, 0.0, cfg.MaxPrincipal)
}

// CheckContribution проверяет периодический взнос
func CheckContribution(cfg *config.Config, name string, contribution float64) error {
	return ValidatePositiveNumber(name, contribution, 0.0, cfg.MaxContribution)
}

// CheckBalance проверяет, что итоговый баланс не превышает BalanceCap
func CheckBalance(cfg *config.Config, name string, balance float64) error {
	limit := BalanceCap(cfg)
	if !utils.IsFinite(balance) || balance > limit {
		return fieldError(name, "итоговый баланс превышает допустимый предел %g", limit)
	}
	return nil
}

// BalanceCap возвращает максимальный баланс
func BalanceCap(cfg *config.Config) float64 {
	if cfg == nil {
		return 1e12 // Значение по умолчанию
	}
	return cfg.BalanceCap()
}
