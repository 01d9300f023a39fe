package calculations

import "math"

// Validate проверяет пенсионный профиль
func (p RetirementProfile) Validate() error {
	if p.CurrentAge < 0 {
		return invalid("current_age", "значение должно быть ≥ 0")
	}
	if p.RetirementAge <= p.CurrentAge {
		return invalid("retirement_age", "значение должно быть больше current_age")
	}
	if p.RetirementAge-p.CurrentAge > MaxTermYears {
		return invalid("retirement_age", "горизонт накопления превышает предел %d лет", MaxTermYears)
	}
	if p.LifeExpectancy <= p.RetirementAge {
		return invalid("life_expectancy", "значение должно быть больше retirement_age")
	}
	if p.LifeExpectancy-p.RetirementAge > MaxTermYears {
		return invalid("life_expectancy", "горизонт выплат превышает предел %d лет", MaxTermYears)
	}
	if err := checkNonNegative("current_savings", p.CurrentSavings); err != nil {
		return err
	}
	if err := checkNonNegative("monthly_contribution", p.MonthlyContribution); err != nil {
		return err
	}
	if err := checkNonNegative("expected_return_percent", p.ExpectedReturnPercent); err != nil {
		return err
	}
	if err := checkNonNegative("inflation_rate_percent", p.InflationRatePercent); err != nil {
		return err
	}
	return checkNonNegative("desired_monthly_income", p.DesiredMonthlyIncome)
}

func (p RetirementProfile) accumulation(initial, contribution float64) InvestmentScenario {
	return InvestmentScenario{
		InitialAmount:         initial,
		PeriodicContribution:  contribution,
		ContributionFrequency: FrequencyMonthly,
		AnnualRatePercent:     p.ExpectedReturnPercent,
		CompoundingFrequency:  FrequencyMonthly,
		TermYears:             p.RetirementAge - p.CurrentAge,
	}
}

// RequiredRetirementSavings капитал, необходимый к началу пенсии.
//
// Желаемый доход индексируется инфляцией до года выхода на пенсию, затем
// капитал считается как приведенная стоимость аннуитета пренумерандо
// (выплата в начале каждого года) на years лет по реальной ставке
// (1+доходность)/(1+инфляция)-1. При нулевой реальной ставке это
// просто годовой доход, умноженный на число лет.
func RequiredRetirementSavings(desiredMonthlyIncome, returnPercent, inflationPercent float64, yearsToRetirement, yearsInRetirement int) (annualIncome, required float64) {
	inflation := inflationPercent / 100.0
	annualIncome = desiredMonthlyIncome * 12.0 * math.Pow(1.0+inflation, float64(yearsToRetirement))

	realRate := (1.0+returnPercent/100.0)/(1.0+inflation) - 1.0
	years := float64(yearsInRetirement)
	if math.Abs(realRate) < 1e-12 {
		return annualIncome, annualIncome * years
	}
	annuityFactor := (1.0 - math.Pow(1.0+realRate, -years)) / realRate * (1.0 + realRate)
	return annualIncome, annualIncome * annuityFactor
}

// ComputeRetirementProjection сравнивает прогноз накоплений к пенсии
// с капиталом, необходимым для желаемого дохода.
func ComputeRetirementProjection(profile RetirementProfile) (*RetirementProjection, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	growth, err := ComputeGrowth(profile.accumulation(profile.CurrentSavings, profile.MonthlyContribution))
	if err != nil {
		return nil, err
	}

	yearsToRetirement := profile.RetirementAge - profile.CurrentAge
	yearsInRetirement := profile.LifeExpectancy - profile.RetirementAge
	annualIncome, required := RequiredRetirementSavings(profile.DesiredMonthlyIncome,
		profile.ExpectedReturnPercent, profile.InflationRatePercent, yearsToRetirement, yearsInRetirement)

	projected := float64(growth.FinalValue)

	// Итоговая сумма линейна по взносу: FV(c) = FV(0) + c*FV1
	requiredContribution := 0.0
	if projected < required {
		base, err := ComputeGrowth(profile.accumulation(profile.CurrentSavings, 0))
		if err != nil {
			return nil, err
		}
		unit, err := ComputeGrowth(profile.accumulation(0, 1))
		if err != nil {
			return nil, err
		}
		if unit.FinalValue > 0 {
			requiredContribution = math.Max(0, (required-float64(base.FinalValue))/float64(unit.FinalValue))
		}
	}

	series := make([]RetirementPoint, 0, len(growth.GrowthSeries))
	for _, point := range growth.GrowthSeries {
		series = append(series, RetirementPoint{
			Year:    point.TimeIndex,
			Age:     profile.CurrentAge + point.TimeIndex,
			Savings: point.AccumulatedValue,
		})
	}

	return &RetirementProjection{
		YearsToRetirement:           yearsToRetirement,
		YearsInRetirement:           yearsInRetirement,
		ProjectedSavings:            growth.FinalValue,
		RequiredSavings:             Money(required),
		IsGoalMet:                   projected >= required,
		ShortfallOrSurplus:          Money(projected - required),
		AnnualIncomeAtRetirement:    Money(annualIncome),
		RequiredMonthlyContribution: Money(requiredContribution),
		TotalContributions:          growth.TotalContributions,
		YearByYearSeries:            series,
	}, nil
}
