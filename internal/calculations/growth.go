package calculations

import "github.com/cloud-ru/finplan-go/pkg/utils"

// Validate проверяет параметры инвестиции
func (s InvestmentScenario) Validate() error {
	if err := checkNonNegative("initial_amount", s.InitialAmount); err != nil {
		return err
	}
	if err := checkNonNegative("periodic_contribution", s.PeriodicContribution); err != nil {
		return err
	}
	if err := checkNonNegative("annual_rate_percent", s.AnnualRatePercent); err != nil {
		return err
	}
	if s.CompoundingFrequency.PeriodsPerYear() == 0 {
		return invalid("compounding_frequency", "допустимые значения: daily monthly quarterly annually")
	}
	if f := s.ContributionFrequency.normalize(); f != FrequencyNone && f.PeriodsPerYear() == 0 {
		return invalid("contribution_frequency", "допустимые значения: none monthly quarterly annual")
	}
	if s.TermYears <= 0 {
		return invalid("term_years", "значение должно быть > 0")
	}
	if s.TermYears > MaxTermYears {
		return invalid("term_years", "срок %d лет превышает предел %d", s.TermYears, MaxTermYears)
	}
	return nil
}

// contributionSchedule решает, сколько внести в конце периода periodInYear (1..ppy)
type contributionSchedule struct {
	amount float64
	step   int
	count  int
	every  bool
}

func newContributionSchedule(contribution float64, ppy, cpy int) contributionSchedule {
	if cpy == 0 || contribution == 0 {
		return contributionSchedule{}
	}
	if cpy >= ppy {
		// Взносы не реже начислений: распределяем их равномерно по периодам
		return contributionSchedule{
			amount: contribution * float64(cpy) / float64(ppy),
			every:  true,
		}
	}
	return contributionSchedule{
		amount: contribution,
		step:   contributionStep(ppy, cpy),
		count:  cpy,
	}
}

func (c contributionSchedule) at(periodInYear int) float64 {
	if c.every {
		return c.amount
	}
	if c.step == 0 || periodInYear%c.step != 0 || periodInYear/c.step > c.count {
		return 0
	}
	return c.amount
}

// ComputeGrowth рассчитывает рост инвестиции со сложными процентами
// и регулярными взносами. Ряд содержит одну точку на конец каждого года.
// При ContributionAtBeginning взнос зачисляется до начисления процентов за период.
func ComputeGrowth(scenario InvestmentScenario) (*InvestmentSummary, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	ppy := scenario.CompoundingFrequency.PeriodsPerYear()
	cpy := scenario.ContributionFrequency.PeriodsPerYear()
	r := scenario.AnnualRatePercent / 100.0 / float64(ppy)
	contributions := newContributionSchedule(scenario.PeriodicContribution, ppy, cpy)

	balance := scenario.InitialAmount
	cumI := 0.0
	cumC := scenario.InitialAmount

	series := make([]GrowthPoint, 0, scenario.TermYears+1)
	series = append(series, GrowthPoint{
		TimeIndex:          0,
		AccumulatedValue:   Money(balance),
		TotalContributions: Money(cumC),
	})

	for year := 1; year <= scenario.TermYears; year++ {
		for p := 1; p <= ppy; p++ {
			c := contributions.at(p)
			if scenario.ContributionAtBeginning && c > 0 {
				balance += c
				cumC += c
			}

			interest := balance * r
			balance += interest
			cumI += interest

			if !scenario.ContributionAtBeginning && c > 0 {
				balance += c
				cumC += c
			}
		}
		if !utils.IsFinite(balance) {
			return nil, invalid("annual_rate_percent", "баланс переполняется на %d-м году, проверьте ставку", year)
		}

		series = append(series, GrowthPoint{
			TimeIndex:          year,
			AccumulatedValue:   Money(balance),
			TotalContributions: Money(cumC),
			InterestEarned:     Money(cumI),
		})
	}

	return &InvestmentSummary{
		FinalValue:              Money(balance),
		InterestEarned:          Money(cumI),
		TotalContributions:      Money(cumC),
		ROIPercent:              roiPercent(balance, cumC),
		AnnualizedReturnPercent: annualizedReturnPercent(balance, cumC, float64(scenario.TermYears)),
		PeriodsPerYear:          ppy,
		GrowthSeries:            series,
	}, nil
}
