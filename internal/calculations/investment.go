package calculations

import (
	"math"

	"github.com/cloud-ru/finplan-go/pkg/utils"
)

// roiPercent доходность на вложенные средства в процентах, до сотых.
// При нулевых вложениях возвращает 0, а не NaN/Inf.
func roiPercent(finalValue, totalInvested float64) float64 {
	if totalInvested <= 0 {
		return 0.0
	}
	return utils.Round2((finalValue - totalInvested) * 100 / totalInvested)
}

// annualizedReturnPercent средняя годовая доходность на весь вложенный капитал
func annualizedReturnPercent(finalValue, totalInvested, years float64) float64 {
	if years <= 0 || totalInvested <= 0 || finalValue <= 0 {
		return 0.0
	}
	return utils.Round2((math.Pow(finalValue/totalInvested, 1.0/years) - 1.0) * 100)
}
