package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cloud-ru/finplan-go/internal/calculations"
	"github.com/cloud-ru/finplan-go/pkg/utils"
)

func loan(t *testing.T) *calculations.LoanSummary {
	t.Helper()
	summary, err := calculations.ComputeAmortization(calculations.LoanScenario{
		Principal:         25000,
		AnnualRatePercent: 8.5,
		TermCount:         5,
		TermUnit:          calculations.TermYears,
		StartDate:         utils.NewDate(2025, 1, 15),
	})
	require.NoError(t, err)
	return summary
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("pdf")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestWriteCSVSchedule(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, loan(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 61)
	assert.Equal(t, scheduleHeader, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "2025-02-15", records[1][1])
	assert.Equal(t, "512.91", records[1][2])
	assert.Equal(t, "0.00", records[60][5])
}

func TestWriteCSVComparison(t *testing.T) {
	comparison, err := calculations.CompareLoans(calculations.LoanScenario{
		Principal: 1200, AnnualRatePercent: 12, TermCount: 12, StartDate: utils.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, comparison))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 25)
	assert.Equal(t, "table", records[0][0])
	assert.Equal(t, "Annuity", records[1][0])
	assert.Equal(t, "Differential", records[24][0])
}

func TestWriteXLSXGrowth(t *testing.T) {
	growth, err := calculations.ComputeGrowth(calculations.InvestmentScenario{
		InitialAmount:         10000,
		PeriodicContribution:  500,
		ContributionFrequency: calculations.FrequencyMonthly,
		AnnualRatePercent:     8,
		CompoundingFrequency:  calculations.FrequencyMonthly,
		TermYears:             10,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, growth))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Growth"}, f.GetSheetList())
	rows, err := f.GetRows("Growth")
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assert.Equal(t, "year", rows[0][0])
	assert.Equal(t, "10000", rows[1][1])
	assert.Equal(t, "113669.42", rows[11][1])
}

func TestWriteXLSXComparisonSheets(t *testing.T) {
	comparison, err := calculations.CompareLoans(calculations.LoanScenario{
		Principal: 1200, AnnualRatePercent: 12, TermCount: 12, StartDate: utils.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, comparison))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Annuity", "Differential"}, f.GetSheetList())
}

func TestTablesNothingToExport(t *testing.T) {
	_, err := Tables(&calculations.BudgetSummary{})
	assert.True(t, errors.Is(err, ErrNothingToExport))

	_, err = Tables(&calculations.LoanSummary{})
	assert.True(t, errors.Is(err, ErrNothingToExport))
}
