package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cloud-ru/finplan-go/internal/calculations"
	"github.com/cloud-ru/finplan-go/pkg/utils"
)

// Format формат выгрузки
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var (
	// ErrUnsupportedFormat неизвестный формат выгрузки
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrNothingToExport у результата нет графика или ряда
	ErrNothingToExport = errors.New("result has no schedule or series to export")
)

// ParseFormat разбирает формат; пустая строка означает xlsx
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType MIME тип формата
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Table таблица для выгрузки. Ячейки: int, string, utils.Date, calculations.Money.
type Table struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

var scheduleHeader = []string{"period", "due_date", "payment", "principal", "interest", "remaining_balance"}

func scheduleTable(name string, schedule []calculations.AmortizationEntry) Table {
	t := Table{Name: name, Header: scheduleHeader, Rows: make([][]interface{}, 0, len(schedule))}
	for _, e := range schedule {
		t.Rows = append(t.Rows, []interface{}{
			e.PeriodIndex, e.DueDate, e.PaymentAmount, e.PrincipalPortion, e.InterestPortion, e.RemainingBalance,
		})
	}
	return t
}

// Tables извлекает из результата расчета графики и ряды
func Tables(result interface{}) ([]Table, error) {
	switch r := result.(type) {
	case *calculations.LoanSummary:
		if len(r.Schedule) > 0 {
			return []Table{scheduleTable("Schedule", r.Schedule)}, nil
		}
	case *calculations.MortgageSummary:
		if r.Amortization != nil && len(r.Amortization.Schedule) > 0 {
			return []Table{scheduleTable("Mortgage", r.Amortization.Schedule)}, nil
		}
	case *calculations.LoanComparison:
		if r.Annuity != nil && r.Differential != nil {
			return []Table{
				scheduleTable("Annuity", r.Annuity.Schedule),
				scheduleTable("Differential", r.Differential.Schedule),
			}, nil
		}
	case *calculations.InvestmentSummary:
		if len(r.GrowthSeries) > 0 {
			t := Table{Name: "Growth", Header: []string{"year", "accumulated_value", "total_contributions", "interest_earned"}}
			for _, p := range r.GrowthSeries {
				t.Rows = append(t.Rows, []interface{}{p.TimeIndex, p.AccumulatedValue, p.TotalContributions, p.InterestEarned})
			}
			return []Table{t}, nil
		}
	case *calculations.RetirementProjection:
		if len(r.YearByYearSeries) > 0 {
			t := Table{Name: "Retirement", Header: []string{"year", "age", "savings"}}
			for _, p := range r.YearByYearSeries {
				t.Rows = append(t.Rows, []interface{}{p.Year, p.Age, p.Savings})
			}
			return []Table{t}, nil
		}
	}
	return nil, ErrNothingToExport
}

// Write выгружает графики результата в заданном формате
func Write(w io.Writer, format Format, result interface{}) error {
	tables, err := Tables(result)
	if err != nil {
		return err
	}
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, tables)
	case FormatCSV:
		return WriteCSV(w, tables)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// WriteXLSX пишет каждую таблицу на отдельный лист
func WriteXLSX(w io.Writer, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("create sheet %s: %w", t.Name, err)
		}

		header := make([]interface{}, len(t.Header))
		for j, h := range t.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}

		for j, row := range t.Rows {
			values := make([]interface{}, len(row))
			for k, v := range row {
				values[k] = xlsxValue(v)
			}
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
				return fmt.Errorf("write row %d: %w", j+1, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// WriteCSV пишет таблицы в CSV. Если таблиц несколько, первой колонкой
// идет имя таблицы.
func WriteCSV(w io.Writer, tables []Table) error {
	cw := csv.NewWriter(w)
	multi := len(tables) > 1

	for i, t := range tables {
		if i == 0 {
			header := t.Header
			if multi {
				header = append([]string{"table"}, t.Header...)
			}
			if err := cw.Write(header); err != nil {
				return err
			}
		}
		for _, row := range t.Rows {
			record := make([]string, 0, len(row)+1)
			if multi {
				record = append(record, t.Name)
			}
			for _, v := range row {
				record = append(record, csvValue(v))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func xlsxValue(v interface{}) interface{} {
	switch x := v.(type) {
	case calculations.Money:
		return x.Cents().InexactFloat64()
	case utils.Date:
		return x.String()
	}
	return v
}

func csvValue(v interface{}) string {
	switch x := v.(type) {
	case calculations.Money:
		return x.Cents().StringFixed(2)
	case utils.Date:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	}
	return fmt.Sprint(v)
}
