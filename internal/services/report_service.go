package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
)

// DashboardSummary aggregates the figures shown on the admin dashboard
type DashboardSummary struct {
	TotalStudents      int64           `json:"total_students"`
	EnrollmentsDue     int64           `json:"enrollments_due"`
	EnrollmentsPartial int64           `json:"enrollments_partial"`
	EnrollmentsPaid    int64           `json:"enrollments_paid"`
	RevenueThisMonth   decimal.Decimal `json:"revenue_this_month"`
	ExpensesThisMonth  decimal.Decimal `json:"expenses_this_month"`
	NetThisMonth       decimal.Decimal `json:"net_this_month"`
	OutstandingTotal   decimal.Decimal `json:"outstanding_total"`
}

// MonthlyRevenueRow is one month of the revenue report
type MonthlyRevenueRow struct {
	Month    int             `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// ReportService produces aggregates and file exports
type ReportService struct {
	repos *repository.Repositories
}

// NewReportService creates a new report service
func NewReportService(repos *repository.Repositories) *ReportService {
	return &ReportService{repos: repos}
}

// Dashboard builds the summary for the current month
func (s *ReportService) Dashboard(ctx context.Context, now time.Time) (*DashboardSummary, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	students, err := s.repos.Student.Count(ctx)
	if err != nil {
		return nil, err
	}
	due, err := s.repos.Enrollment.CountByPaymentStatus(ctx, models.PaymentStatusDue)
	if err != nil {
		return nil, err
	}
	partial, err := s.repos.Enrollment.CountByPaymentStatus(ctx, models.PaymentStatusPartial)
	if err != nil {
		return nil, err
	}
	paid, err := s.repos.Enrollment.CountByPaymentStatus(ctx, models.PaymentStatusPaid)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repos.Payment.SumBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	expenses, err := s.repos.Expense.SumBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	outstanding := decimal.Zero
	open, err := s.repos.Enrollment.ListOutstanding(ctx)
	if err != nil {
		return nil, err
	}
	for i := range open {
		outstanding = outstanding.Add(open[i].AmountRemaining)
	}

	return &DashboardSummary{
		TotalStudents:      students,
		EnrollmentsDue:     due,
		EnrollmentsPartial: partial,
		EnrollmentsPaid:    paid,
		RevenueThisMonth:   revenue,
		ExpensesThisMonth:  expenses,
		NetThisMonth:       revenue.Sub(expenses),
		OutstandingTotal:   outstanding,
	}, nil
}

// MonthlyRevenue returns revenue, expenses and net for each month of a year
func (s *ReportService) MonthlyRevenue(ctx context.Context, year int) ([]MonthlyRevenueRow, error) {
	totals, err := s.repos.Payment.MonthlyTotals(ctx, year)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[int]decimal.Decimal, len(totals))
	for _, t := range totals {
		byMonth[t.Month] = t.Total
	}

	rows := make([]MonthlyRevenueRow, 0, 12)
	for month := 1; month <= 12; month++ {
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)
		expenses, err := s.repos.Expense.SumBetween(ctx, from, to)
		if err != nil {
			return nil, err
		}
		revenue := byMonth[month]
		rows = append(rows, MonthlyRevenueRow{
			Month:    month,
			Revenue:  revenue,
			Expenses: expenses,
			Net:      revenue.Sub(expenses),
		})
	}
	return rows, nil
}

var paymentExportHeader = []string{
	"Transaction ID", "Student", "Phone", "Course", "Category", "Amount", "Mode", "Date",
}

// PaymentsCSV exports payments in a date range as CSV
func (s *ReportService) PaymentsCSV(ctx context.Context, from, to time.Time) ([]byte, error) {
	payments, err := s.repos.Payment.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(paymentExportHeader); err != nil {
		return nil, err
	}
	for i := range payments {
		p := &payments[i]
		record := []string{
			p.Enrollment.TransactionID,
			p.Enrollment.Snapshot.Name,
			p.Enrollment.Snapshot.Phone,
			p.Enrollment.Course.Name,
			p.Category,
			p.Amount.StringFixed(2),
			p.PaymentMode,
			p.PaymentDate.Format("2006-01-02"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PaymentsXLSX exports payments in a date range as an Excel workbook
func (s *ReportService) PaymentsXLSX(ctx context.Context, from, to time.Time) ([]byte, error) {
	payments, err := s.repos.Payment.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payments"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, title := range paymentExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	total := decimal.Zero
	for i := range payments {
		p := &payments[i]
		amountFloat, _ := p.Amount.Float64()
		values := []any{
			p.Enrollment.TransactionID,
			p.Enrollment.Snapshot.Name,
			p.Enrollment.Snapshot.Phone,
			p.Enrollment.Course.Name,
			p.Category,
			amountFloat,
			p.PaymentMode,
			p.PaymentDate.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		total = total.Add(p.Amount)
	}

	totalRow := len(payments) + 2
	labelCell, _ := excelize.CoordinatesToCellName(5, totalRow)
	valueCell, _ := excelize.CoordinatesToCellName(6, totalRow)
	if err := f.SetCellValue(sheet, labelCell, "Total"); err != nil {
		return nil, err
	}
	totalFloat, _ := total.Float64()
	if err := f.SetCellValue(sheet, valueCell, totalFloat); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DuesList returns every open enrollment with money outstanding, for the
// collections follow-up screen.
func (s *ReportService) DuesList(ctx context.Context) ([]models.Enrollment, error) {
	return s.repos.Enrollment.ListOutstanding(ctx)
}

// DuesCSV exports the outstanding dues list as CSV
func (s *ReportService) DuesCSV(ctx context.Context) ([]byte, error) {
	enrollments, err := s.repos.Enrollment.ListOutstanding(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"Transaction ID", "Student", "Phone", "Course", "Final Amount", "Paid", "Remaining", "Next Due", "Status"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i := range enrollments {
		e := &enrollments[i]
		record := []string{
			e.TransactionID,
			e.Snapshot.Name,
			e.Snapshot.Phone,
			e.Course.Name,
			e.FinalAmount.StringFixed(2),
			e.AmountPaid.StringFixed(2),
			e.AmountRemaining.StringFixed(2),
			e.AmountDue.StringFixed(2),
			e.PaymentStatus,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename builds a dated attachment name
func ExportFilename(prefix, ext string, at time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, at.Format("20060102"), ext)
}
