package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/jung-kurt/gofpdf"

	"github.com/careerpoint/institute-api/internal/models"
)

// ReceiptService renders payment receipts, fee statements and course
// certificates as PDF.
type ReceiptService struct {
	settings *SettingService
}

// NewReceiptService creates a new receipt service
func NewReceiptService(settings *SettingService) *ReceiptService {
	return &ReceiptService{settings: settings}
}

// PaymentReceipt renders a single payment receipt
func (s *ReceiptService) PaymentReceipt(ctx context.Context, enrollment *models.Enrollment, payment *models.Payment) ([]byte, error) {
	name, address, phone, _ := s.settings.InstituteProfile(ctx)
	if name == "" {
		name = "Career Point Institute"
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if address != "" {
		pdf.CellFormat(0, 5, address, "", 1, "C", false, 0, "")
	}
	if phone != "" {
		pdf.CellFormat(0, 5, "Ph: "+phone, "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "PAYMENT RECEIPT", "T", 1, "C", false, 0, "")
	pdf.Ln(2)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
	}

	row("Receipt No", fmt.Sprintf("%s-%d", enrollment.TransactionID, payment.ID))
	row("Date", payment.PaymentDate.Format("02 Jan 2006"))
	row("Student", enrollment.Snapshot.Name)
	row("Phone", enrollment.Snapshot.Phone)
	row("Course", enrollment.Course.Name)
	row("Towards", payment.Category)
	row("Mode", payment.PaymentMode)
	if payment.Reference != "" {
		row("Reference", payment.Reference)
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(45, 8, "Amount Received", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Rs. "+payment.Amount.StringFixed(2), "T", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Balance remaining: Rs. %s", enrollment.AmountRemaining.StringFixed(2)), "", 1, "L", false, 0, "")

	footer, _ := s.settings.Get(ctx, models.SettingReceiptFooter)
	if footer != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(0, 4, footer, "", "C", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Certificate renders the course completion certificate
func (s *ReceiptService) Certificate(ctx context.Context, enrollment *models.Enrollment) ([]byte, error) {
	if enrollment.CertificateNumber == nil {
		return nil, ValidationError("certificate number has not been assigned")
	}
	name, address, _, _ := s.settings.InstituteProfile(ctx)
	if name == "" {
		name = "Career Point Institute"
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetLineWidth(1.2)
	pdf.Rect(8, 8, 281, 194, "D")

	pdf.SetY(30)
	pdf.SetFont("Times", "B", 28)
	pdf.CellFormat(0, 12, name, "", 1, "C", false, 0, "")
	if address != "" {
		pdf.SetFont("Times", "", 11)
		pdf.CellFormat(0, 6, address, "", 1, "C", false, 0, "")
	}
	pdf.Ln(8)
	pdf.SetFont("Times", "B", 20)
	pdf.CellFormat(0, 10, "CERTIFICATE OF COMPLETION", "", 1, "C", false, 0, "")
	pdf.Ln(8)
	pdf.SetFont("Times", "", 13)
	pdf.CellFormat(0, 8, "This is to certify that", "", 1, "C", false, 0, "")
	pdf.SetFont("Times", "B", 18)
	pdf.CellFormat(0, 10, enrollment.Snapshot.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Times", "", 13)
	pdf.CellFormat(0, 8, "has successfully completed the course", "", 1, "C", false, 0, "")
	pdf.SetFont("Times", "B", 16)
	pdf.CellFormat(0, 10, enrollment.Course.Name, "", 1, "C", false, 0, "")

	completed := ""
	if enrollment.CompletionDate != nil {
		completed = enrollment.CompletionDate.Format("02 Jan 2006")
	}
	if completed != "" {
		pdf.SetFont("Times", "", 12)
		pdf.CellFormat(0, 8, "on "+completed, "", 1, "C", false, 0, "")
	}

	pdf.SetY(180)
	pdf.SetFont("Times", "", 10)
	pdf.CellFormat(0, 6, "Certificate No: "+*enrollment.CertificateNumber, "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var statementTemplate = template.Must(template.New("statement").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Arial, sans-serif; font-size: 12px; margin: 24px; }
h1 { font-size: 20px; margin-bottom: 0; }
.sub { color: #555; margin-top: 2px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border: 1px solid #999; padding: 6px 8px; text-align: left; }
th { background: #eee; }
.right { text-align: right; }
.totals td { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.InstituteName}}</h1>
<p class="sub">{{.InstituteAddress}}</p>
<h2>Fee Statement &mdash; {{.TransactionID}}</h2>
<p>
Student: <b>{{.StudentName}}</b> ({{.StudentPhone}})<br>
Course: <b>{{.CourseName}}</b><br>
Enrolled: {{.EnrollmentDate}}
</p>
<table>
<tr><th>Date</th><th>Towards</th><th>Mode</th><th class="right">Amount</th></tr>
{{range .Payments}}
<tr><td>{{.Date}}</td><td>{{.Category}}</td><td>{{.Mode}}</td><td class="right">{{.Amount}}</td></tr>
{{end}}
<tr class="totals"><td colspan="3">Total Paid</td><td class="right">{{.AmountPaid}}</td></tr>
<tr class="totals"><td colspan="3">Balance Remaining</td><td class="right">{{.AmountRemaining}}</td></tr>
</table>
<p>Total payable: <b>{{.FinalAmount}}</b> (admission {{.AdmissionFee}} + course {{.CourseFee}} &minus; discount {{.Discount}})</p>
</body>
</html>`))

type statementPayment struct {
	Date     string
	Category string
	Mode     string
	Amount   string
}

type statementData struct {
	InstituteName    string
	InstituteAddress string
	TransactionID    string
	StudentName      string
	StudentPhone     string
	CourseName       string
	EnrollmentDate   string
	Payments         []statementPayment
	FinalAmount      string
	AmountPaid       string
	AmountRemaining  string
	AdmissionFee     string
	CourseFee        string
	Discount         string
}

// FeeStatement renders the full payment history of an enrollment as a PDF
// via wkhtmltopdf.
func (s *ReceiptService) FeeStatement(ctx context.Context, enrollment *models.Enrollment) ([]byte, error) {
	name, address, _, _ := s.settings.InstituteProfile(ctx)
	if name == "" {
		name = "Career Point Institute"
	}

	data := statementData{
		InstituteName:    name,
		InstituteAddress: address,
		TransactionID:    enrollment.TransactionID,
		StudentName:      enrollment.Snapshot.Name,
		StudentPhone:     enrollment.Snapshot.Phone,
		CourseName:       enrollment.Course.Name,
		EnrollmentDate:   enrollment.EnrollmentDate.Format("02 Jan 2006"),
		FinalAmount:      enrollment.FinalAmount.StringFixed(2),
		AmountPaid:       enrollment.AmountPaid.StringFixed(2),
		AmountRemaining:  enrollment.AmountRemaining.StringFixed(2),
		AdmissionFee:     enrollment.AdmissionFee.StringFixed(2),
		CourseFee:        enrollment.CourseFee.StringFixed(2),
		Discount:         enrollment.Discount.StringFixed(2),
	}
	for i := range enrollment.Payments {
		p := &enrollment.Payments[i]
		data.Payments = append(data.Payments, statementPayment{
			Date:     p.PaymentDate.Format("02 Jan 2006"),
			Category: p.Category,
			Mode:     p.PaymentMode,
			Amount:   p.Amount.StringFixed(2),
		})
	}

	var html bytes.Buffer
	if err := statementTemplate.Execute(&html, data); err != nil {
		return nil, err
	}

	gen, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("wkhtmltopdf not available: %w", err)
	}
	page := wkhtmltopdf.NewPageReader(&html)
	page.EnableLocalFileAccess.Set(true)
	gen.AddPage(page)
	gen.PageSize.Set(wkhtmltopdf.PageSizeA4)

	if err := gen.Create(); err != nil {
		return nil, err
	}
	return gen.Bytes(), nil
}
