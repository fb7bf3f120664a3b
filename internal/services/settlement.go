package services

import (
	"github.com/shopspring/decimal"

	"github.com/careerpoint/institute-api/internal/models"
)

// Settlement holds the recomputed financial state of an enrollment. All
// figures are rounded to two decimal places.
type Settlement struct {
	FinalAmount        decimal.Decimal
	AmountPaid         decimal.Decimal
	AmountRemaining    decimal.Decimal
	AmountDue          decimal.Decimal
	AdmissionRemaining decimal.Decimal
	CourseRemaining    decimal.Decimal
	Status             string
}

// two-decimal rounding applied to every derived figure
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// clampZero returns d, or zero when d is negative. Overpayment within a
// bucket is impossible through the API, but historic imports may carry it;
// remaining amounts never go negative either way.
func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ComputeSettlement derives the enrollment's financial state from its fee
// terms and the sums already collected per fee bucket.
//
// The admission fee and the discounted course fee settle independently:
// a payment tagged "Admission Fee" never reduces the course balance and
// vice versa. The next amount due is driven by the payment plan: the
// discounted course fee split across installments or months, capped at
// whatever actually remains, and zero once the course bucket is settled.
func ComputeSettlement(e *models.Enrollment, admissionPaid, coursePaid decimal.Decimal) Settlement {
	discounted := e.DiscountedCourseFee()
	finalAmount := round2(e.AdmissionFee.Add(discounted))

	admissionRemaining := round2(clampZero(e.AdmissionFee.Sub(admissionPaid)))
	courseRemaining := round2(clampZero(discounted.Sub(coursePaid)))

	amountPaid := round2(admissionPaid.Add(coursePaid))
	amountRemaining := round2(admissionRemaining.Add(courseRemaining))

	amountDue := nextInstallment(e, discounted, courseRemaining)

	status := models.PaymentStatusDue
	switch {
	case amountRemaining.IsZero():
		status = models.PaymentStatusPaid
	case amountPaid.IsPositive():
		status = models.PaymentStatusPartial
	}

	return Settlement{
		FinalAmount:        finalAmount,
		AmountPaid:         amountPaid,
		AmountRemaining:    amountRemaining,
		AmountDue:          amountDue,
		AdmissionRemaining: admissionRemaining,
		CourseRemaining:    courseRemaining,
		Status:             status,
	}
}

// nextInstallment returns the next course-fee amount expected under the
// enrollment's payment plan. A plan with a zero divisor degrades to
// one_time: the whole discounted fee at once.
func nextInstallment(e *models.Enrollment, discounted, courseRemaining decimal.Decimal) decimal.Decimal {
	if courseRemaining.IsZero() {
		return decimal.Zero
	}

	per := discounted
	switch e.PaymentType {
	case models.PaymentTypeInstallment:
		if e.TotalInstallments > 0 {
			per = discounted.DivRound(decimal.NewFromInt(int64(e.TotalInstallments)), 2)
		}
	case models.PaymentTypeMonthly:
		if e.CourseDuration > 0 {
			per = discounted.DivRound(decimal.NewFromInt(int64(e.CourseDuration)), 2)
		}
	}

	if per.GreaterThan(courseRemaining) {
		return courseRemaining
	}
	return round2(per)
}

// ValidatePayment checks a proposed payment against the enrollment's
// current bucket balances. The amount must be positive and must not exceed
// what remains in the chosen bucket; paying into a settled bucket is
// rejected outright.
func ValidatePayment(e *models.Enrollment, category string, amount, admissionPaid, coursePaid decimal.Decimal) error {
	if !models.ValidPaymentCategory(category) {
		return ValidationError("unknown payment category %q", category)
	}
	if !amount.IsPositive() {
		return ValidationError("payment amount must be positive")
	}

	var remaining decimal.Decimal
	var label string
	switch category {
	case models.PaymentCategoryAdmission:
		remaining = clampZero(e.AdmissionFee.Sub(admissionPaid))
		label = "admission fee"
	case models.PaymentCategoryCourse:
		remaining = clampZero(e.DiscountedCourseFee().Sub(coursePaid))
		label = "course fee"
	}

	if remaining.IsZero() {
		return ValidationError("%s is already settled", label)
	}
	if amount.GreaterThan(remaining) {
		return ValidationError("payment of %s exceeds %s balance of %s", amount.StringFixed(2), label, remaining.StringFixed(2))
	}
	return nil
}
