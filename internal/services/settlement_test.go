package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpoint/institute-api/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func installmentEnrollment() *models.Enrollment {
	return &models.Enrollment{
		AdmissionFee:      dec("500"),
		CourseFee:         dec("10000"),
		Discount:          dec("1000"),
		PaymentType:       models.PaymentTypeInstallment,
		TotalInstallments: 3,
	}
}

func TestComputeSettlement_FreshEnrollment(t *testing.T) {
	e := installmentEnrollment()
	s := ComputeSettlement(e, decimal.Zero, decimal.Zero)

	assert.True(t, s.FinalAmount.Equal(dec("9500")), "final = admission + discounted course, got %s", s.FinalAmount)
	assert.True(t, s.AmountPaid.IsZero())
	assert.True(t, s.AmountRemaining.Equal(dec("9500")))
	assert.True(t, s.AmountDue.Equal(dec("3000")), "per installment = 9000/3, got %s", s.AmountDue)
	assert.Equal(t, models.PaymentStatusDue, s.Status)
}

func TestComputeSettlement_PartialThenSettled(t *testing.T) {
	e := installmentEnrollment()

	// admission paid, one installment collected
	s := ComputeSettlement(e, dec("500"), dec("3000"))
	assert.True(t, s.AmountPaid.Equal(dec("3500")))
	assert.True(t, s.AmountRemaining.Equal(dec("6000")))
	assert.True(t, s.AmountDue.Equal(dec("3000")))
	assert.Equal(t, models.PaymentStatusPartial, s.Status)

	// everything collected
	s = ComputeSettlement(e, dec("500"), dec("9000"))
	assert.True(t, s.AmountRemaining.IsZero())
	assert.True(t, s.AmountDue.IsZero())
	assert.Equal(t, models.PaymentStatusPaid, s.Status)
}

func TestComputeSettlement_BucketsAreIndependent(t *testing.T) {
	e := installmentEnrollment()

	// course fully paid, admission untouched: remaining is exactly the
	// admission fee, not offset by course overachievement
	s := ComputeSettlement(e, decimal.Zero, dec("9000"))
	assert.True(t, s.AmountRemaining.Equal(dec("500")))
	assert.True(t, s.AdmissionRemaining.Equal(dec("500")))
	assert.True(t, s.CourseRemaining.IsZero())
	assert.True(t, s.AmountDue.IsZero(), "course bucket settled, nothing due")
	assert.Equal(t, models.PaymentStatusPartial, s.Status)
}

func TestComputeSettlement_DiscountExceedsCourseFee(t *testing.T) {
	e := &models.Enrollment{
		AdmissionFee: dec("500"),
		CourseFee:    dec("1000"),
		Discount:     dec("1500"),
		PaymentType:  models.PaymentTypeOneTime,
	}
	s := ComputeSettlement(e, decimal.Zero, decimal.Zero)
	assert.True(t, s.FinalAmount.Equal(dec("500")), "discounted course fee clamps at zero")
	assert.True(t, s.AmountDue.IsZero())
}

func TestComputeSettlement_ZeroFeesSettledImmediately(t *testing.T) {
	e := &models.Enrollment{PaymentType: models.PaymentTypeOneTime}
	s := ComputeSettlement(e, decimal.Zero, decimal.Zero)
	assert.True(t, s.AmountRemaining.IsZero())
	assert.Equal(t, models.PaymentStatusPaid, s.Status)
}

func TestComputeSettlement_MonthlyPlan(t *testing.T) {
	e := &models.Enrollment{
		CourseFee:      dec("12000"),
		PaymentType:    models.PaymentTypeMonthly,
		CourseDuration: 6,
	}
	s := ComputeSettlement(e, decimal.Zero, decimal.Zero)
	assert.True(t, s.AmountDue.Equal(dec("2000")))
}

func TestComputeSettlement_ZeroDivisorFallsBackToWhole(t *testing.T) {
	e := &models.Enrollment{
		CourseFee:         dec("6000"),
		PaymentType:       models.PaymentTypeInstallment,
		TotalInstallments: 0,
	}
	s := ComputeSettlement(e, decimal.Zero, decimal.Zero)
	assert.True(t, s.AmountDue.Equal(dec("6000")), "zero installments behaves like one_time")

	e = &models.Enrollment{
		CourseFee:      dec("6000"),
		PaymentType:    models.PaymentTypeMonthly,
		CourseDuration: 0,
	}
	s = ComputeSettlement(e, decimal.Zero, decimal.Zero)
	assert.True(t, s.AmountDue.Equal(dec("6000")))
}

func TestComputeSettlement_InstallmentRounding(t *testing.T) {
	e := &models.Enrollment{
		CourseFee:         dec("10000"),
		PaymentType:       models.PaymentTypeInstallment,
		TotalInstallments: 3,
	}
	s := ComputeSettlement(e, decimal.Zero, decimal.Zero)
	assert.True(t, s.AmountDue.Equal(dec("3333.33")), "got %s", s.AmountDue)
}

func TestComputeSettlement_DueCappedAtRemaining(t *testing.T) {
	e := installmentEnrollment()
	// only 1500 of course fee left; the 3000 installment caps at it
	s := ComputeSettlement(e, dec("500"), dec("7500"))
	assert.True(t, s.AmountDue.Equal(dec("1500")), "got %s", s.AmountDue)
}

func TestValidatePayment_Accepts(t *testing.T) {
	e := installmentEnrollment()
	require.NoError(t, ValidatePayment(e, models.PaymentCategoryAdmission, dec("500"), decimal.Zero, decimal.Zero))
	require.NoError(t, ValidatePayment(e, models.PaymentCategoryCourse, dec("3000"), decimal.Zero, decimal.Zero))
	require.NoError(t, ValidatePayment(e, models.PaymentCategoryCourse, dec("9000"), decimal.Zero, decimal.Zero))
}

func TestValidatePayment_RejectsOverpayment(t *testing.T) {
	e := installmentEnrollment()

	err := ValidatePayment(e, models.PaymentCategoryCourse, dec("10000"), decimal.Zero, decimal.Zero)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	// partial history shrinks the cap
	err = ValidatePayment(e, models.PaymentCategoryCourse, dec("4000"), decimal.Zero, dec("6000"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidatePayment_RejectsSettledBucket(t *testing.T) {
	e := installmentEnrollment()
	err := ValidatePayment(e, models.PaymentCategoryAdmission, dec("1"), dec("500"), decimal.Zero)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidatePayment_RejectsBadInput(t *testing.T) {
	e := installmentEnrollment()

	err := ValidatePayment(e, "Library Fee", dec("100"), decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	err = ValidatePayment(e, models.PaymentCategoryCourse, decimal.Zero, decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	err = ValidatePayment(e, models.PaymentCategoryCourse, dec("-50"), decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)
}
