package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/careerpoint/institute-api/internal/models"
	"github.com/careerpoint/institute-api/internal/repository"
)

// in-memory mocks; unimplemented interface methods panic via the embedded nil

type mockEnrollmentRepo struct {
	repository.EnrollmentRepository
	enrollments map[uint]*models.Enrollment
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	e, ok := m.enrollments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockEnrollmentRepo) Update(ctx context.Context, e *models.Enrollment) error {
	cp := *e
	m.enrollments[e.ID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) CountActiveByStudent(ctx context.Context, studentRefID uint) (int64, error) {
	var n int64
	for _, e := range m.enrollments {
		if e.StudentRefID == studentRefID && !e.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (m *mockEnrollmentRepo) ExistsActive(ctx context.Context, studentRefID, courseID uint) (bool, error) {
	for _, e := range m.enrollments {
		if e.StudentRefID == studentRefID && e.CourseID == courseID && !e.IsDeleted {
			return true, nil
		}
	}
	return false, nil
}

type mockPaymentRepo struct {
	repository.PaymentRepository
	payments []models.Payment
	nextID   uint
}

func (m *mockPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	m.nextID++
	p.ID = m.nextID
	m.payments = append(m.payments, *p)
	return nil
}

func (m *mockPaymentRepo) SumByCategory(ctx context.Context, enrollmentID uint, category string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range m.payments {
		if p.EnrollmentID == enrollmentID && p.Category == category {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (m *mockPaymentRepo) CountByEnrollment(ctx context.Context, enrollmentID uint) (int64, error) {
	var n int64
	for _, p := range m.payments {
		if p.EnrollmentID == enrollmentID {
			n++
		}
	}
	return n, nil
}

type mockStudentRepo struct {
	repository.StudentRepository
	students map[uint]*models.Student
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id uint) (*models.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockStudentRepo) Update(ctx context.Context, s *models.Student) error {
	cp := *s
	m.students[s.ID] = &cp
	return nil
}

type mockAuditRepo struct {
	repository.AuditLogRepository
	entries []models.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	m.entries = append(m.entries, *entry)
	return nil
}

type mockUserRepo struct {
	repository.UserRepository
}

func (m *mockUserRepo) ListAdmins(ctx context.Context) ([]models.User, error) {
	return nil, nil
}

type mockCourseRepo struct {
	repository.CourseRepository
	courses map[uint]*models.Course
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id uint) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

type mockSettingRepo struct {
	repository.SettingRepository
	values map[string]string
}

func (m *mockSettingRepo) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return v, nil
}

type fixture struct {
	svc         *EnrollmentService
	enrollments *mockEnrollmentRepo
	payments    *mockPaymentRepo
	students    *mockStudentRepo
	courses     *mockCourseRepo
	settings    *mockSettingRepo
	audits      *mockAuditRepo
}

func newFixture() *fixture {
	enrollments := &mockEnrollmentRepo{enrollments: map[uint]*models.Enrollment{}}
	payments := &mockPaymentRepo{}
	students := &mockStudentRepo{students: map[uint]*models.Student{}}
	courses := &mockCourseRepo{courses: map[uint]*models.Course{}}
	settings := &mockSettingRepo{values: map[string]string{}}
	audits := &mockAuditRepo{}

	repos := &repository.Repositories{
		Enrollment: enrollments,
		Payment:    payments,
		Student:    students,
		Course:     courses,
		Setting:    settings,
		AuditLog:   audits,
		User:       &mockUserRepo{},
	}
	audit := NewAuditService(repos)
	notifier := NewNotificationService(repos)
	settingSvc := NewSettingService(repos, audit)
	return &fixture{
		svc:         NewEnrollmentService(repos, settingSvc, audit, notifier),
		enrollments: enrollments,
		payments:    payments,
		students:    students,
		courses:     courses,
		settings:    settings,
		audits:      audits,
	}
}

func (f *fixture) seedEnrollment(e *models.Enrollment) {
	settled := ComputeSettlement(e, decimal.Zero, decimal.Zero)
	applySettlement(e, settled)
	f.enrollments.enrollments[e.ID] = e
}

func seedStudent(f *fixture, id uint) *models.Student {
	s := &models.Student{ID: id, StudentID: 25010001, FirstName: "Asha", LastName: "Verma", Phone: "9876500001"}
	f.students.students[id] = s
	return s
}

func baseEnrollment(id, studentID uint) *models.Enrollment {
	return &models.Enrollment{
		ID:                id,
		TransactionID:     "E0001",
		StudentRefID:      studentID,
		EnrollmentDate:    time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		AdmissionFee:      decimal.NewFromInt(500),
		CourseFee:         decimal.NewFromInt(10000),
		Discount:          decimal.NewFromInt(1000),
		PaymentType:       models.PaymentTypeInstallment,
		TotalInstallments: 3,
		Status:            models.EnrollmentStatusActive,
		Snapshot:          models.StudentSnapshot{Name: "Asha Verma", Phone: "9876500001"},
	}
}

func TestAddPayment_RecordsAndRecomputes(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	f.seedEnrollment(baseEnrollment(10, 1))

	payment, err := f.svc.AddPayment(ctx, nil, 10, AddPaymentInput{
		Category:    models.PaymentCategoryAdmission,
		Amount:      decimal.NewFromInt(500),
		PaymentDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, payment)

	// first payment is dated to the enrollment date
	assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), payment.PaymentDate)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	assert.Equal(t, models.PaymentModeCash, payment.PaymentMode)

	updated := f.enrollments.enrollments[10]
	assert.Equal(t, models.PaymentStatusPartial, updated.PaymentStatus)
	assert.True(t, updated.AmountPaid.Equal(decimal.NewFromInt(500)))
	assert.True(t, updated.AmountRemaining.Equal(decimal.NewFromInt(9000)))
}

func TestAddPayment_SecondPaymentKeepsOwnDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	f.seedEnrollment(baseEnrollment(10, 1))

	_, err := f.svc.AddPayment(ctx, nil, 10, AddPaymentInput{
		Category: models.PaymentCategoryAdmission,
		Amount:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	later := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	second, err := f.svc.AddPayment(ctx, nil, 10, AddPaymentInput{
		Category:    models.PaymentCategoryCourse,
		Amount:      decimal.NewFromInt(3000),
		PaymentDate: later,
	})
	require.NoError(t, err)
	assert.Equal(t, later, second.PaymentDate)
}

func TestAddPayment_SettlesEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	f.seedEnrollment(baseEnrollment(10, 1))

	steps := []struct {
		category string
		amount   int64
	}{
		{models.PaymentCategoryAdmission, 500},
		{models.PaymentCategoryCourse, 3000},
		{models.PaymentCategoryCourse, 3000},
		{models.PaymentCategoryCourse, 3000},
	}
	for _, step := range steps {
		_, err := f.svc.AddPayment(ctx, nil, 10, AddPaymentInput{
			Category: step.category,
			Amount:   decimal.NewFromInt(step.amount),
		})
		require.NoError(t, err)
	}

	updated := f.enrollments.enrollments[10]
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	assert.True(t, updated.AmountRemaining.IsZero())
	assert.True(t, updated.AmountDue.IsZero())
}

func TestAddPayment_RejectsOverpayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	f.seedEnrollment(baseEnrollment(10, 1))

	_, err := f.svc.AddPayment(ctx, nil, 10, AddPaymentInput{
		Category: models.PaymentCategoryCourse,
		Amount:   decimal.NewFromInt(10000), // only 9000 due after discount
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.payments.payments, "rejected payment must not be stored")
}

func TestAddPayment_RejectsSettledBucket(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	f.seedEnrollment(baseEnrollment(10, 1))

	_, err := f.svc.AddPayment(ctx, nil, 10, AddPaymentInput{
		Category: models.PaymentCategoryAdmission,
		Amount:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	_, err = f.svc.AddPayment(ctx, nil, 10, AddPaymentInput{
		Category: models.PaymentCategoryAdmission,
		Amount:   decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddPayment_RejectsDeletedEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	e := baseEnrollment(10, 1)
	e.MarkDeleted()
	f.seedEnrollment(e)

	_, err := f.svc.AddPayment(ctx, nil, 10, AddPaymentInput{
		Category: models.PaymentCategoryAdmission,
		Amount:   decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDelete_CascadesToStudentOnLastEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	f.seedEnrollment(baseEnrollment(10, 1))

	require.NoError(t, f.svc.Delete(ctx, nil, 10))

	assert.True(t, f.enrollments.enrollments[10].IsDeleted)
	assert.True(t, f.students.students[1].IsDeleted, "student goes with their last enrollment")
}

func TestDelete_KeepsStudentWithOtherEnrollments(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	f.seedEnrollment(baseEnrollment(10, 1))
	other := baseEnrollment(11, 1)
	other.TransactionID = "E0002"
	f.seedEnrollment(other)

	require.NoError(t, f.svc.Delete(ctx, nil, 10))

	assert.True(t, f.enrollments.enrollments[10].IsDeleted)
	assert.False(t, f.students.students[1].IsDeleted)
}

func TestRestore_BringsStudentBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	student := seedStudent(f, 1)
	student.MarkDeleted()
	f.students.students[1] = student

	e := baseEnrollment(10, 1)
	e.MarkDeleted()
	f.seedEnrollment(e)

	restored, err := f.svc.Restore(ctx, nil, 10)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.False(t, f.students.students[1].IsDeleted, "restoring an enrollment restores its student")
}

func seedCourse(f *fixture, id uint) *models.Course {
	c := &models.Course{
		ID:           id,
		Name:         "Tally Prime",
		Fee:          decimal.NewFromInt(10000),
		AdmissionFee: decimal.NewFromInt(500),
		IsActive:     true,
	}
	f.courses.courses[id] = c
	return c
}

func TestAddPayment_RejectsSubCentAmount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	f.seedEnrollment(baseEnrollment(10, 1))

	_, err := f.svc.AddPayment(ctx, nil, 10, AddPaymentInput{
		Category: models.PaymentCategoryAdmission,
		Amount:   decimal.RequireFromString("0.004"), // rounds to 0.00
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.payments.payments, "a zero-value payment must not be stored")

	updated := f.enrollments.enrollments[10]
	assert.Equal(t, models.PaymentStatusDue, updated.PaymentStatus)
}

func TestCreate_RejectsDuplicateActiveEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	seedCourse(f, 5)
	existing := baseEnrollment(10, 1)
	existing.CourseID = 5
	f.seedEnrollment(existing)

	_, err := f.svc.Create(ctx, nil, CreateEnrollmentInput{
		StudentRefID: 1,
		CourseID:     5,
		PaymentType:  models.PaymentTypeOneTime,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreate_RejectsUnknownPaymentType(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), nil, CreateEnrollmentInput{
		StudentRefID: 1,
		CourseID:     1,
		PaymentType:  "weekly",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreate_RejectsNegativeDiscount(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), nil, CreateEnrollmentInput{
		StudentRefID: 1,
		CourseID:     1,
		PaymentType:  models.PaymentTypeOneTime,
		Discount:     decimal.NewFromInt(-10),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveAdmissionFee(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.settings.values[models.SettingDefaultAdmissionFee] = "750"

	course := seedCourse(f, 5)

	explicit := decimal.NewFromInt(300)
	assert.True(t, f.svc.resolveAdmissionFee(ctx, &explicit, course).Equal(explicit),
		"explicit fee wins")
	assert.True(t, f.svc.resolveAdmissionFee(ctx, nil, course).Equal(decimal.NewFromInt(500)),
		"course fee is the next fallback")

	course.AdmissionFee = decimal.Zero
	assert.True(t, f.svc.resolveAdmissionFee(ctx, nil, course).Equal(decimal.NewFromInt(750)),
		"institute default applies when the course has no fee")

	delete(f.settings.values, models.SettingDefaultAdmissionFee)
	assert.True(t, f.svc.resolveAdmissionFee(ctx, nil, course).IsZero())
}

func TestDefaultDueDate(t *testing.T) {
	enrolled := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), defaultDueDate(enrolled))
}

func TestSnapshotStudent_CapturesIdentityBlock(t *testing.T) {
	email := "asha@example.com"
	s := &models.Student{
		FirstName:      "Asha",
		LastName:       "Verma",
		Phone:          "9876500001",
		Email:          &email,
		Address:        "14 MG Road",
		City:           "Kota",
		State:          "Rajasthan",
		Pincode:        "324005",
		GuardianName:   "R Verma",
		GuardianPhone:  "9876500002",
		ReferralSource: models.ReferralSourceFriend,
	}

	snap := snapshotStudent(s)
	assert.Equal(t, "Asha Verma", snap.Name)
	assert.Equal(t, "asha@example.com", snap.Email)
	assert.Equal(t, "14 MG Road", snap.Address)
	assert.Equal(t, "Kota", snap.City)
	assert.Equal(t, "Rajasthan", snap.State)
	assert.Equal(t, "324005", snap.Pincode)
	assert.Equal(t, "R Verma", snap.GuardianName)
	assert.Equal(t, "9876500002", snap.GuardianPhone)
	assert.Equal(t, models.ReferralSourceFriend, snap.ReferralSource)
}

func TestUpdate_SetsDueDateAndNotes(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	f.seedEnrollment(baseEnrollment(10, 1))

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	notes := "fee concession approved by director"
	updated, err := f.svc.Update(ctx, nil, 10, UpdateEnrollmentInput{
		DueDate: &due,
		Notes:   &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, due, updated.DueDate)
	assert.Equal(t, notes, updated.Notes)
}

func TestUpdate_PlanChangeRecomputesDue(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedStudent(f, 1)
	f.seedEnrollment(baseEnrollment(10, 1))

	newType := models.PaymentTypeMonthly
	months := 6
	updated, err := f.svc.Update(ctx, nil, 10, UpdateEnrollmentInput{
		PaymentType:    &newType,
		CourseDuration: &months,
	})
	require.NoError(t, err)
	assert.True(t, updated.AmountDue.Equal(decimal.NewFromInt(1500)), "9000/6, got %s", updated.AmountDue)
}
