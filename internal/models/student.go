package models

import (
	"time"
)

// Student represents an admitted student. The numeric StudentID is assigned
// from the student_id sequence at creation and never reused.
type Student struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	StudentID      int64      `gorm:"uniqueIndex;not null" json:"student_id"`
	FirstName      string     `gorm:"not null" json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          *string    `gorm:"index" json:"email"`
	Phone          string     `gorm:"not null;index" json:"phone"`
	AltPhone       string     `json:"alt_phone"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Gender         string     `json:"gender"`
	Address        string     `json:"address"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Pincode        string     `json:"pincode"`
	GuardianName   string     `json:"guardian_name"`
	GuardianPhone  string     `json:"guardian_phone"`
	Qualification  string     `json:"qualification"`
	ReferralSource string     `json:"referral_source"`
	ReferredByID   *uint      `gorm:"index" json:"referred_by_id"`
	ReferredByName string     `json:"referred_by_name"`
	PhotoPath      string     `json:"photo_path"`
	AdmissionDate  time.Time  `gorm:"not null" json:"admission_date"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	ReferredBy  *Student     `gorm:"foreignKey:ReferredByID" json:"-"`
	Enrollments []Enrollment `gorm:"foreignKey:StudentRefID" json:"enrollments,omitempty"`
}

// TableName specifies the table name for Student
func (Student) TableName() string {
	return "students"
}

// Gender constants
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// FullName returns the student's display name
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// StudentResponse is the JSON response format for students
type StudentResponse struct {
	ID             uint       `json:"id"`
	StudentID      int64      `json:"student_id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	FullName       string     `json:"full_name"`
	Email          *string    `json:"email"`
	Phone          string     `json:"phone"`
	AltPhone       string     `json:"alt_phone,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Gender         string     `json:"gender"`
	Address        string     `json:"address"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Pincode        string     `json:"pincode"`
	GuardianName   string     `json:"guardian_name"`
	GuardianPhone  string     `json:"guardian_phone"`
	Qualification  string     `json:"qualification"`
	ReferralSource string     `json:"referral_source"`
	ReferredByID   *uint      `json:"referred_by_id,omitempty"`
	ReferredByName string     `json:"referred_by_name,omitempty"`
	PhotoPath      string     `json:"photo_path,omitempty"`
	AdmissionDate  time.Time  `json:"admission_date"`
	IsDeleted      bool       `json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	Enrollments []EnrollmentResponse `json:"enrollments,omitempty"`
}

// ToResponse converts Student to StudentResponse
func (s *Student) ToResponse() StudentResponse {
	resp := StudentResponse{
		ID:             s.ID,
		StudentID:      s.StudentID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		FullName:       s.FullName(),
		Email:          s.Email,
		Phone:          s.Phone,
		AltPhone:       s.AltPhone,
		DateOfBirth:    s.DateOfBirth,
		Gender:         s.Gender,
		Address:        s.Address,
		City:           s.City,
		State:          s.State,
		Pincode:        s.Pincode,
		GuardianName:   s.GuardianName,
		GuardianPhone:  s.GuardianPhone,
		Qualification:  s.Qualification,
		ReferralSource: s.ReferralSource,
		ReferredByID:   s.ReferredByID,
		ReferredByName: s.ReferredByName,
		PhotoPath:      s.PhotoPath,
		AdmissionDate:  s.AdmissionDate,
		IsDeleted:      s.IsDeleted,
		DeletedAt:      s.DeletedAt,
		CreatedAt:      s.CreatedAt,
	}
	for i := range s.Enrollments {
		resp.Enrollments = append(resp.Enrollments, s.Enrollments[i].ToResponse())
	}
	return resp
}
