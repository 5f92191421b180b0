package models

import (
	"time"
)

// Patient model. Patients are looked up or created by name at analysis
// time; the name acts as a soft natural key and no uniqueness constraint
// is enforced, so two same-named individuals share one record.
type Patient struct {
	ID             int64      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name           string     `gorm:"size:255;not null;index;column:name" json:"name"`
	Age            int        `gorm:"column:age" json:"age"`
	Gender         string     `gorm:"size:50;column:gender" json:"gender"`
	MedicalHistory string     `gorm:"type:text;column:medical_history" json:"medical_history"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Analyses       []Analysis `gorm:"foreignKey:PatientID;references:ID" json:"-"`
}

func (Patient) TableName() string {
	return "patients"
}

// Analysis is one diagnostic event: one image, one prediction, one report.
// PatientID and DoctorID are immutable after creation; DoctorID is the
// ownership key for every authorization check. ReportPath stays empty until
// report generation succeeds, so a crash between the two writes leaves a
// valid analysis without a report.
type Analysis struct {
	ID               int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PatientID        int64     `gorm:"column:patient_id;not null;index" json:"patient_id"`
	DoctorID         int64     `gorm:"column:doctor_id;not null;index" json:"doctor_id"`
	Disease          string    `gorm:"size:255;not null;column:disease" json:"disease"`
	Severity         Severity  `gorm:"size:50;column:severity" json:"severity"`
	Confidence       float64   `gorm:"column:confidence" json:"confidence"`
	Symptoms         string    `gorm:"type:text;column:symptoms" json:"symptoms"`
	Temperature      *float64  `gorm:"column:temperature" json:"temperature"`
	OxygenSaturation *int      `gorm:"column:oxygen_saturation" json:"oxygen_saturation"`
	HeartRate        *int      `gorm:"column:heart_rate" json:"heart_rate"`
	RespiratoryRate  *int      `gorm:"column:respiratory_rate" json:"respiratory_rate"`
	Recommendations  string    `gorm:"type:text;column:recommendations" json:"recommendations"`
	ImagePath        string    `gorm:"size:512;column:image_path" json:"image_path"`
	OverlayPath      string    `gorm:"size:512;column:overlay_path" json:"overlay_path"`
	ReportPath       string    `gorm:"size:512;column:report_path" json:"report_path"`
	IsFallback       bool      `gorm:"column:is_fallback;not null;default:false" json:"is_fallback"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"timestamp"`
	Patient          Patient   `gorm:"foreignKey:PatientID;references:ID" json:"-"`
	Doctor           Doctor    `gorm:"foreignKey:DoctorID;references:ID" json:"-"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// ReportAvailable reports whether the second-phase report write completed.
func (a *Analysis) ReportAvailable() bool {
	return a.ReportPath != ""
}
