package models

import (
	"time"
)

// Doctor represents a registered physician account
type Doctor struct {
	ID            int64      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name          string     `gorm:"size:255;not null;column:name" json:"name"`
	Email         string     `gorm:"size:255;not null;unique;index;column:email" json:"email"`
	Password      string     `gorm:"size:255;not null;column:password" json:"-"`
	Specialty     string     `gorm:"size:255;column:specialty" json:"specialty"`
	LicenseNumber string     `gorm:"size:100;unique;column:license_number" json:"license_number"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Analyses      []Analysis `gorm:"foreignKey:DoctorID;references:ID" json:"-"`
}

func (Doctor) TableName() string {
	return "doctors"
}
