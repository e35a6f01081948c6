package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleVisitor  = "visitor"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

type User struct {
	gorm.Model
	Name               string    `json:"name"`
	Email              string    `json:"email" gorm:"uniqueIndex"`
	PasswordHash       string    `json:"-"`
	IdentificationCode string    `json:"identification_code" gorm:"uniqueIndex"`
	BirthDate          time.Time `json:"birth_date"`
	Role               string    `json:"role"`
}

// Age returns the user's completed years at the given moment: the birth year
// difference, minus one when the birthday has not yet occurred this year.
func (u *User) Age(at time.Time) int {
	age := at.Year() - u.BirthDate.Year()
	if at.Month() < u.BirthDate.Month() ||
		(at.Month() == u.BirthDate.Month() && at.Day() < u.BirthDate.Day()) {
		age--
	}
	return age
}
