// Package model contains the GORM persistence models mirroring the database schema.
package model

import (
	"time"
)

// UserModel mirrors the 'users' table. The numeric primary key is generated by
// the database. Session and reset tokens are nullable and unique so a token
// lookup can never resolve to more than one user.
type UserModel struct {
	ID               int64      `gorm:"primaryKey;autoIncrement"`
	Email            string     `gorm:"type:varchar(255);unique;not null"`
	HashedPassword   []byte     `gorm:"type:bytea;not null"`
	SessionToken     *string    `gorm:"type:varchar(64);uniqueIndex"`
	SessionCreatedAt *time.Time
	ResetToken       *string `gorm:"type:varchar(64);uniqueIndex"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
