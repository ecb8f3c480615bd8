package model

import (
	"time"
)

// Usuario is a back-office operator able to log in.
type Usuario struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	Email        string `gorm:"size:254;not null;default:''"`
	Nombre       string `gorm:"size:150;not null;default:''"`
	Apellido     string `gorm:"size:150;not null;default:''"`
	PasswordHash string `gorm:"not null"`
	Activo       bool   `gorm:"not null"`
	EsStaff      bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }

// Sesion is the server-side half of a login session, kept in Redis.
type Sesion struct {
	ID        string
	UsuarioID uint
	CSRFToken string
}
