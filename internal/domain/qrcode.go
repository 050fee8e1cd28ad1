package domain

import "time"

// QRCode is a generated code saved to a user's history. Image holds the PNG
// as standard base64 text.
type QRCode struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"-" gorm:"not null;index"`
	Text      string    `json:"qr_text" gorm:"column:qr_text;not null"`
	Image     string    `json:"qr_image" gorm:"column:qr_image;not null"`
	CreatedAt time.Time `json:"timestamp" gorm:"not null"`
}

func (QRCode) TableName() string { return "qr_codes" }
