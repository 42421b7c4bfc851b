package models

import "time"

// Progress is one user's watch state for one video. Last write wins; the
// server never merges or derives completion from playback position.
type Progress struct {
	UserID          string    `gorm:"primaryKey;column:userId;type:text" json:"userId"`
	VideoID         string    `gorm:"primaryKey;column:videoId;type:text" json:"videoId"`
	ProgressSeconds float64   `gorm:"column:progressSeconds" json:"progressSeconds"`
	Completed       bool      `gorm:"column:completed;default:false" json:"completed"`
	UpdatedAt       time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}
