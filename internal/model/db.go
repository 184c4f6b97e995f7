package model

import "time"

// CredentialMirror is the local key/value copy of the bearer tokens,
// keyed by session id. The signed cookies are the source of truth; the
// mirror exists for the request layer and must never hold a stale,
// different token for a live session.
type CredentialMirror struct {
	SessionID    string `gorm:"primaryKey;size:64;not null"`
	AccessToken  string `gorm:"size:2048"`
	RefreshToken string `gorm:"size:2048"`
	UserEmail    string `gorm:"size:255;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
