package models

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Click is one append-only resolution event. It is owned by its Link and
// removed together with it.
type Click struct {
	ID uint `gorm:"primaryKey"`

	// PublicID identifies the event outside the database.
	PublicID uuid.UUID `gorm:"type:text;uniqueIndex;not null"`

	LinkID    uint      `gorm:"index;not null"`
	Timestamp time.Time `gorm:"not null"`
	UserAgent string    `gorm:"size:255"`
	Referrer  string    `gorm:"size:255"`
	IPAddress string    `gorm:"size:50"`
}

// ClickEvent is the lightweight payload handed from the resolver to the
// click pipeline, possibly through a channel.
type ClickEvent struct {
	LinkID    uint
	ShortCode string
	Timestamp time.Time
	UserAgent string
	Referrer  string
	IPAddress string
}

// ToClick converts the event into a persistable Click with a fresh public id.
func (e ClickEvent) ToClick() *Click {
	return &Click{
		PublicID:  uuid.New(),
		LinkID:    e.LinkID,
		Timestamp: e.Timestamp.UTC(),
		UserAgent: truncate(e.UserAgent, 255),
		Referrer:  truncate(e.Referrer, 255),
		IPAddress: truncate(e.IPAddress, 50),
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
