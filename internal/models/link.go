package models

import "time"

// Link is one short code mapping stored in the database.
type Link struct {
	ID        uint   `gorm:"primaryKey"`
	ShortCode string `gorm:"uniqueIndex;size:30;not null"`
	LongURL   string `gorm:"not null"`

	// CreatedAt is set from the service clock; gorm only fills it when left zero.
	CreatedAt time.Time `gorm:"index:idx_links_owner_created,priority:2"`

	// ExpiresAt is nil for permanent links.
	ExpiresAt   *time.Time `gorm:"index"`
	IsPermanent bool       `gorm:"not null"`
	ClickCount  int64      `gorm:"not null"`

	// OwnerID is the opaque account identifier handed over by the identity layer.
	OwnerID *string `gorm:"size:64;index:idx_links_owner_created,priority:1"`

	Clicks []Click `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE"`
}

// IsExpiredAt reports whether the link must stop resolving at instant now.
// Expiry is inclusive: a link with ExpiresAt == now is already expired.
func (l *Link) IsExpiredAt(now time.Time) bool {
	if l.IsPermanent || l.ExpiresAt == nil {
		return false
	}
	return !now.Before(*l.ExpiresAt)
}

// IsOwnedBy reports whether the link belongs to accountID.
func (l *Link) IsOwnedBy(accountID string) bool {
	return l.OwnerID != nil && *l.OwnerID == accountID
}
