package models

import (
	"time"

	"gorm.io/datatypes"
)

// SharedScore is a public snapshot of an analyzed property, addressable by
// an opaque share id and expiring after a fixed window.
// DB: shared_scores
type SharedScore struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ShareID       string         `gorm:"column:share_id;size:32;not null;uniqueIndex:shared_scores_share_id_key" json:"share_id"`
	Address       string         `gorm:"column:address;size:500;not null" json:"address"`
	Score         int            `gorm:"column:score;not null" json:"score"`
	SimpleSummary string         `gorm:"column:simple_summary;type:text" json:"simple_summary"`
	ProSummary    string         `gorm:"column:pro_summary;type:text" json:"pro_summary"`
	PremiumData   datatypes.JSON `gorm:"column:premium_data;type:jsonb" json:"premium_data,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ExpiresAt     *time.Time     `gorm:"column:expires_at" json:"expires_at,omitempty"`
}

func (SharedScore) TableName() string {
	return "shared_scores"
}
