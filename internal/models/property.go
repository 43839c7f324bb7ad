package models

import (
	"time"

	"gorm.io/datatypes"
)

// PropertyCache caches one analyzed property per normalized address.
// Rows are replaced wholesale when the freshness window lapses.
// DB: property_cache
type PropertyCache struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	NormalizedAddress string         `gorm:"column:normalized_address;size:500;not null;uniqueIndex:property_cache_normalized_address_key" json:"normalized_address"`
	RawAddress        string         `gorm:"column:raw_address;size:500;not null" json:"raw_address"`
	AttomData         datatypes.JSON `gorm:"column:attom_data;type:jsonb" json:"attom_data,omitempty"`
	KreitScore        int            `gorm:"column:kreit_score;not null" json:"kreit_score"`
	SimpleSummary     string         `gorm:"column:simple_summary;type:text" json:"simple_summary"`
	ProSummary        string         `gorm:"column:pro_summary;type:text" json:"pro_summary"`
	PremiumData       datatypes.JSON `gorm:"column:premium_data;type:jsonb" json:"premium_data,omitempty"`
	LastFetchedAt     time.Time      `gorm:"column:last_fetched_at" json:"last_fetched_at"`
}

func (PropertyCache) TableName() string {
	return "property_cache"
}

// Search records one score request for later analytics
// DB: searches
type Search struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     *uint          `gorm:"column:user_id;index" json:"user_id,omitempty"`
	Address    string         `gorm:"column:address;size:500;not null" json:"address"`
	KreitScore *int           `gorm:"column:kreit_score" json:"kreit_score,omitempty"`
	AIResponse datatypes.JSON `gorm:"column:ai_response;type:jsonb" json:"ai_response,omitempty"`
	SearchedAt time.Time      `gorm:"column:searched_at;autoCreateTime" json:"searched_at"`
}

func (Search) TableName() string {
	return "searches"
}
