package models

import "time"

// SubscriptionFields is the archivable column set of a sep2 subscription.
type SubscriptionFields struct {
	AggregatorID    uint64  `gorm:"column:aggregator_id;not null;index"`
	ResourceType    int32   `gorm:"column:resource_type;not null;index"`
	ResourceID      *uint64 `gorm:"column:resource_id"`
	ScopedSiteID    *uint64 `gorm:"column:scoped_site_id;index"`
	NotificationURI string  `gorm:"column:notification_uri;type:varchar(2048);not null"`
	EntityLimit     int32   `gorm:"column:entity_limit;not null;default:1"`

	CreatedTime time.Time `gorm:"column:created_time;not null"`
	ChangedTime time.Time `gorm:"column:changed_time;not null;index"`
}

// SubscriptionModel is the GORM model for subscriptions.
type SubscriptionModel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`
	SubscriptionFields

	// Conditions eager-loads the (at most one) attached condition.
	Conditions []SubscriptionConditionModel `gorm:"foreignKey:SubscriptionID"`
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// SubscriptionConditionModel is the GORM model for subscription_conditions.
// The schema permits one condition per subscription.
type SubscriptionConditionModel struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	SubscriptionID uint64 `gorm:"column:subscription_id;not null;index"`
	Attribute      int32  `gorm:"column:attribute;not null"`
	LowerThreshold *int64 `gorm:"column:lower_threshold"`
	UpperThreshold *int64 `gorm:"column:upper_threshold"`
}

func (SubscriptionConditionModel) TableName() string {
	return "subscription_conditions"
}

// ArchiveSubscriptionModel is the append-only shadow of subscriptions.
// Conditions are not archived; the shadow is only consulted for deletion
// detection.
type ArchiveSubscriptionModel struct {
	ArchiveID   uint64     `gorm:"primaryKey;autoIncrement;column:archive_id"`
	ArchiveTime time.Time  `gorm:"column:archive_time;not null"`
	DeletedTime *time.Time `gorm:"column:deleted_time;index"`
	ID          uint64     `gorm:"column:id;not null;index"`
	SubscriptionFields
}

func (ArchiveSubscriptionModel) TableName() string {
	return "archive_subscriptions"
}
