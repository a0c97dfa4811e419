package domain

import "time"

// NotificationType drives feed item presentation.
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeAlert   NotificationType = "alert"
)

// Notification is a persisted per-user notification row, created as a side
// effect of lifecycle transitions.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      NotificationType
	Link      string
	IsRead    bool
	CreatedAt time.Time
}

// FeedItemKind distinguishes stored notification rows from items derived on
// the fly from business data.
type FeedItemKind string

const (
	FeedItemPersisted FeedItemKind = "persisted"
	FeedItemSynthetic FeedItemKind = "synthetic"
)

// FeedItem is one entry of a user's aggregated notification feed. Synthetic
// items carry a stable id derived from their source entity so read/dismiss
// markers survive recomputation.
type FeedItem struct {
	ID        string
	Kind      FeedItemKind
	Title     string
	Message   string
	Type      NotificationType
	Link      string
	IsRead    bool
	CreatedAt time.Time
}
