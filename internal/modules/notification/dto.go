package notification

import "tourbook/internal/domain"

type ListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}
