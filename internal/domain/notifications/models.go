package notifications

import "time"

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Settings struct {
	EmailEnabled bool   `json:"emailNotificationsEnabled"`
	EmailFrom    string `json:"emailFrom"`
}

// Contact is the employee side of a compliance notification.
type Contact struct {
	EmployeeID string
	Name       string
	UserID     string
}
