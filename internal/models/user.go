// internal/models/user.go
package models

import "time"

// User 用户信息
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastLogin   time.Time `json:"last_login"`
	LastUpdated time.Time `json:"last_updated"`
}
