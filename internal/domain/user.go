package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// SearchRecord is one saved search in a user's history.
type SearchRecord struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"userId"`
	PracticeArea      string    `json:"practiceArea"`
	State             string    `json:"state"`
	Location          string    `json:"location"`
	MinExperience     int       `json:"minExperience"`
	MaxRate           *float64  `json:"maxRate"`
	ResponseGuarantee bool      `json:"responseGuarantee"`
	Query             string    `json:"query"`
	ResultCount       int       `json:"resultCount"`
	CreatedAt         time.Time `json:"createdAt"`
}
