package model

import "time"

type SurveyOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

const (
	SurveyActive = "active"
	SurveyClosed = "closed"
)

type Survey struct {
	ID         string         `json:"id"`
	Question   string         `json:"question"`
	Options    []SurveyOption `json:"options"`
	Status     string         `json:"status"` // active|closed
	TotalVotes int            `json:"total_votes"`
}

type Announcement struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
	Author  string    `json:"author"`
}

type DirectoryContact struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}

// PropertyInfo is the resident's financial summary view.
type PropertyInfo struct {
	Address            string    `json:"address"`
	Owner              string    `json:"owner"`
	Residents          []string  `json:"residents"`
	OutstandingBalance float64   `json:"outstanding_balance"`
	PaymentHistory     []Payment `json:"payment_history"`
}
