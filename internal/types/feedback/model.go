package feedback

import "time"

type Feedback struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user"`
	TargetID  string    `db:"target_id" json:"target"`
	Type      string    `db:"type" json:"type"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type LeaveRequest struct {
	Target  *string `json:"target"`
	Type    *string `json:"type"`
	Rating  *int    `json:"rating"`
	Comment string  `json:"comment"`
}
