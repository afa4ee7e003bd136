package request

// SessionRequest names a session of a treatment package
type SessionRequest struct {
	SessionNumber int `json:"session_number" binding:"required"`
}
