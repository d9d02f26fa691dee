package accounts

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required"`
}

// RegisterResult reports what Register did. Resent means an unverified account
// already existed and its token was rotated instead of a row being created.
// MailQueued is false when the account state was committed but the
// verification email could not be handed to the queue.
type RegisterResult struct {
	UserID     int64
	Resent     bool
	MailQueued bool
}
