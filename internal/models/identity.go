package models

// Identity is the signed-in user as seen by the rest of the application.
// The admin flag is resolved once per sign-in and cached for the session.
type Identity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// RoleAssignment is a row of the user_roles collection.
type RoleAssignment struct {
	ID     string `json:"id,omitempty"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Profile is the public profile row created at registration.
type Profile struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	MarketingConsent bool   `json:"marketing_consent"`
	CreatedAt        string `json:"created_at,omitempty"`
}
