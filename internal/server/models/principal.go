// Package models defines the server-side records persisted by the stores.
package models

import "time"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type Preferences struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language"`
}

func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight, Notifications: true, Language: "en"}
}

// Principal is an authenticated identity. PasswordHash and RefreshToken
// are secrets and never leave the server; use View for responses.
type Principal struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	// FederatedID is the external provider's user id, empty for local accounts.
	FederatedID  string
	Role         string
	IsActive     bool
	LastLogin    *time.Time
	RefreshToken string
	Preferences  Preferences
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PrincipalView is the public projection of a Principal.
type PrincipalView struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Role        string      `json:"role"`
	IsActive    bool        `json:"isActive"`
	Federated   bool        `json:"federated"`
	LastLogin   *time.Time  `json:"lastLogin,omitempty"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (p *Principal) View() PrincipalView {
	return PrincipalView{
		ID:          p.ID,
		Username:    p.Username,
		Email:       p.Email,
		Role:        p.Role,
		IsActive:    p.IsActive,
		Federated:   p.FederatedID != "",
		LastLogin:   p.LastLogin,
		Preferences: p.Preferences,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
