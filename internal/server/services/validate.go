package services

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/server/auth"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
)

const (
	usernameMin    = 3
	usernameMax    = 30
	passwordMin    = 6
	passwordMax    = 72 // bcrypt ignores anything longer
	entryTitleMax  = 100
	preferenceLang = 10
)

func validateUsername(v *common.ValidationErrors, username string) string {
	username = strings.TrimSpace(username)
	switch n := utf8.RuneCountInString(username); {
	case n == 0:
		v.Add("username", "Username is required")
	case n < usernameMin || n > usernameMax:
		v.Add("username", "Username must be between 3 and 30 characters")
	}
	return username
}

func validateEmail(v *common.ValidationErrors, email string) string {
	email = auth.NormalizeEmail(email)
	if email == "" {
		v.Add("email", "Email is required")
		return email
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		v.Add("email", "Please enter a valid email")
	}
	return email
}

func validateNewPassword(v *common.ValidationErrors, password string) {
	switch {
	case strings.TrimSpace(password) == "":
		v.Add("password", "Password is required")
	case len(password) < passwordMin:
		v.Add("password", "Password must be at least 6 characters long")
	case len(password) > passwordMax:
		v.Add("password", "Password must be at most 72 bytes long")
	}
}

func validateRole(v *common.ValidationErrors, role string) {
	if role != common.RoleUser && role != common.RoleAdmin {
		v.Add("role", "Role must be either user or admin")
	}
}

func validatePreferences(v *common.ValidationErrors, p models.Preferences) {
	if p.Theme != models.ThemeLight && p.Theme != models.ThemeDark {
		v.Add("preferences.theme", "Theme must be either light or dark")
	}
	if n := len(p.Language); n == 0 || n > preferenceLang {
		v.Add("preferences.language", "Language must be a short language code")
	}
}

func validateEntry(v *common.ValidationErrors, in *EntryInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Mood = strings.TrimSpace(in.Mood)

	switch {
	case in.Title == "":
		v.Add("title", "Title is required")
	case utf8.RuneCountInString(in.Title) > entryTitleMax:
		v.Add("title", "Title cannot be more than 100 characters")
	}
	if in.Content == "" {
		v.Add("content", "Content is required")
	}
	if in.Mood == "" {
		in.Mood = models.DefaultMood
	} else if !models.ValidMood(in.Mood) {
		v.Add("mood", "Invalid mood value")
	}
}
