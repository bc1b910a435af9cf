package models

import "time"

const DefaultMood = "neutral"

var moods = map[string]struct{}{}

func init() {
	for _, m := range []string{
		"happy", "joyful", "excited", "enthusiastic", "grateful", "peaceful",
		"content", "energetic", "inspired", "proud", "optimistic", "relaxed",
		"motivated", "confident", "cheerful", "loved", "blessed", "accomplished",

		"neutral", "calm", "focused", "thoughtful", "contemplative", "balanced",
		"mindful", "present", "centered", "curious", "reflective",

		"sad", "angry", "frustrated", "anxious", "stressed", "tired",
		"overwhelmed", "disappointed", "worried", "confused", "lonely",
		"nervous", "irritable", "restless", "melancholy", "exhausted",
	} {
		moods[m] = struct{}{}
	}
}

// ValidMood reports whether m is one of the accepted mood values.
func ValidMood(m string) bool {
	_, ok := moods[m]
	return ok
}

// Entry is a journal entry owned by a single principal.
type Entry struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
