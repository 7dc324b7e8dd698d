package domain

import "time"

// Subscription is a newsletter list entry keyed by email. Unsubscribing
// soft-deactivates the record so a later subscribe reactivates it instead
// of creating a duplicate.
type Subscription struct {
	Email              string    `json:"email"`
	SubscribedAt       time.Time `json:"subscription_date"`
	LanguagePreference string    `json:"language_preference"`
	IsActive           bool      `json:"is_active"`
}

// NewSubscription builds an active subscription with the given language
// preference, defaulting when empty.
func NewSubscription(email, language string) *Subscription {
	if language == "" {
		language = DefaultLanguage
	}
	return &Subscription{
		Email:              email,
		SubscribedAt:       time.Now().UTC(),
		LanguagePreference: language,
		IsActive:           true,
	}
}
