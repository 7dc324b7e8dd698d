package domain

import "time"

// SupportedLanguages lists the language codes the content store serves.
// Unknown codes fall back to the default language.
var SupportedLanguages = []string{"pt", "en", "fr", "cn"}

// IsSupportedLanguage reports whether code is one of the served languages.
func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// ContentEntry is one localized section of a page in the multilingual
// content store. (PageID, SectionID, LanguageCode) is unique.
type ContentEntry struct {
	ID           int64     `json:"content_id"`
	PageID       string    `json:"page_id"`
	SectionID    string    `json:"section_id"`
	ContentType  string    `json:"content_type"`
	ContentValue string    `json:"content_value"`
	LanguageCode string    `json:"language_code"`
	LastUpdated  time.Time `json:"last_updated"`
	UpdatedBy    *string   `json:"updated_by"`
}

// ConfigEntry is a system configuration key/value pair. Keys prefixed
// with "private_" are never exposed on the public config endpoint.
type ConfigEntry struct {
	ID          int64     `json:"config_id"`
	Key         string    `json:"config_key"`
	Value       string    `json:"config_value"`
	LastUpdated time.Time `json:"last_updated"`
	UpdatedBy   *string   `json:"updated_by"`
}

// PrivateConfigPrefix marks config keys withheld from public reads.
const PrivateConfigPrefix = "private_"

// IsPublic reports whether the entry may be served to unauthenticated
// clients.
func (c *ConfigEntry) IsPublic() bool {
	return len(c.Key) < len(PrivateConfigPrefix) || c.Key[:len(PrivateConfigPrefix)] != PrivateConfigPrefix
}
