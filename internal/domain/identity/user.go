package identity

import (
	"strings"
	"time"

	"github.com/shopbot/backend/internal/domain/shared"
	"golang.org/x/text/language"
)

// Language is a supported interface language
type Language string

const (
	LanguageRussian Language = "ru"
	LanguageEnglish Language = "en"
	LanguageUzbek   Language = "uz"

	DefaultLanguage = LanguageRussian
)

var supportedTags = []language.Tag{
	language.Russian, // first entry is the matcher fallback
	language.English,
	language.Uzbek,
}

var languageMatcher = language.NewMatcher(supportedTags)

// IsValid checks if the language is supported
func (l Language) IsValid() bool {
	switch l {
	case LanguageRussian, LanguageEnglish, LanguageUzbek:
		return true
	}
	return false
}

// String returns the language code
func (l Language) String() string {
	return string(l)
}

// ParseLanguage maps a client-provided tag ("en-US", "uz_Latn", "RU") onto a
// supported language. Anything unrecognised resolves to DefaultLanguage.
func ParseLanguage(s string) Language {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", "-"))
	if s == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(s)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, confidence := languageMatcher.Match(tag)
	if confidence == language.No {
		return DefaultLanguage
	}
	base, _ := supportedTags[idx].Base()
	return Language(base.String())
}

// User is a chat customer, identified by the external chat identity
type User struct {
	ID         int64
	ExternalID int64
	Handle     string
	Nickname   string
	Language   Language
	Subscribed bool
	CreatedAt  time.Time
}

// NewUser creates a user for a first contact. An invalid language falls back to the default.
func NewUser(externalID int64, handle string, lang Language) (*User, error) {
	if externalID == 0 {
		return nil, shared.InvalidInput("external id is required")
	}
	if !lang.IsValid() {
		lang = DefaultLanguage
	}
	return &User{
		ExternalID: externalID,
		Handle:     handle,
		Language:   lang,
		CreatedAt:  time.Now(),
	}, nil
}

// DisplayName returns the nickname when set, else the chat handle
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Handle
}
