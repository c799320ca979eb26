package identity

import (
	"errors"
	"testing"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"ru", LanguageRussian},
		{"RU", LanguageRussian},
		{"en", LanguageEnglish},
		{"en-US", LanguageEnglish},
		{"en_GB", LanguageEnglish},
		{"uz", LanguageUzbek},
		{"", DefaultLanguage},
		{"not a tag!", DefaultLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLanguage(tt.in))
		})
	}
}

func TestNewUser(t *testing.T) {
	t.Run("defaults invalid language", func(t *testing.T) {
		u, err := NewUser(42, "alice", Language("de"))
		require.NoError(t, err)
		assert.Equal(t, DefaultLanguage, u.Language)
		assert.Equal(t, "alice", u.DisplayName())
	})

	t.Run("requires external id", func(t *testing.T) {
		_, err := NewUser(0, "bob", LanguageEnglish)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("nickname wins display name", func(t *testing.T) {
		u, err := NewUser(1, "bob", LanguageEnglish)
		require.NoError(t, err)
		u.Nickname = "Bobby"
		assert.Equal(t, "Bobby", u.DisplayName())
	})
}
