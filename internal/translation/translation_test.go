package translation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/learncards/internal/card"
	mock_translation "github.com/at-ishikawa/learncards/internal/mocks/translation"
)

func TestTranslator_Text(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		targetLanguage string
		setupMock      func(client *mock_translation.MockClient)
		want           string
	}{
		{
			name:           "translated",
			text:           "hello",
			targetLanguage: "ja",
			setupMock: func(client *mock_translation.MockClient) {
				client.EXPECT().Translate(gomock.Any(), "hello", "ja").Return("こんにちは", nil)
			},
			want: "こんにちは",
		},
		{
			name: "default language",
			text: "hello",
			setupMock: func(client *mock_translation.MockClient) {
				client.EXPECT().Translate(gomock.Any(), "hello", "zh-CN").Return("你好", nil)
			},
			want: "你好",
		},
		{
			name:           "failure returns the original",
			text:           "hello",
			targetLanguage: "ja",
			setupMock: func(client *mock_translation.MockClient) {
				client.EXPECT().Translate(gomock.Any(), "hello", "ja").Return("", errors.New("response error 503"))
			},
			want: "hello",
		},
		{
			name:      "empty text is not sent",
			text:      "",
			setupMock: func(client *mock_translation.MockClient) {},
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock_translation.NewMockClient(ctrl)
			tt.setupMock(client)

			got := NewTranslator(client, "").Text(context.Background(), tt.text, tt.targetLanguage)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslator_Card(t *testing.T) {
	content := card.Content{
		ID:             "retry",
		Title:          "Retry",
		Emoji:          card.StringPtr("🔁"),
		Category:       "Resilience",
		Type:           card.KnowledgeTypeHighFrequency,
		OneLineEssence: "Try again",
		UseWhen:        "Failures are transient",
		TypicalCases:   []string{"HTTP calls", "Queue consumers"},
		Example:        card.StringPtr("retry.Do(fn)"),
		Risks:          card.StringPtr("Retry storms"),
		WhenNotToUse:   card.StringPtr("Non-idempotent writes"),
		Related:        []string{"Backoff"},
	}

	t.Run("translates each field and isolates failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock_translation.NewMockClient(ctrl)
		client.EXPECT().Translate(gomock.Any(), gomock.Any(), "ja").DoAndReturn(
			func(ctx context.Context, text, lang string) (string, error) {
				if text == "Queue consumers" {
					return "", errors.New("response error 429")
				}
				return strings.ToUpper(text), nil
			}).Times(7)

		got := NewTranslator(client, "").Card(context.Background(), content, "ja")

		assert.Equal(t, card.Content{
			ID:             "retry",
			Title:          "RETRY",
			Emoji:          card.StringPtr("🔁"),
			Category:       "Resilience",
			Type:           card.KnowledgeTypeHighFrequency,
			OneLineEssence: "TRY AGAIN",
			UseWhen:        "FAILURES ARE TRANSIENT",
			TypicalCases:   []string{"HTTP CALLS", "Queue consumers"},
			Example:        card.StringPtr("retry.Do(fn)"),
			Risks:          card.StringPtr("RETRY STORMS"),
			WhenNotToUse:   card.StringPtr("NON-IDEMPOTENT WRITES"),
			Related:        []string{"Backoff"},
		}, got)
		assert.Equal(t, "Try again", content.OneLineEssence, "input is not modified")
		assert.Equal(t, "Retry storms", *content.Risks)
	})

	t.Run("absent optional fields stay absent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mock_translation.NewMockClient(ctrl)
		client.EXPECT().Translate(gomock.Any(), gomock.Any(), "zh-CN").Return("x", nil).Times(3)

		minimal := card.Content{ID: "a", Title: "A", OneLineEssence: "B", UseWhen: "C", TypicalCases: []string{}}
		got := NewTranslator(client, "zh-CN").Card(context.Background(), minimal, "")

		assert.Nil(t, got.Risks)
		assert.Nil(t, got.WhenNotToUse)
		assert.Equal(t, []string{}, got.TypicalCases)
		assert.Equal(t, "x", got.Title)
	})
}

func TestIsValidLanguage(t *testing.T) {
	tests := []struct {
		name     string
		language string
		want     bool
	}{
		{name: "two letters", language: "ja", want: true},
		{name: "three letters", language: "fil", want: true},
		{name: "with a region", language: "zh-CN", want: true},
		{name: "with a script", language: "zh-Hant", want: true},
		{name: "empty", language: "", want: false},
		{name: "parent directories", language: "../..", want: false},
		{name: "path separator", language: "ja/x", want: false},
		{name: "too long", language: "japanese", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidLanguage(tt.language))
		})
	}
}
