package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/line-menu-bot/internal/domain"
)

func TestTruncateText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		truncated bool
	}{
		{name: "short", input: "hello"},
		{name: "exactly max", input: strings.Repeat("a", MaxTextLength)},
		{name: "one over", input: strings.Repeat("a", MaxTextLength+1), truncated: true},
		{name: "thai runes over", input: strings.Repeat("ก", 1500), truncated: true},
		{name: "thai runes at max", input: strings.Repeat("ก", MaxTextLength)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TruncateText(tt.input)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxTextLength)
			if tt.truncated {
				assert.True(t, strings.HasSuffix(got, Ellipsis))
				assert.Equal(t, MaxTextLength, utf8.RuneCountInString(got))
				assert.True(t, utf8.ValidString(got))
			} else {
				assert.Equal(t, tt.input, got)
			}
		})
	}
}

func TestLocationMessageDefaultsTitle(t *testing.T) {
	t.Parallel()

	msg := LocationMessage(domain.LocationContent{Address: "Bangkok", Latitude: 13.75, Longitude: 100.5})
	assert.Equal(t, domain.MessageTypeLocation, msg.Type)
	assert.Equal(t, DefaultLocationTitle, msg.Title)
	assert.Equal(t, "Bangkok", msg.Address)
	assert.Equal(t, 13.75, msg.Latitude)
	assert.Equal(t, 100.5, msg.Longitude)

	titled := LocationMessage(domain.LocationContent{Title: "Shop"})
	assert.Equal(t, "Shop", titled.Title)
}

func TestTextMessages(t *testing.T) {
	t.Parallel()

	msgs := TextMessages("a", strings.Repeat("b", 2000))
	assert.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].Text)
	assert.Equal(t, MaxTextLength, utf8.RuneCountInString(msgs[1].Text))
}
