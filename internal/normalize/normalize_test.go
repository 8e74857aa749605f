package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrubPII(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "email address",
			input: "contact me at jane.doe@example.com please",
			want:  "contact me at [EMAIL] please",
		},
		{
			name:  "phone number with dashes",
			input: "call 555-123-4567 now",
			want:  "call [PHONE] now",
		},
		{
			name:  "phone number with dots",
			input: "call 555.123.4567 now",
			want:  "call [PHONE] now",
		},
		{
			name:  "card number with spaces",
			input: "charged card 4111 1111 1111 1111 twice",
			want:  "charged card [CARD] twice",
		},
		{
			name:  "two capitalized words become name",
			input: "Jane Doe reported the issue",
			want:  "[NAME] reported the issue",
		},
		{
			name:  "lowercase words are not names",
			input: "jane doe reported the issue",
			want:  "jane doe reported the issue",
		},
		{
			name:  "no PII passes through",
			input: "the export button is broken",
			want:  "the export button is broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScrubPII(tt.input))
		})
	}
}

func TestText(t *testing.T) {
	got := Text("Login Broken", "<p>The <b>login</b> page fails</p>")
	assert.Equal(t, "login broken  the  login  page fails ", got)
	assert.NotContains(t, got, "<")
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("an app is not working at all")
	assert.Equal(t, []string{"app", "not", "working", "all"}, tokens)
}

func TestIsSensitiveToken(t *testing.T) {
	assert.True(t, IsSensitiveToken("12345"), "long digit run")
	assert.True(t, IsSensitiveToken("ABCdefG"), "camel case")
	assert.True(t, IsSensitiveToken("Jane"), "lone capitalized word")
	assert.False(t, IsSensitiveToken("billing"))
	assert.False(t, IsSensitiveToken("api2"))
}
