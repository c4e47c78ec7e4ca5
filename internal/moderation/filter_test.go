package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The dictionary uses words unlikely to collide with substrings of everyday
// text, mirroring how the filter is meant to be configured.
func TestFilter_IsProfane(t *testing.T) {
	req := require.New(t)
	filter, err := NewFilter([]string{"badger", "snake"})
	req.NoError(err)

	tests := []struct {
		name    string
		input   string
		profane bool
	}{
		{
			name:    "clean text",
			input:   "hello everyone, nice to meet you",
			profane: false,
		},
		{
			name:    "plain banned word",
			input:   "what a badger move",
			profane: true,
		},
		{
			name:    "uppercase",
			input:   "SNAKE!",
			profane: true,
		},
		{
			name:    "leet speak",
			input:   "you b4dg3r",
			profane: true,
		},
		{
			name:    "punctuation noise",
			input:   "s.n-a k.e",
			profane: true,
		},
		{
			name:    "empty input",
			input:   "",
			profane: false,
		},
		{
			name:    "punctuation only",
			input:   "?! ... --",
			profane: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.profane, filter.IsProfane(tt.input))
		})
	}
}

func TestNewFilter_EmptyListNeverMatches(t *testing.T) {
	req := require.New(t)

	filter, err := NewFilter(nil)
	req.NoError(err)
	req.False(filter.IsProfane("anything at all"))
}

func TestNewFilter_SkipsUnusableWords(t *testing.T) {
	req := require.New(t)

	filter, err := NewFilter([]string{"  ", "...", "badger"})
	req.NoError(err)
	req.True(filter.IsProfane("badger"))
	req.False(filter.IsProfane("a perfectly fine sentence"))
}

func TestDefaultWords_FlagCommonProfanity(t *testing.T) {
	req := require.New(t)

	filter, err := NewFilter(DefaultWords)
	req.NoError(err)
	req.True(filter.IsProfane("this is bullshit"))
	req.False(filter.IsProfane("hello"))
}
