package utils_test

import (
	"testing"

	"github.com/pseudomuto/gatekeeper/pkg/utils"
	"github.com/stretchr/testify/require"
)

func TestBacktickIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple identifier",
			input:    "ghost_prod",
			expected: "`ghost_prod`",
		},
		{
			name:     "name containing a dot stays one identifier",
			input:    "my.db",
			expected: "`my.db`",
		},
		{
			name:     "already backticked identifier",
			input:    "`ghost_prod`",
			expected: "`ghost_prod`",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "identifier with spaces",
			input:    "my database",
			expected: "`my database`",
		},
		{
			name:     "identifier with dashes",
			input:    "ghost-staging",
			expected: "`ghost-staging`",
		},
		{
			name:     "numeric identifier",
			input:    "123",
			expected: "`123`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := utils.BacktickIdentifier(tt.input)
			require.Equal(t, tt.expected, result)
		})
	}
}

func TestIsBackticked(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "backticked identifier",
			input:    "`posts`",
			expected: true,
		},
		{
			name:     "plain identifier",
			input:    "posts",
			expected: false,
		},
		{
			name:     "qualified backticked name",
			input:    "`db`.`posts`",
			expected: false,
		},
		{
			name:     "empty string",
			input:    "",
			expected: false,
		},
		{
			name:     "single backtick",
			input:    "`",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := utils.IsBackticked(tt.input)
			require.Equal(t, tt.expected, result)
		})
	}
}

func TestStripBackticks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "backticked identifier",
			input:    "`posts`",
			expected: "posts",
		},
		{
			name:     "plain identifier",
			input:    "posts",
			expected: "posts",
		},
		{
			name:     "qualified backticked name",
			input:    "`db`.`posts`",
			expected: "db.posts",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := utils.StripBackticks(tt.input)
			require.Equal(t, tt.expected, result)
		})
	}
}
