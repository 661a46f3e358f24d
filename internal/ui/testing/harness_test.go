package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeView(t *testing.T) {
	tcs := []struct {
		name     string
		view     string
		expected string
	}{
		{
			name:     "trailing padding per line",
			view:     " Title \n\nrow one     \nrow two  \n",
			expected: "Title\n\nrow one\nrow two",
		},
		{
			name:     "crlf line endings",
			view:     "a\r\nb\r\n",
			expected: "a\nb",
		},
		{
			name:     "blank viewport lines at the end",
			view:     "log\n          \n          \n",
			expected: "log",
		},
		{
			name:     "empty",
			view:     "",
			expected: "",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizeView(tc.view))
		})
	}
}
