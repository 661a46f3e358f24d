package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleSpinner(t *testing.T) {
	t.Run("disabled writes nothing", func(t *testing.T) {
		var out bytes.Buffer
		s := newSimpleSpinner("Loading...", &out, false)
		s.Start()
		s.Stop()
		assert.Empty(t, out.String())
	})

	t.Run("enabled draws a frame and clears the line", func(t *testing.T) {
		var out bytes.Buffer
		s := newSimpleSpinner("Loading...", &out, true)
		s.Start()
		s.Stop()
		s.Stop()
		assert.Contains(t, out.String(), "⠋ Loading...")
		assert.Contains(t, out.String(), "\r\033[K")
	})
}
