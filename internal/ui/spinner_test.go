package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"

	uitesting "github.com/pilotdeck/pilotdeck/internal/ui/testing"
)

func TestSpinnerModel(t *testing.T) {
	t.Run("initial state", func(t *testing.T) {
		model := NewSpinner()

		harness := uitesting.NewTestHarness(t, model)
		harness.
			Step(uitesting.TestStep[*SpinnerModel]{
				Name: "initial_view",
				Msg:  nil, // Just test initial state
				ViewAssert: func(t *testing.T, view string) {
					assert.NotEmpty(t, view)
				},
				ModelAssert: func(t *testing.T, m *SpinnerModel) {
					assert.NotNil(t, m.spinner)
				},
			}).
			Run(t)
	})

	t.Run("handles tick messages", func(t *testing.T) {
		model := NewSpinner()

		harness := uitesting.NewTestHarness(t, model)
		harness.
			Step(uitesting.TestStep[*SpinnerModel]{
				Name: "first_tick",
				Msg:  spinner.TickMsg{},
				ViewAssert: func(t *testing.T, view string) {
					// View should contain spinner frame
					assert.NotEmpty(t, view)
				},
				ModelAssert: func(t *testing.T, m *SpinnerModel) {
					assert.NotNil(t, m.spinner)
				},
			}).
			Step(uitesting.TestStep[*SpinnerModel]{
				Name: "second_tick",
				Msg:  spinner.TickMsg{},
				ViewAssert: func(t *testing.T, view string) {
					// View should still contain spinner frame
					assert.NotEmpty(t, view)
				},
			}).
			Run(t)
	})
}

func TestSpinnerModel_View(t *testing.T) {
	model := NewSpinner()

	// The View should delegate to the internal spinner
	view := model.View()
	assert.NotEmpty(t, view, "View should return spinner frame")
}

func TestSpinnerModel_Update(t *testing.T) {
	model := NewSpinner()

	// Update with tick message
	updatedModel, cmd := model.Update(spinner.TickMsg{})

	assert.NotNil(t, updatedModel, "Update should return model")
	assert.NotNil(t, cmd, "Update should return next tick command")
}

func TestSpinnerModel_Loading(t *testing.T) {
	model := NewSpinner()

	view := model.Loading("Loading projects...")
	assert.True(t, strings.HasPrefix(view, model.View()+" "))
	assert.True(t, strings.HasSuffix(view, "Loading projects..."))
}
