// Package testing drives Bubbletea models step by step in unit tests and
// compares their views against golden files in testdata/.
package testing

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
)

// TestHarness feeds messages to a model and asserts on its view and state.
//
//	uitesting.NewTestHarness(t, view).
//		Step(uitesting.TestStep[*DeployView]{Name: "started", Msg: deployStartedMsg{...}}).
//		Expect(uitesting.TestStep[*DeployView]{Name: "first_log_batch"}).
//		Finally(uitesting.TestStep[*DeployView]{Name: "done"}).
//		Run(t)
//
// Commands returned by Update are executed synchronously and their messages
// fed back, up to maxCommandDepth deep. Expect steps intercept those
// messages in order; Finally intercepts one more and stops processing.
type TestHarness[T tea.Model] struct {
	model              T
	steps              []TestStep[T]
	expectedSteps      []TestStep[T]
	finalStep          *TestStep[T]
	goldie             *goldie.Goldie
	currentExpectIndex int
	stopProcessing     bool
}

// TestStep is one message plus the assertions to run after Update.
type TestStep[T tea.Model] struct {
	Name string

	// Msg is sent to Update. Nil only renders. Leave nil on Expect/Finally
	// steps: their message comes from a command.
	Msg tea.Msg

	// ExpectedMsgType restricts Expect/Finally matching to one message type,
	// e.g. deployStartedMsg{}.
	ExpectedMsgType tea.Msg

	// MessageAssert inspects an intercepted message before Update sees it.
	MessageAssert func(t *testing.T, msg tea.Msg)

	// ViewGolden compares View() with testdata/<ViewGolden>.golden.
	// Regenerate with: go test -update
	ViewGolden string

	ViewAssert  func(t *testing.T, view string)
	ModelAssert func(t *testing.T, m T)

	SkipViewAssertion bool
}

// NewTestHarness creates a harness with an ASCII color profile so golden
// files do not depend on the terminal running the tests.
func NewTestHarness[T tea.Model](t *testing.T, model T) *TestHarness[T] {
	t.Helper()

	lipgloss.SetColorProfile(termenv.Ascii)

	return &TestHarness[T]{
		model: model,
		goldie: goldie.New(t,
			goldie.WithFixtureDir("testdata"),
			goldie.WithNameSuffix(".golden"),
		),
	}
}

// Step adds a step that sends its Msg to Update.
func (h *TestHarness[T]) Step(step TestStep[T]) *TestHarness[T] {
	h.steps = append(h.steps, step)
	return h
}

// Expect adds a step that intercepts the next message produced by a command.
func (h *TestHarness[T]) Expect(step TestStep[T]) *TestHarness[T] {
	h.expectedSteps = append(h.expectedSteps, step)
	return h
}

// Finally adds a last intercepting step; no commands run after it.
func (h *TestHarness[T]) Finally(step TestStep[T]) *TestHarness[T] {
	h.finalStep = &step
	return h
}

// Model returns the model as last returned by Update.
func (h *TestHarness[T]) Model() T {
	return h.model
}

// Run calls Init, then executes every Step in order.
func (h *TestHarness[T]) Run(t *testing.T) {
	t.Helper()

	h.currentExpectIndex = 0
	h.stopProcessing = false

	h.processCommands(t, h.model.Init(), 0)

	for _, step := range h.steps {
		if h.stopProcessing {
			break
		}

		t.Run(step.Name, func(t *testing.T) {
			if step.Msg != nil {
				updatedModel, cmd := h.model.Update(step.Msg)
				var ok bool
				h.model, ok = updatedModel.(T)
				if !ok {
					t.Fatalf("model %T is not %T", updatedModel, new(T))
				}
				h.processCommands(t, cmd, 0)
			}

			h.assertStep(t, step)
		})
	}
}

const maxCommandDepth = 10

// processCommands mimics the Bubbletea runtime: run the command, feed its
// message to Update, repeat. Batches are delivered to Update as a single
// tea.BatchMsg and not expanded, so tick loops and blocking waits inside
// batches never run.
func (h *TestHarness[T]) processCommands(t *testing.T, cmd tea.Cmd, depth int) {
	t.Helper()

	if cmd == nil || h.stopProcessing {
		return
	}
	if depth >= maxCommandDepth {
		t.Log("max command depth exceeded")
		return
	}

	msg := cmd()
	if msg == nil {
		return
	}

	if h.shouldIntercept(t, msg) {
		return
	}

	updatedModel, nextCmd := h.model.Update(msg)
	h.model = updatedModel.(T) //nolint:errcheck // Type assertion guaranteed by test harness generic type

	h.processCommands(t, nextCmd, depth+1)
}

// shouldIntercept hands msg to the next Expect or Finally step if it matches.
func (h *TestHarness[T]) shouldIntercept(t *testing.T, msg tea.Msg) bool {
	t.Helper()

	if len(h.expectedSteps) == 0 && h.finalStep == nil {
		return false
	}

	if h.currentExpectIndex < len(h.expectedSteps) {
		step := h.expectedSteps[h.currentExpectIndex]
		if !matchesMessageType(msg, step) {
			t.Fatalf("unexpected message during command processing\nexpected step: %s (type: %s)\ngot: %T %+v",
				step.Name, expectedTypeName(step), msg, msg)
			return true
		}

		h.currentExpectIndex++
		h.interceptWith(t, msg, step)
		return true
	}

	if h.finalStep != nil {
		if !matchesMessageType(msg, *h.finalStep) {
			if !isFrameworkMessage(msg) {
				t.Fatalf("unexpected message before Finally step\nexpected step: %s (type: %s)\ngot: %T %+v",
					h.finalStep.Name, expectedTypeName(*h.finalStep), msg, msg)
			}
			return false
		}

		h.interceptWith(t, msg, *h.finalStep)
		h.stopProcessing = true
		return true
	}

	return false
}

func (h *TestHarness[T]) interceptWith(t *testing.T, msg tea.Msg, step TestStep[T]) {
	t.Helper()

	if step.MessageAssert != nil {
		step.MessageAssert(t, msg)
	}

	updatedModel, _ := h.model.Update(msg)
	h.model = updatedModel.(T) //nolint:errcheck // Type assertion guaranteed by test harness generic type

	t.Run(step.Name, func(t *testing.T) {
		h.assertStep(t, step)
	})
}

func (h *TestHarness[T]) assertStep(t *testing.T, step TestStep[T]) {
	t.Helper()

	if !step.SkipViewAssertion {
		view := normalizeView(h.model.View())

		if step.ViewGolden != "" {
			h.goldie.Assert(t, step.ViewGolden, []byte(view))
		}
		if step.ViewAssert != nil {
			step.ViewAssert(t, view)
		}
	}

	if step.ModelAssert != nil {
		step.ModelAssert(t, h.model)
	}
}

func expectedTypeName[T tea.Model](step TestStep[T]) string {
	if step.ExpectedMsgType == nil {
		return "any async message"
	}
	return reflect.TypeOf(step.ExpectedMsgType).String()
}

func isFrameworkMessage(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.BatchMsg, tea.KeyMsg, tea.MouseMsg, tea.WindowSizeMsg:
		return true
	default:
		return false
	}
}

// matchesMessageType matches on ExpectedMsgType when set, otherwise on any
// message that is not user input or a batch.
func matchesMessageType[T tea.Model](msg tea.Msg, step TestStep[T]) bool {
	if step.ExpectedMsgType != nil {
		return reflect.TypeOf(msg) == reflect.TypeOf(step.ExpectedMsgType)
	}
	return !isFrameworkMessage(msg)
}

// normalizeView normalizes line endings, strips the trailing padding that
// viewports and tables add to every line, and trims surrounding blank lines.
func normalizeView(view string) string {
	lines := strings.Split(strings.ReplaceAll(view, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// AssertContains fails the test if view does not contain substring.
func AssertContains(t *testing.T, view, substring string) {
	t.Helper()
	if !strings.Contains(view, substring) {
		t.Errorf("view does not contain %q\nactual view:\n%s", substring, view)
	}
}

// AssertNotContains fails the test if view contains substring.
func AssertNotContains(t *testing.T, view, substring string) {
	t.Helper()
	if strings.Contains(view, substring) {
		t.Errorf("view contains unexpected %q\nactual view:\n%s", substring, view)
	}
}
