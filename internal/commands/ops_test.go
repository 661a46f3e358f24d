package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/ui"
)

func TestOpsPushCommand(t *testing.T) {
	tcs := []struct {
		name     string
		args     []string
		wantMode string
	}{
		{name: "data only by default", args: []string{"ops", "push"}, wantMode: "data-only"},
		{name: "all", args: []string{"ops", "push", "--all"}, wantMode: "all"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			setupServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/admin/push", r.URL.Path)

				var body map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, tc.wantMode, body["mode"])

				writeJSONResponse(t, w, http.StatusOK, map[string]any{"success": true, "output": "Everything up-to-date\n"})
			}))

			out, err := executeRoot(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("Everything up-to-date\n✓ push (%s) finished\n", tc.wantMode), out)
		})
	}
}

func TestOpsPullDataCommand_FailureShowsOutputTail(t *testing.T) {
	var output strings.Builder
	for i := range 150 {
		fmt.Fprintf(&output, "line %d\n", i)
	}

	setupServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/data/pull", r.URL.Path)
		writeJSONResponse(t, w, http.StatusInternalServerError, map[string]any{
			"success":  false,
			"error":    "pull failed",
			"output":   output.String(),
			"exitCode": 1,
		})
	}))

	out, err := executeRoot(t, "ops", "pull-data")
	require.Error(t, err)

	var uiErr *ui.UIError
	require.ErrorAs(t, err, &uiErr)
	assert.Equal(t, ui.ErrorTypeAPI, uiErr.Type)
	assert.Equal(t, "data pull failed: pull failed (exit 1)", uiErr.Error())

	assert.NotContains(t, out, "line 49\n")
	assert.True(t, strings.HasPrefix(out, "line 50\n"), out[:min(len(out), 40)])
	assert.True(t, strings.HasSuffix(out, "line 149\n"))
}

func TestRunOpsScript_NonAPIError(t *testing.T) {
	var out bytes.Buffer
	err := runOpsScript(t.Context(), &out, "push (all)", func(context.Context) (*api.OpsResult, error) {
		return nil, api.ErrAdminTokenMissing
	})

	var uiErr *ui.UIError
	require.ErrorAs(t, err, &uiErr)
	assert.Equal(t, ui.ErrorTypeConfiguration, uiErr.Type)
	assert.Empty(t, out.String())
}
