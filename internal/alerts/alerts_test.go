package alerts_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/fakubwoy/pricepulse/internal/alerts"
	"github.com/fakubwoy/pricepulse/internal/apperr"
	"github.com/fakubwoy/pricepulse/internal/errstate"
	"github.com/fakubwoy/pricepulse/internal/models"
	"github.com/fakubwoy/pricepulse/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authStub bool

func (a authStub) Authenticated() bool { return bool(a) }

// selectionStub is a minimal detail-view stand-in.
type selectionStub struct {
	selected     int64
	hasSelection bool
	appended     []models.Alert
	removed      []int64
}

func (s *selectionStub) SelectedID() (int64, bool) { return s.selected, s.hasSelection }

func (s *selectionStub) AppendAlert(alert models.Alert) bool {
	if !s.hasSelection || s.selected != alert.ProductID {
		return false
	}
	s.appended = append(s.appended, alert)
	return true
}

func (s *selectionStub) RemoveAlert(alertID int64) bool {
	s.removed = append(s.removed, alertID)
	return true
}

func newManager(t *testing.T, view *selectionStub) (*alerts.Manager, *mocks.FakeGateway, *errstate.Channel) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := &mocks.FakeGateway{}
	errs := errstate.NewChannel()

	return alerts.NewManager(logger, gw, authStub(true), view, errs), gw, errs
}

func TestManager_Create_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		hasSelection bool
		targetPrice  float64
		wantRequest  bool
	}{
		{name: "zero target rejected", hasSelection: true, targetPrice: 0, wantRequest: false},
		{name: "negative target rejected", hasSelection: true, targetPrice: -5, wantRequest: false},
		{name: "tiny positive target accepted", hasSelection: true, targetPrice: 0.01, wantRequest: true},
		{name: "no selection rejected", hasSelection: false, targetPrice: 10, wantRequest: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			view := &selectionStub{selected: 10, hasSelection: tc.hasSelection}
			manager, gw, errs := newManager(t, view)
			gw.Handler = func(_ context.Context, _, _ string, _, out any) error {
				return mocks.Respond(out, models.Alert{ID: 1, ProductID: 10, TargetPrice: tc.targetPrice})
			}

			_, err := manager.Create(t.Context(), tc.targetPrice)

			if tc.wantRequest {
				require.NoError(t, err)
				assert.Equal(t, 1, gw.CallCount())
			} else {
				require.Error(t, err)
				assert.True(t, apperr.IsValidation(err), "local rejection must be a validation error")
				assert.Zero(t, gw.CallCount(), "no request may be made")

				_, present := errs.Message()
				assert.False(t, present, "validation failures stay out of the error channel")
			}
		})
	}
}

func TestManager_Create_TargetAboveCurrentPriceAllowed(t *testing.T) {
	t.Parallel()

	view := &selectionStub{selected: 10, hasSelection: true}
	manager, gw, _ := newManager(t, view)
	gw.Handler = func(_ context.Context, _, _ string, body, out any) error {
		payload, ok := body.(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, 9999.0, payload["target_price"], 0.001)
		return mocks.Respond(out, models.Alert{ID: 7, ProductID: 10, TargetPrice: 9999})
	}

	created, err := manager.Create(t.Context(), 9999)

	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	require.Len(t, view.appended, 1)
}

func TestManager_Create_StaleSelectionNotMutated(t *testing.T) {
	t.Parallel()

	view := &selectionStub{selected: 10, hasSelection: true}
	manager, gw, _ := newManager(t, view)
	gw.Handler = func(_ context.Context, _, _ string, _, out any) error {
		// The user switched products while the create was in flight.
		view.selected = 99
		return mocks.Respond(out, models.Alert{ID: 1, ProductID: 10, TargetPrice: 50})
	}

	created, err := manager.Create(t.Context(), 50)

	require.NoError(t, err, "the create itself succeeded server-side")
	assert.Equal(t, int64(1), created.ID)
	assert.Empty(t, view.appended, "a stale response must not mutate the live view")
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	view := &selectionStub{selected: 10, hasSelection: true}
	manager, gw, _ := newManager(t, view)

	require.NoError(t, manager.Delete(t.Context(), 7))

	calls := gw.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodDelete, calls[0].Method)
	assert.Equal(t, "/alerts/7", calls[0].Path)
	assert.Equal(t, []int64{7}, view.removed)
}

func TestManager_Delete_Failure(t *testing.T) {
	t.Parallel()

	view := &selectionStub{selected: 10, hasSelection: true}
	manager, gw, errs := newManager(t, view)
	gw.Handler = func(_ context.Context, _, _ string, _, _ any) error {
		return &apperr.APIError{Status: http.StatusNotFound, Message: "Alert not found"}
	}

	err := manager.Delete(t.Context(), 7)

	require.Error(t, err)
	assert.Empty(t, view.removed)

	msg, present := errs.Message()
	require.True(t, present)
	assert.Contains(t, msg, "Alert not found")
}

func TestManager_TestNotification(t *testing.T) {
	t.Parallel()

	view := &selectionStub{}
	manager, gw, _ := newManager(t, view)

	require.NoError(t, manager.TestNotification(t.Context()))

	calls := gw.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/alerts/test", calls[0].Path)
	assert.Empty(t, view.appended)
	assert.Empty(t, view.removed)
}

func TestManager_RequiresAuthentication(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := &mocks.FakeGateway{}
	view := &selectionStub{selected: 10, hasSelection: true}
	manager := alerts.NewManager(logger, gw, authStub(false), view, errstate.NewChannel())

	_, err := manager.Create(t.Context(), 10)
	require.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	err = manager.Delete(t.Context(), 1)
	require.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	assert.Zero(t, gw.CallCount())
}
