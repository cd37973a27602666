// Package alerts drives create and delete operations against the selected
// product's alert set, layered on the gateway and reflected into the
// detail view.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fakubwoy/pricepulse/internal/apperr"
	"github.com/fakubwoy/pricepulse/internal/errstate"
	"github.com/fakubwoy/pricepulse/internal/gateway"
	"github.com/fakubwoy/pricepulse/internal/models"
)

// Authorizer gates requests on the session state.
type Authorizer interface {
	Authenticated() bool
}

// Selection is the slice of the detail view the manager works against.
type Selection interface {
	SelectedID() (int64, bool)
	AppendAlert(alert models.Alert) bool
	RemoveAlert(alertID int64) bool
}

// Manager creates and deletes price alerts for the selected product.
type Manager struct {
	log  *slog.Logger
	gw   gateway.Invoker
	auth Authorizer
	view Selection
	errs *errstate.Channel
}

// NewManager creates an alert manager bound to the given selection.
func NewManager(
	log *slog.Logger,
	gw gateway.Invoker,
	auth Authorizer,
	view Selection,
	errs *errstate.Channel,
) *Manager {
	return &Manager{log: log, gw: gw, auth: auth, view: view, errs: errs}
}

// Create registers a threshold alert for the selected product. Any positive
// target is accepted, including one above the current price: an alert can
// also mean "tell me when it climbs back". No selection or a non-positive
// target is rejected locally, without a request.
func (m *Manager) Create(ctx context.Context, targetPrice float64) (models.Alert, error) {
	const opn = "alerts.Create"

	productID, ok := m.view.SelectedID()
	if !ok {
		return models.Alert{}, apperr.Validation("no product selected")
	}

	if targetPrice <= 0 {
		return models.Alert{}, apperr.Validation("target price must be a positive number")
	}

	if !m.auth.Authenticated() {
		return models.Alert{}, apperr.ErrNotAuthenticated
	}

	body := map[string]any{
		"product_id":   productID,
		"target_price": targetPrice,
	}

	var alert models.Alert
	if err := m.gw.Call(ctx, http.MethodPost, "/alerts", body, &alert); err != nil {
		m.errs.Fail(err)
		return models.Alert{}, fmt.Errorf("%s: %w", opn, err)
	}

	applied := m.view.AppendAlert(alert)
	m.errs.Clear()
	m.log.InfoContext(ctx, "Alert created",
		"op", opn, "alert_id", alert.ID, "product_id", productID, "applied", applied)

	return alert, nil
}

// Delete removes an alert. The live view is only mutated when the alert
// still belongs to the selected product; a stale response for a
// since-deselected product is dropped.
func (m *Manager) Delete(ctx context.Context, alertID int64) error {
	const opn = "alerts.Delete"

	if !m.auth.Authenticated() {
		return apperr.ErrNotAuthenticated
	}

	path := fmt.Sprintf("/alerts/%d", alertID)
	if err := m.gw.Call(ctx, http.MethodDelete, path, nil, nil); err != nil {
		m.errs.Fail(err)
		return fmt.Errorf("%s: %w", opn, err)
	}

	removed := m.view.RemoveAlert(alertID)
	m.errs.Clear()
	m.log.InfoContext(ctx, "Alert deleted", "op", opn, "alert_id", alertID, "removed", removed)

	return nil
}

// TestNotification asks the service to send a test alert email. No local
// state is mutated either way.
func (m *Manager) TestNotification(ctx context.Context) error {
	const opn = "alerts.TestNotification"

	if !m.auth.Authenticated() {
		return apperr.ErrNotAuthenticated
	}

	if err := m.gw.Call(ctx, http.MethodPost, "/alerts/test", nil, nil); err != nil {
		m.errs.Fail(err)
		return fmt.Errorf("%s: %w", opn, err)
	}

	m.errs.Clear()

	return nil
}
