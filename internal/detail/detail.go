// Package detail holds the derived per-selection state: the selected
// product's price-history series, scoped by a day window, and its alert
// set. Both are recomputed whenever the selection or window changes.
package detail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/fakubwoy/pricepulse/internal/apperr"
	"github.com/fakubwoy/pricepulse/internal/errstate"
	"github.com/fakubwoy/pricepulse/internal/gateway"
	"github.com/fakubwoy/pricepulse/internal/models"
)

// DefaultWindowDays is the history window used until the user picks another.
const DefaultWindowDays = 30

// windowChoices are the only accepted history windows.
var windowChoices = map[int]struct{}{
	7: {}, 30: {}, 90: {}, 180: {}, 365: {},
}

// Authorizer gates requests on the session state.
type Authorizer interface {
	Authenticated() bool
}

// View is the product detail state. At most one product is selected at a
// time; the history series and alert set always belong to that product.
//
// In-flight responses carry the generation captured at request time; a
// response whose generation no longer matches is discarded on arrival, so
// the view never shows data for a product that is no longer selected.
type View struct {
	log  *slog.Logger
	gw   gateway.Invoker
	auth Authorizer
	errs *errstate.Channel

	mu           sync.Mutex
	selected     int64
	hasSelection bool
	windowDays   int
	history      []models.PricePoint
	alerts       []models.Alert
	historyGen   uint64
	alertsGen    uint64
}

// NewView creates an empty detail view with the default window.
func NewView(log *slog.Logger, gw gateway.Invoker, auth Authorizer, errs *errstate.Channel) *View {
	return &View{log: log, gw: gw, auth: auth, errs: errs, windowDays: DefaultWindowDays}
}

// Select switches the view to the given product and fetches its history
// and alert set. The two fetches run concurrently and fail independently:
// a history failure never blocks the alert set from loading, and vice
// versa. The returned error joins whatever failed.
func (v *View) Select(ctx context.Context, productID int64) error {
	const opn = "detail.Select"

	if !v.auth.Authenticated() {
		return apperr.ErrNotAuthenticated
	}

	v.mu.Lock()
	v.selected = productID
	v.hasSelection = true
	v.history = nil
	v.alerts = nil
	v.historyGen++
	v.alertsGen++
	hGen, aGen := v.historyGen, v.alertsGen
	days := v.windowDays
	v.mu.Unlock()

	var (
		wg               sync.WaitGroup
		histErr, alerErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		histErr = v.fetchHistory(ctx, productID, days, hGen)
	}()
	go func() {
		defer wg.Done()
		alerErr = v.fetchAlerts(ctx, productID, aGen)
	}()
	wg.Wait()

	if err := errors.Join(histErr, alerErr); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	v.errs.Clear()

	return nil
}

// Deselect clears the selection and both derived series immediately,
// without issuing any request. Responses still in flight for the previous
// selection are discarded when they arrive.
func (v *View) Deselect() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hasSelection = false
	v.history = nil
	v.alerts = nil
	v.historyGen++
	v.alertsGen++
}

// SetWindow changes the history day window. With a product selected, only
// the history fetch is re-issued; the alert set is untouched.
func (v *View) SetWindow(ctx context.Context, days int) error {
	const opn = "detail.SetWindow"

	if _, ok := windowChoices[days]; !ok {
		return apperr.Validation("history window must be one of 7, 30, 90, 180 or 365 days")
	}

	v.mu.Lock()
	v.windowDays = days
	if !v.hasSelection {
		v.mu.Unlock()
		return nil
	}
	productID := v.selected
	v.historyGen++
	gen := v.historyGen
	v.mu.Unlock()

	if err := v.fetchHistory(ctx, productID, days, gen); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	v.errs.Clear()

	return nil
}

// ReloadHistory re-fetches the history series for the current selection.
// Called after the selected product was refreshed server-side.
func (v *View) ReloadHistory(ctx context.Context) {
	const opn = "detail.ReloadHistory"

	v.mu.Lock()
	if !v.hasSelection {
		v.mu.Unlock()
		return
	}
	productID := v.selected
	days := v.windowDays
	v.historyGen++
	gen := v.historyGen
	v.mu.Unlock()

	if err := v.fetchHistory(ctx, productID, days, gen); err != nil {
		v.log.WarnContext(ctx, "Failed to reload history", "op", opn, "product_id", productID, "error", err)
	}
}

func (v *View) fetchHistory(ctx context.Context, productID int64, days int, gen uint64) error {
	path := fmt.Sprintf("/products/%d/history?days=%d", productID, days)

	var points []models.PricePoint
	if err := v.gw.Call(ctx, http.MethodGet, path, nil, &points); err != nil {
		v.errs.Fail(err)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.historyGen != gen || !v.hasSelection || v.selected != productID {
		// Selection or window changed while the request was in flight.
		return nil
	}
	v.history = points

	return nil
}

func (v *View) fetchAlerts(ctx context.Context, productID int64, gen uint64) error {
	path := fmt.Sprintf("/products/%d/alerts", productID)

	var alerts []models.Alert
	if err := v.gw.Call(ctx, http.MethodGet, path, nil, &alerts); err != nil {
		v.errs.Fail(err)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.alertsGen != gen || !v.hasSelection || v.selected != productID {
		return nil
	}
	v.alerts = alerts

	return nil
}

// SelectedID returns the selected product id, if any.
func (v *View) SelectedID() (int64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.hasSelection {
		return 0, false
	}
	return v.selected, true
}

// WindowDays returns the current history window.
func (v *View) WindowDays() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.windowDays
}

// History returns a snapshot of the price-history series in server order.
func (v *View) History() []models.PricePoint {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.PricePoint, len(v.history))
	copy(out, v.history)
	return out
}

// Alerts returns a snapshot of the selected product's alert set.
func (v *View) Alerts() []models.Alert {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.Alert, len(v.alerts))
	copy(out, v.alerts)
	return out
}

// AppendAlert adds a freshly created alert to the live view, unless the
// selection moved on while the create request was in flight. It reports
// whether the alert was applied.
func (v *View) AppendAlert(alert models.Alert) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.hasSelection || v.selected != alert.ProductID {
		return false
	}
	v.alerts = append(v.alerts, alert)

	return true
}

// RemoveAlert drops the alert with the given id from the live view when it
// belongs to the still-selected product. It reports whether an entry was
// removed.
func (v *View) RemoveAlert(alertID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, a := range v.alerts {
		if a.ID == alertID {
			v.alerts = append(v.alerts[:i], v.alerts[i+1:]...)
			return true
		}
	}

	return false
}

// Reset clears the selection, both series and the window. Called on logout
// and forced session reset.
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hasSelection = false
	v.history = nil
	v.alerts = nil
	v.windowDays = DefaultWindowDays
	v.historyGen++
	v.alertsGen++
}
