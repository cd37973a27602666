// Package collection keeps the set of tracked products consistent with the
// remote service. It is an ordered mapping keyed by product id: load order
// is preserved, adds append, and duplicate ids can never coexist.
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/fakubwoy/pricepulse/internal/apperr"
	"github.com/fakubwoy/pricepulse/internal/errstate"
	"github.com/fakubwoy/pricepulse/internal/gateway"
	"github.com/fakubwoy/pricepulse/internal/models"
)

// Authorizer gates requests on the session state.
type Authorizer interface {
	Authenticated() bool
}

// DetailView is the derived per-selection view the collection must keep
// honest: removing the selected product clears it, refreshing the selected
// product invalidates its history.
type DetailView interface {
	SelectedID() (int64, bool)
	Deselect()
	ReloadHistory(ctx context.Context)
}

// Collection is the tracked-product set for the authenticated user.
type Collection struct {
	log  *slog.Logger
	gw   gateway.Invoker
	auth Authorizer
	view DetailView
	errs *errstate.Channel

	mu    sync.RWMutex
	order []int64
	items map[int64]models.Product
}

// NewCollection creates an empty collection.
func NewCollection(
	log *slog.Logger,
	gw gateway.Invoker,
	auth Authorizer,
	view DetailView,
	errs *errstate.Channel,
) *Collection {
	return &Collection{
		log:   log,
		gw:    gw,
		auth:  auth,
		view:  view,
		errs:  errs,
		items: make(map[int64]models.Product),
	}
}

// Load fetches the full product list and replaces the local collection
// entirely, discarding any local state not confirmed by the server.
func (c *Collection) Load(ctx context.Context) error {
	const opn = "collection.Load"

	if !c.auth.Authenticated() {
		return apperr.ErrNotAuthenticated
	}

	var products []models.Product
	if err := c.gw.Call(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		c.errs.Fail(err)
		return fmt.Errorf("%s: %w", opn, err)
	}

	c.mu.Lock()
	c.order = c.order[:0]
	c.items = make(map[int64]models.Product, len(products))
	for _, p := range products {
		if _, seen := c.items[p.ID]; !seen {
			c.order = append(c.order, p.ID)
		}
		c.items[p.ID] = p
	}
	c.mu.Unlock()

	c.errs.Clear()
	c.log.InfoContext(ctx, "Product list loaded", "op", opn, "count", len(products))

	return nil
}

// Add registers a new tracked URL. The server is authoritative for every
// derived field (name, price, image), so the echoed product is appended
// as returned. A blank URL is rejected locally, without a request.
func (c *Collection) Add(ctx context.Context, url string) (models.Product, error) {
	const opn = "collection.Add"

	if strings.TrimSpace(url) == "" {
		return models.Product{}, apperr.Validation("product url must not be empty")
	}

	if !c.auth.Authenticated() {
		return models.Product{}, apperr.ErrNotAuthenticated
	}

	var product models.Product
	body := map[string]string{"url": url}
	if err := c.gw.Call(ctx, http.MethodPost, "/products", body, &product); err != nil {
		c.errs.Fail(err)
		return models.Product{}, fmt.Errorf("%s: %w", opn, err)
	}

	c.mu.Lock()
	if _, seen := c.items[product.ID]; !seen {
		c.order = append(c.order, product.ID)
	}
	c.items[product.ID] = product
	c.mu.Unlock()

	c.errs.Clear()
	c.log.InfoContext(ctx, "Product added", "op", opn, "product_id", product.ID)

	return product, nil
}

// Remove deletes a tracked product. When it is the currently selected
// product the derived detail view is cleared as well.
func (c *Collection) Remove(ctx context.Context, id int64) error {
	const opn = "collection.Remove"

	if !c.auth.Authenticated() {
		return apperr.ErrNotAuthenticated
	}

	path := fmt.Sprintf("/products/%d", id)
	if err := c.gw.Call(ctx, http.MethodDelete, path, nil, nil); err != nil {
		c.errs.Fail(err)
		return fmt.Errorf("%s: %w", opn, err)
	}

	c.mu.Lock()
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	if selected, ok := c.view.SelectedID(); ok && selected == id {
		c.view.Deselect()
	}

	c.errs.Clear()
	c.log.InfoContext(ctx, "Product removed", "op", opn, "product_id", id)

	return nil
}

// Refresh asks the service to re-check one product and replaces the
// matching record wholesale. A response carrying a different id is a
// protocol violation and fails loudly instead of inserting a duplicate.
// Refreshing the selected product invalidates its price-history view.
func (c *Collection) Refresh(ctx context.Context, id int64) (models.Product, error) {
	const opn = "collection.Refresh"

	if !c.auth.Authenticated() {
		return models.Product{}, apperr.ErrNotAuthenticated
	}

	path := fmt.Sprintf("/products/%d/refresh", id)

	var product models.Product
	if err := c.gw.Call(ctx, http.MethodPost, path, nil, &product); err != nil {
		c.errs.Fail(err)
		return models.Product{}, fmt.Errorf("%s: %w", opn, err)
	}

	if product.ID != id {
		err := fmt.Errorf("%s: refresh of product %d returned product %d", opn, id, product.ID)
		c.errs.Fail(err)
		return models.Product{}, err
	}

	c.mu.Lock()
	_, known := c.items[id]
	if known {
		c.items[id] = product
	}
	c.mu.Unlock()

	if !known {
		err := fmt.Errorf("%s: refreshed product %d is not in the collection", opn, id)
		c.errs.Fail(err)
		return models.Product{}, err
	}

	c.errs.Clear()

	if selected, ok := c.view.SelectedID(); ok && selected == id {
		c.view.ReloadHistory(ctx)
	}

	c.log.InfoContext(ctx, "Product refreshed", "op", opn, "product_id", id)

	return product, nil
}

// Get returns the product with the given id.
func (c *Collection) Get(id int64) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.items[id]
	return p, ok
}

// Products returns a snapshot of the collection in insertion order.
func (c *Collection) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]models.Product, 0, len(c.order))
	for _, id := range c.order {
		products = append(products, c.items[id])
	}

	return products
}

// Len returns the number of tracked products.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Reset drops all local state. Called on logout and forced session reset.
func (c *Collection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.items = make(map[int64]models.Product)
}
