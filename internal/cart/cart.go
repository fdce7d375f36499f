// Package cart holds the session-scoped checkout cart. The cart lives only
// in memory: it is created empty when the terminal starts a checkout session
// and cleared after a sale is finalized or abandoned.
package cart

import (
	"errors"
	"sync"

	"github.com/oliversimiyu/pos-system/internal/domain"
)

var (
	ErrOutOfStock        = errors.New("product out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Line is one product entry with its quantity. Product data is a snapshot
// taken at add time; availableStock comes from that snapshot.
type Line struct {
	Product  domain.Product
	Quantity int
}

// Subtotal is unit price times quantity for this line.
func (l Line) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

// Cart is an ordered collection of lines keyed by product ID. Handlers run
// concurrently, so all access goes through the mutex.
type Cart struct {
	mu    sync.Mutex
	lines []*Line
	index map[int64]*Line
}

func New() *Cart {
	return &Cart{index: make(map[int64]*Line)}
}

// Add inserts the product with quantity 1, or increments an existing line.
// Fails with ErrOutOfStock when the product has no stock, and with
// ErrInsufficientStock when the increment would exceed available stock.
func (c *Cart) Add(p domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.StockQuantity <= 0 {
		return ErrOutOfStock
	}

	if line, ok := c.index[p.ID]; ok {
		if line.Quantity >= line.Product.StockQuantity {
			return ErrInsufficientStock
		}
		line.Quantity++
		return nil
	}

	line := &Line{Product: p, Quantity: 1}
	c.lines = append(c.lines, line)
	c.index[p.ID] = line
	return nil
}

// SetQuantity sets a line's quantity. n above available stock fails with
// ErrInsufficientStock; n <= 0 removes the line.
func (c *Cart) SetQuantity(productID int64, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.index[productID]
	if !ok {
		return nil
	}
	if n > line.Product.StockQuantity {
		return ErrInsufficientStock
	}
	if n <= 0 {
		c.removeLocked(productID)
		return nil
	}
	line.Quantity = n
	return nil
}

// Remove deletes the line if present; no-op otherwise.
func (c *Cart) Remove(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID)
}

func (c *Cart) removeLocked(productID int64) {
	if _, ok := c.index[productID]; !ok {
		return
	}
	delete(c.index, productID)
	for i, line := range c.lines {
		if line.Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.index = make(map[int64]*Line)
}

// Total is the derived sum over all lines. Pure; no side effects.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, line := range c.lines {
		total += line.Subtotal()
	}
	return total
}

// Lines returns a snapshot of the cart in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, *line)
	}
	return out
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Items converts the current lines into the sale payload shape.
func (c *Cart) Items() []domain.SaleItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]domain.SaleItem, 0, len(c.lines))
	for _, line := range c.lines {
		items = append(items, domain.SaleItem{
			Product:  line.Product.ID,
			Quantity: line.Quantity,
			Price:    line.Product.Price,
		})
	}
	return items
}
