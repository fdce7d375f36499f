package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oliversimiyu/pos-system/internal/domain"
)

func product(id int64, price float64, stock int) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          "test product",
		Price:         price,
		StockQuantity: stock,
	}
}

func TestAdd_NewLine(t *testing.T) {
	c := New()

	require.NoError(t, c.Add(product(1, 100, 5)))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, float64(100), c.Total())
}

func TestAdd_SameProductIncrementsQuantity(t *testing.T) {
	c := New()
	p := product(1, 50, 5)

	require.NoError(t, c.Add(p))
	require.NoError(t, c.Add(p))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, float64(100), c.Total())
}

func TestAdd_OutOfStock(t *testing.T) {
	c := New()

	err := c.Add(product(1, 100, 0))

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 0, c.Len())
}

func TestAdd_IncrementBeyondStock(t *testing.T) {
	c := New()
	p := product(1, 100, 2)

	require.NoError(t, c.Add(p))
	require.NoError(t, c.Add(p))
	err := c.Add(p)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, c.Lines()[0].Quantity)
}

func TestSetQuantity(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product(1, 100, 10)))

	require.NoError(t, c.SetQuantity(1, 7))

	assert.Equal(t, 7, c.Lines()[0].Quantity)
	assert.Equal(t, float64(700), c.Total())
}

func TestSetQuantity_AboveStock(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product(1, 100, 3)))

	err := c.SetQuantity(1, 4)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product(1, 100, 3)))

	require.NoError(t, c.SetQuantity(1, 0))

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, float64(0), c.Total())
}

func TestSetQuantity_UnknownProductIsNoop(t *testing.T) {
	c := New()
	assert.NoError(t, c.SetQuantity(42, 3))
	assert.Equal(t, 0, c.Len())
}

func TestRemove(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product(1, 100, 3)))
	require.NoError(t, c.Add(product(2, 50, 3)))

	c.Remove(1)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].Product.ID)
	assert.Equal(t, float64(50), c.Total())
}

func TestClear(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product(1, 100, 3)))
	require.NoError(t, c.Add(product(2, 50, 3)))

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, float64(0), c.Total())
}

func TestTotal_SumsSubtotals(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product(1, 19.99, 5)))
	require.NoError(t, c.Add(product(1, 19.99, 5)))
	require.NoError(t, c.Add(product(2, 5.50, 5)))

	assert.InDelta(t, 45.48, c.Total(), 0.001)
}

func TestLines_PreservesInsertionOrder(t *testing.T) {
	c := New()
	for id := int64(1); id <= 4; id++ {
		require.NoError(t, c.Add(product(id, 10, 5)))
	}

	lines := c.Lines()
	require.Len(t, lines, 4)
	for i, line := range lines {
		assert.Equal(t, int64(i+1), line.Product.ID)
	}
}

func TestItems_BuildsSalePayload(t *testing.T) {
	c := New()
	p := product(7, 25, 10)
	require.NoError(t, c.Add(p))
	require.NoError(t, c.Add(p))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].Product)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, float64(25), items[0].Price)
}
