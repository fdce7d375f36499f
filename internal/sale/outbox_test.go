package sale

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oliversimiyu/pos-system/internal/domain"
)

func newTestOutbox(t *testing.T) *Outbox {
	t.Helper()
	o, err := OpenOutbox(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { o.Close() })
	return o
}

func pendingSale(id string, queuedAt time.Time) PendingSale {
	return PendingSale{
		ID: id,
		Sale: domain.SaleRequest{
			Items:         []domain.SaleItem{{Product: 1, Quantity: 2, Price: 50}},
			PaymentMethod: domain.MethodCash,
			AmountPaid:    100,
			ClientRef:     id,
		},
		QueuedAt: queuedAt,
	}
}

func TestOutbox_AppendAndPending(t *testing.T) {
	o := newTestOutbox(t)

	require.NoError(t, o.Append(pendingSale("ref-1", time.Now().UTC())))

	pending, err := o.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ref-1", pending[0].ID)
	assert.Len(t, pending[0].Sale.Items, 1)
}

func TestOutbox_AppendIdempotentOnID(t *testing.T) {
	o := newTestOutbox(t)
	entry := pendingSale("ref-1", time.Now().UTC())

	require.NoError(t, o.Append(entry))
	require.NoError(t, o.Append(entry))

	pending, err := o.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestOutbox_PendingOldestFirst(t *testing.T) {
	o := newTestOutbox(t)
	base := time.Now().UTC()

	require.NoError(t, o.Append(pendingSale("ref-new", base.Add(time.Minute))))
	require.NoError(t, o.Append(pendingSale("ref-old", base)))

	pending, err := o.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "ref-old", pending[0].ID)
	assert.Equal(t, "ref-new", pending[1].ID)
}

func TestOutbox_MarkSubmittedDropsFromPending(t *testing.T) {
	o := newTestOutbox(t)
	require.NoError(t, o.Append(pendingSale("ref-1", time.Now().UTC())))
	require.NoError(t, o.Append(pendingSale("ref-2", time.Now().UTC())))

	require.NoError(t, o.MarkSubmitted("ref-1", "RCP-001"))

	pending, err := o.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ref-2", pending[0].ID)
}

func TestOutbox_MarkUnknownSale(t *testing.T) {
	o := newTestOutbox(t)
	assert.ErrorIs(t, o.MarkSubmitted("missing", "RCP-001"), ErrSaleNotQueued)
}

func TestOutbox_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.db")

	o, err := OpenOutbox(path)
	require.NoError(t, err)
	require.NoError(t, o.Append(pendingSale("ref-1", time.Now().UTC())))
	require.NoError(t, o.Close())

	o2, err := OpenOutbox(path)
	require.NoError(t, err)
	defer o2.Close()

	pending, err := o2.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ref-1", pending[0].ID)
}
