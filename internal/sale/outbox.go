package sale

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/oliversimiyu/pos-system/internal/domain"
)

const outboxBucket = "sale_outbox"

// ErrSaleNotQueued is returned when marking an unknown outbox entry.
var ErrSaleNotQueued = errors.New("sale not in outbox")

// PendingSale is one parked sale waiting for resubmission. The ID doubles as
// the client idempotency key sent with the sale payload.
type PendingSale struct {
	ID            string             `json:"id"`
	Sale          domain.SaleRequest `json:"sale"`
	QueuedAt      time.Time          `json:"queued_at"`
	Submitted     bool               `json:"submitted"`
	ReceiptNumber string             `json:"receipt_number,omitempty"`
}

// Outbox is a BoltDB-backed queue of parked sales. Appends are idempotent on
// ID: re-parking the same sale is a no-op.
type Outbox struct {
	db *bolt.DB
}

// OpenOutbox opens (or creates) the outbox database at path.
func OpenOutbox(path string) (*Outbox, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(outboxBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Outbox{db: db}, nil
}

// Close releases the database file lock.
func (o *Outbox) Close() error {
	return o.db.Close()
}

// Append stores the entry unless an entry with the same ID already exists.
func (o *Outbox) Append(entry PendingSale) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(outboxBucket))
		if b.Get([]byte(entry.ID)) != nil {
			return nil
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put([]byte(entry.ID), raw)
	})
}

// Pending returns all entries not yet accepted by the backend, oldest first.
func (o *Outbox) Pending() ([]PendingSale, error) {
	var out []PendingSale
	err := o.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(outboxBucket))
		return b.ForEach(func(_, v []byte) error {
			var entry PendingSale
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			if !entry.Submitted {
				out = append(out, entry)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueuedAt.Before(out[j].QueuedAt) })
	return out, nil
}

// MarkSubmitted records the backend's acceptance of a parked sale.
func (o *Outbox) MarkSubmitted(id, receiptNumber string) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(outboxBucket))
		raw := b.Get([]byte(id))
		if raw == nil {
			return ErrSaleNotQueued
		}
		var entry PendingSale
		if err := json.Unmarshal(raw, &entry); err != nil {
			return err
		}
		entry.Submitted = true
		entry.ReceiptNumber = receiptNumber
		updated, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), updated)
	})
}
