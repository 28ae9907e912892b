package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

// Directory maintains phone_directory, a lookup table from phone number to
// customer derived entirely from the customer table. It is rebuilt in full,
// never patched, so it is only as fresh as the last Rebuild.
type Directory struct {
	store    *Store
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	stopped bool
	running sync.WaitGroup
}

func newDirectory(s *Store, debounce time.Duration) *Directory {
	return &Directory{store: s, debounce: debounce}
}

// BuildPhoneEntries derives directory rows from customers: one per
// non-empty phone field of each active customer, ordered by phone and
// owner.
func BuildPhoneEntries(customers []*types.Customer) []types.PhoneEntry {
	var out []types.PhoneEntry
	for _, c := range customers {
		if c == nil || c.Removed {
			continue
		}
		name := c.DisplayName()
		for _, phone := range c.Phones() {
			out = append(out, types.PhoneEntry{Phone: phone, DisplayName: name, OwnerID: c.ID})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Phone != out[j].Phone {
			return out[i].Phone < out[j].Phone
		}
		return out[i].OwnerID < out[j].OwnerID
	})
	return out
}

// Rebuild replaces the directory with entries derived from the active
// customers, in one transaction. It returns the number of rows written.
func (d *Directory) Rebuild(ctx context.Context) (int, error) {
	if err := d.store.checkOpen(); err != nil {
		return 0, err
	}
	var n int
	err := d.store.tx.run(ctx, func(ctx context.Context) error {
		customers, err := d.store.customers.List(ctx, types.ListOptions{})
		if err != nil {
			return err
		}
		entries := BuildPhoneEntries(customers)

		q := d.store.tx.Querier(ctx)
		if _, err := q.ExecContext(ctx, `DELETE FROM phone_directory`); err != nil {
			return fmt.Errorf("clearing phone directory: %w", classify(types.PhoneDirectoryTable, err))
		}
		for _, e := range entries {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO phone_directory (phone, display_name, owner_id) VALUES (?, ?, ?)`,
				e.Phone, e.DisplayName, e.OwnerID); err != nil {
				return fmt.Errorf("writing phone directory: %w", classify(types.PhoneDirectoryTable, err))
			}
		}
		n = len(entries)
		return nil
	})
	if err != nil {
		return 0, err
	}
	d.store.log.Info(ctx, "phone directory rebuilt", "entries", n)
	return n, nil
}

// Schedule requests a rebuild after the debounce interval. Calls inside the
// interval push the rebuild back, so a burst of writes costs one rebuild.
// A rebuild still pending at Close runs before the store closes.
func (d *Directory) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = true
	if d.timer != nil {
		d.timer.Reset(d.debounce)
		return
	}
	d.timer = time.AfterFunc(d.debounce, d.fire)
}

func (d *Directory) fire() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.running.Add(1)
	d.mu.Unlock()
	defer d.running.Done()

	ctx := context.Background()
	if _, err := d.Rebuild(ctx); err != nil {
		if errors.Is(err, types.ErrStoreClosed) {
			return
		}
		d.store.log.Warn(ctx, "scheduled phone directory rebuild failed", "err", err)
		d.mu.Lock()
		d.pending = true
		d.mu.Unlock()
	}
}

// Pending reports whether a scheduled rebuild has not run yet.
func (d *Directory) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// flush stops scheduling for good, waits for a rebuild in progress, and
// runs a pending one.
func (d *Directory) flush(ctx context.Context) error {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.running.Wait()

	d.mu.Lock()
	pending := d.pending
	d.pending = false
	d.mu.Unlock()
	if !pending {
		return nil
	}
	_, err := d.Rebuild(ctx)
	return err
}

// Entries returns the directory ordered by phone and owner.
func (d *Directory) Entries(ctx context.Context) ([]types.PhoneEntry, error) {
	return d.query(ctx, `SELECT phone, display_name, owner_id FROM phone_directory ORDER BY phone, owner_id`)
}

// Lookup returns the entries for one phone number.
func (d *Directory) Lookup(ctx context.Context, phone string) ([]types.PhoneEntry, error) {
	return d.query(ctx,
		`SELECT phone, display_name, owner_id FROM phone_directory WHERE phone = ? ORDER BY owner_id`, phone)
}

func (d *Directory) query(ctx context.Context, q string, args ...any) ([]types.PhoneEntry, error) {
	if err := d.store.checkOpen(); err != nil {
		return nil, err
	}
	var out []types.PhoneEntry
	err := d.store.tx.read(ctx, func(db DBTX) error {
		rows, err := db.QueryContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("reading phone directory: %w", classify(types.PhoneDirectoryTable, err))
		}
		defer rows.Close()

		for rows.Next() {
			var e types.PhoneEntry
			if err := rows.Scan(&e.Phone, &e.DisplayName, &e.OwnerID); err != nil {
				return fmt.Errorf("reading phone directory: %w", err)
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
