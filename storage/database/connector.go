package database

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
)

const loadKey = "db"

// OpenFunc opens a ready to use database handle.
type OpenFunc func(ctx context.Context) (*sqlx.DB, error)

// Connector lazily opens the shared database handle the repositories use.
//
// The first Get triggers the load; concurrent callers share it. Once loaded, Ready is closed
// and every later Get returns the cached handle. A failed load is reported to every caller
// waiting on it, as an unavailable error, and the next Get tries again.
type Connector struct {
	open  OpenFunc
	group singleflight.Group

	mu    sync.RWMutex
	db    *sqlx.DB
	ready chan struct{}
}

func NewConnector(open OpenFunc) *Connector {
	return &Connector{open: open, ready: make(chan struct{})}
}

// NewLoadedConnector returns a Connector already holding `db`.
func NewLoadedConnector(db *sqlx.DB) *Connector {
	c := NewConnector(func(context.Context) (*sqlx.DB, error) { return db, nil })
	c.db = db
	close(c.ready)
	return c
}

// Ready is closed once the handle is loaded.
func (c *Connector) Ready() <-chan struct{} {
	return c.ready
}

func (c *Connector) loaded() *sqlx.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Get returns the shared handle, loading it if needed.
// Waiting ends early when `ctx` is done; the load itself goes on for the other callers.
func (c *Connector) Get(ctx context.Context) (*sqlx.DB, error) {
	if db := c.loaded(); db != nil {
		return db, nil
	}

	ch := c.group.DoChan(loadKey, func() (interface{}, error) {
		if db := c.loaded(); db != nil {
			return db, nil
		}
		// detached from the first caller: its cancellation must not fail the others
		db, err := c.open(context.Background())
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.db = db
		close(c.ready)
		c.mu.Unlock()
		return db, nil
	})

	select {
	case <-ctx.Done():
		return nil, core.NewUnavailableError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, core.NewUnavailableError(errors.Wrap(res.Err, "loading database"))
		}
		return res.Val.(*sqlx.DB), nil
	}
}

// Close closes the handle if it was loaded.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
