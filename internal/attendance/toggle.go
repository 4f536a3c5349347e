// Package attendance flips a user's attendance at a game and reconciles the
// local copy of the game with what the server stored.
//
// At most one update per game is in flight at a time.  The Toggler keeps
// the ids of games with a pending request; a toggle for a game in that set
// is ignored.  The server's attended value always wins over the caller's
// intent.  On failure the game keeps the value it had before the call and
// the user is notified exactly once.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/hammers-calendar/internal/client"
	"github.com/iliyamo/hammers-calendar/internal/model"
)

// Direction selects the endpoint an update is sent to.
type Direction string

const (
	Attend   Direction = "attend"
	Unattend Direction = "unattend"
)

// Updater sends PUT {direction}/{id} and returns the stored game.
// *client.Client implements it.
type Updater interface {
	Update(ctx context.Context, direction string, id uint64) (*model.Game, error)
}

// UpdateError is the one failure kind of a toggle.  Status is the HTTP
// status of the response, or 0 when no response was received.
type UpdateError struct {
	GameID    uint64
	Direction Direction
	Status    int
	Err       error
}

func (e *UpdateError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("This game could not be updated: %d", e.Status)
	}
	return fmt.Sprintf("This game could not be updated: %v", e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// Toggler is safe for concurrent use.  A *model.Game passed to Toggle or Go
// belongs to the Toggler until Busy reports false for its id.
type Toggler struct {
	api    Updater
	notify Notifier
	delay  time.Duration

	mu      sync.Mutex
	pending map[uint64]struct{}
	wg      sync.WaitGroup
}

// New returns a Toggler.  delay is an optional pause before each request;
// zero sends immediately.
func New(api Updater, notify Notifier, delay time.Duration) *Toggler {
	if notify == nil {
		notify = NotifierFunc(func(string) {})
	}
	if delay < 0 {
		delay = 0
	}
	return &Toggler{api: api, notify: notify, delay: delay, pending: make(map[uint64]struct{})}
}

// Busy reports whether an update for the game is in flight.
func (t *Toggler) Busy(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[id]
	return ok
}

func (t *Toggler) claim(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[id]; ok {
		return false
	}
	t.pending[id] = struct{}{}
	return true
}

func (t *Toggler) release(id uint64) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

// Toggle sends the update and blocks until it completes.  It returns nil
// without doing anything when an update for the game is already in flight,
// and *UpdateError when the update failed.
func (t *Toggler) Toggle(ctx context.Context, dir Direction, g *model.Game) error {
	if !t.claim(g.ID) {
		return nil
	}
	return t.run(ctx, dir, g)
}

// Go claims the game before returning and finishes the update in the
// background.  It reports false when an update for the game was already in
// flight.  Wait blocks until every started update has completed.
func (t *Toggler) Go(ctx context.Context, dir Direction, g *model.Game) bool {
	if !t.claim(g.ID) {
		return false
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		_ = t.run(ctx, dir, g)
	}()
	return true
}

// Wait blocks until all updates started with Go have finished.
func (t *Toggler) Wait() { t.wg.Wait() }

func (t *Toggler) run(ctx context.Context, dir Direction, g *model.Game) error {
	before := g.Attended
	stored, err := t.send(ctx, dir, g.ID)
	if err == nil {
		g.Attended = stored.Attended
		t.release(g.ID)
		return nil
	}

	g.Attended = before
	t.release(g.ID)
	uerr := &UpdateError{GameID: g.ID, Direction: dir, Err: err}
	var se *client.StatusError
	if errors.As(err, &se) {
		uerr.Status = se.Code
	}
	log.Printf("attendance: %s game %d: %v", dir, g.ID, err)
	t.notify.Notify(uerr.Error())
	return uerr
}

func (t *Toggler) send(ctx context.Context, dir Direction, id uint64) (*model.Game, error) {
	if t.delay > 0 {
		timer := time.NewTimer(t.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return t.api.Update(ctx, string(dir), id)
}
