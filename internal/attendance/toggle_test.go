package attendance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iliyamo/hammers-calendar/internal/client"
	"github.com/iliyamo/hammers-calendar/internal/config"
	"github.com/iliyamo/hammers-calendar/internal/model"
)

// fakeAPI answers updates from reply.  When gate is non-nil every update
// blocks until it is closed.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	gate  chan struct{}
	reply func(dir string, id uint64) (*model.Game, error)
}

func (f *fakeAPI) Update(ctx context.Context, dir string, id uint64) (*model.Game, error) {
	f.mu.Lock()
	f.calls = append(f.calls, dir)
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return f.reply(dir, id)
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func stored(attended bool) func(string, uint64) (*model.Game, error) {
	return func(_ string, id uint64) (*model.Game, error) {
		return &model.Game{ID: id, Attended: attended}, nil
	}
}

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func TestToggle_AttendTakesServerValue(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{reply: stored(true)}
	alerts := &recorder{}
	tg := New(api, alerts, 0)
	g := &model.Game{ID: 42}

	require.NoError(t, tg.Toggle(t.Context(), Attend, g))
	assert.True(t, g.Attended)
	assert.False(t, tg.Busy(42))
	assert.Equal(t, []string{"attend"}, api.calls)
	assert.Empty(t, alerts.messages())
}

func TestToggle_ServerValueWinsOverIntent(t *testing.T) {
	defer goleak.VerifyNone(t)

	// The server refuses to record the attendance and says so.
	tg := New(&fakeAPI{reply: stored(false)}, nil, 0)
	g := &model.Game{ID: 3, Attended: true}

	require.NoError(t, tg.Toggle(t.Context(), Attend, g))
	assert.False(t, g.Attended)
}

func TestGo_ClaimsGuardBeforeRequest(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{gate: make(chan struct{}), reply: stored(true)}
	alerts := &recorder{}
	tg := New(api, alerts, 0)
	g := &model.Game{ID: 42}

	require.True(t, tg.Go(t.Context(), Attend, g))
	assert.True(t, tg.Busy(42), "guard must be held as soon as Go returns")

	// A second toggle while the first is pending is ignored.
	assert.False(t, tg.Go(t.Context(), Unattend, g))
	other := &model.Game{ID: 42}
	require.NoError(t, tg.Toggle(t.Context(), Attend, other))

	close(api.gate)
	tg.Wait()

	assert.Equal(t, 1, api.count())
	assert.False(t, tg.Busy(42))
	assert.True(t, g.Attended)
	assert.False(t, other.Attended)
	assert.Empty(t, alerts.messages())
}

func TestGo_GamesAreIndependent(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{gate: make(chan struct{}), reply: stored(true)}
	tg := New(api, nil, 0)
	a, b := &model.Game{ID: 1}, &model.Game{ID: 2}

	require.True(t, tg.Go(t.Context(), Attend, a))
	require.True(t, tg.Go(t.Context(), Attend, b))
	assert.True(t, tg.Busy(1))
	assert.True(t, tg.Busy(2))

	close(api.gate)
	tg.Wait()
	assert.Equal(t, 2, api.count())
	assert.True(t, a.Attended)
	assert.True(t, b.Attended)
}

func TestToggle_FailureRevertsAndNotifiesOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{reply: func(string, uint64) (*model.Game, error) {
		return nil, errors.New("connection reset by peer")
	}}
	alerts := &recorder{}
	tg := New(api, alerts, 0)
	g := &model.Game{ID: 11, Attended: false}

	err := tg.Toggle(t.Context(), Attend, g)
	var uerr *UpdateError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, 0, uerr.Status)
	assert.Equal(t, uint64(11), uerr.GameID)

	assert.False(t, g.Attended)
	assert.False(t, tg.Busy(11))
	msgs := alerts.messages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasPrefix(msgs[0], "This game could not be updated: "))
	assert.Contains(t, msgs[0], "connection reset")

	// The user may simply try again.
	api.reply = stored(true)
	require.NoError(t, tg.Toggle(t.Context(), Attend, g))
	assert.True(t, g.Attended)
	assert.Len(t, alerts.messages(), 1)
}

func TestToggle_DelayBeforeRequest(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{reply: stored(true)}
	tg := New(api, nil, 30*time.Millisecond)
	g := &model.Game{ID: 5}

	start := time.Now()
	require.True(t, tg.Go(t.Context(), Attend, g))
	assert.True(t, tg.Busy(5))
	tg.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.True(t, g.Attended)
}

func TestToggle_CancelledDuringDelay(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{reply: stored(true)}
	alerts := &recorder{}
	tg := New(api, alerts, time.Hour)
	g := &model.Game{ID: 6, Attended: true}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err := tg.Toggle(ctx, Unattend, g)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, api.count())
	assert.True(t, g.Attended)
	assert.Len(t, alerts.messages(), 1)
	assert.False(t, tg.Busy(6))
}

// The two worked examples, end to end through the HTTP client.
func TestToggle_OverHTTP(t *testing.T) {
	defer goleak.VerifyNone(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/attend/42":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":42,"attended":true}`))
		case r.Method == http.MethodPut && r.URL.Path == "/unattend/7":
			w.WriteHeader(http.StatusInternalServerError)
		case r.Method == http.MethodPut && r.URL.Path == "/attend/9":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	api, err := client.New(config.ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, srv.Client())
	require.NoError(t, err)
	alerts := &recorder{}
	tg := New(api, alerts, 0)

	g42 := &model.Game{ID: 42, Attended: false}
	require.NoError(t, tg.Toggle(t.Context(), Attend, g42))
	assert.True(t, g42.Attended)
	assert.False(t, tg.Busy(42))

	g7 := &model.Game{ID: 7, Attended: true}
	err = tg.Toggle(t.Context(), Unattend, g7)
	var uerr *UpdateError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, http.StatusInternalServerError, uerr.Status)
	assert.True(t, g7.Attended)
	assert.False(t, tg.Busy(7))

	g9 := &model.Game{ID: 9}
	require.NoError(t, tg.Toggle(t.Context(), Attend, g9))
	assert.True(t, g9.Attended)

	msgs := alerts.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "This game could not be updated: 500", msgs[0])
}
