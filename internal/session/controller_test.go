package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/climbr/internal/analysis"
	"github.com/Veraticus/climbr/internal/llm"
	"github.com/Veraticus/climbr/internal/model"
)

var photo = model.Image{MediaType: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}}

// replyClient answers every request with a fixed reply.
type replyClient struct {
	reply string
}

func (r replyClient) Describe(context.Context, model.Image, string) (string, error) {
	return r.reply, nil
}

func (r replyClient) Name() string { return "reply" }

// gatedAnalyzer blocks each Analyze call until release is closed.
type gatedAnalyzer struct {
	release chan struct{}
	err     error
	result  []model.RouteDetection
	calls   int
	mu      sync.Mutex
}

func newGatedAnalyzer() *gatedAnalyzer {
	return &gatedAnalyzer{release: make(chan struct{}), result: analysis.Demo()}
}

func (g *gatedAnalyzer) Analyze(ctx context.Context, _ model.Image, _ analysis.Mode) ([]model.RouteDetection, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.result, g.err
}

func (g *gatedAnalyzer) Provider(analysis.Mode) string { return "gated" }

func (g *gatedAnalyzer) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func waitFor(t *testing.T, c *Controller) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	state, err := c.Wait(ctx)
	require.NoError(t, err)
	return state
}

func TestController_DemoWithoutCredential(t *testing.T) {
	c := New(analysis.New(nil))
	assert.Equal(t, StateIdle, c.State())

	require.NoError(t, c.Submit(context.Background(), photo))
	assert.Equal(t, StateDone, waitFor(t, c))

	snap := c.Snapshot()
	assert.Equal(t, analysis.ProviderDemo, snap.Provider)
	require.Len(t, snap.Records, 6)
	for _, r := range snap.Records {
		assert.False(t, r.Graded())
		assert.Empty(t, r.SetterNotes)
	}
	assert.NoError(t, snap.Err)
}

func TestController_RemoteUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid api key"}}`))
	}))
	defer server.Close()

	client, err := llm.NewClient(llm.Config{APIKey: "sk-wrong", BaseURL: server.URL})
	require.NoError(t, err)

	c := New(analysis.New(client))
	require.NoError(t, c.Submit(context.Background(), photo))
	assert.Equal(t, StateError, waitFor(t, c))

	snap := c.Snapshot()
	assert.Equal(t, "invalid api key", snap.ErrorMessage())
	assert.Empty(t, snap.Records)
	assert.True(t, snap.HasImage)
	assert.Equal(t, analysis.KindTransport, analysis.KindOf(c.Err()))
}

func TestController_MissingCredentialInRemoteMode(t *testing.T) {
	c := New(analysis.New(nil), WithMode(analysis.ModeRemote))
	require.NoError(t, c.Submit(context.Background(), photo))
	assert.Equal(t, StateError, waitFor(t, c))
	require.ErrorIs(t, c.Err(), analysis.ErrMissingCredential)
}

func TestController_SubmitWhileLoading(t *testing.T) {
	g := newGatedAnalyzer()
	c := New(g)

	require.NoError(t, c.Submit(context.Background(), photo))
	assert.Equal(t, StateLoading, c.State())

	require.ErrorIs(t, c.Submit(context.Background(), photo), ErrBusy)

	close(g.release)
	assert.Equal(t, StateDone, waitFor(t, c))
	assert.Equal(t, 1, g.Calls())
}

func TestController_SubmitRequiresIdle(t *testing.T) {
	c := New(analysis.New(nil))
	require.NoError(t, c.Submit(context.Background(), photo))
	waitFor(t, c)

	require.ErrorIs(t, c.Submit(context.Background(), photo), ErrNotIdle)

	c.Reset()
	require.NoError(t, c.Submit(context.Background(), photo))
	assert.Equal(t, StateDone, waitFor(t, c))
}

func TestController_SubmitRejectsNonImage(t *testing.T) {
	c := New(analysis.New(nil))
	err := c.Submit(context.Background(), model.Image{MediaType: "application/pdf", Data: []byte("%PDF")})
	require.ErrorIs(t, err, model.ErrNotImage)
	assert.Equal(t, StateIdle, c.State())
}

func TestController_MalformedReply(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		wantKind analysis.Kind
	}{
		{"prose", "I can see several routes on this wall.", analysis.KindUnparseable},
		{"object", "{}", analysis.KindNoRoutes},
		{"empty array", "[]", analysis.KindNoRoutes},
		{"unusable elements", `[{"color_name":"","hex":"nope"}]`, analysis.KindNoRoutes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(analysis.New(replyClient{reply: tt.reply}))
			require.NoError(t, c.Submit(context.Background(), photo))
			assert.Equal(t, StateError, waitFor(t, c))

			snap := c.Snapshot()
			assert.Equal(t, tt.wantKind, analysis.KindOf(snap.Err))
			assert.Empty(t, snap.Records)
			assert.Zero(t, c.Len())
			_, err := c.Patch(0, model.SetGradeV("V1"))
			assert.ErrorIs(t, err, ErrNotEditable)
		})
	}
}

func TestController_ResetDiscardsInFlightResult(t *testing.T) {
	g := newGatedAnalyzer()
	c := New(g)

	require.NoError(t, c.Submit(context.Background(), photo))
	c.Reset()

	assert.Equal(t, StateIdle, waitFor(t, c))
	snap := c.Snapshot()
	assert.Empty(t, snap.Records)
	assert.False(t, snap.HasImage)
	assert.NoError(t, snap.Err)
}

func TestController_ResetFromDoneAndError(t *testing.T) {
	c := New(analysis.New(nil))
	require.NoError(t, c.Submit(context.Background(), photo))
	waitFor(t, c)
	_, err := c.Patch(0, model.SetGradeV("V3"))
	require.NoError(t, err)

	c.Reset()
	assert.Equal(t, StateIdle, c.State())
	assert.Zero(t, c.Len())
	_, ok := c.Image()
	assert.False(t, ok)

	failing := New(analysis.New(nil), WithMode(analysis.ModeRemote))
	require.NoError(t, failing.Submit(context.Background(), photo))
	waitFor(t, failing)
	failing.Reset()
	assert.Equal(t, StateIdle, failing.State())
	assert.NoError(t, failing.Err())
}

func TestController_Retry(t *testing.T) {
	g := newGatedAnalyzer()
	g.err = &analysis.TransportError{Message: "overloaded", Status: 529}
	close(g.release)

	c := New(g)
	require.ErrorIs(t, c.Retry(context.Background()), ErrNothingToRetry)

	require.NoError(t, c.Submit(context.Background(), photo))
	assert.Equal(t, StateError, waitFor(t, c))

	g.mu.Lock()
	g.err = nil
	g.mu.Unlock()

	require.NoError(t, c.Retry(context.Background()))
	assert.Equal(t, StateDone, waitFor(t, c))
	assert.Equal(t, 2, g.Calls())
	assert.Equal(t, 6, c.Len())
}

func TestController_Timeout(t *testing.T) {
	g := newGatedAnalyzer()
	c := New(g, WithTimeout(20*time.Millisecond))

	require.NoError(t, c.Submit(context.Background(), photo))
	assert.Equal(t, StateError, waitFor(t, c))
	require.ErrorIs(t, c.Err(), context.DeadlineExceeded)
}

func TestController_PatchOnlyWhenDone(t *testing.T) {
	c := New(analysis.New(nil))

	_, err := c.Patch(0, model.SetGradeV("V1"))
	require.ErrorIs(t, err, ErrNotEditable)

	require.NoError(t, c.Submit(context.Background(), photo))
	waitFor(t, c)

	rec, err := c.Patch(2, model.SetGradeV("V7"))
	require.NoError(t, err)
	assert.Equal(t, "6C+", rec.GradeFont)

	doc := c.ExportDocument()
	assert.Equal(t, "V7", doc.WallSet[2].GradeV)
	assert.Empty(t, doc.WallSet[1].GradeV)

	text, err := c.ClipboardText()
	require.NoError(t, err)
	assert.Contains(t, text, `"gradeV": "V7"`)
}

func TestController_OnChange(t *testing.T) {
	c := New(analysis.New(nil))

	var (
		mu     sync.Mutex
		states []State
	)
	c.OnChange(func(s Snapshot) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})

	require.NoError(t, c.Submit(context.Background(), photo))
	waitFor(t, c)
	c.Reset()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateLoading, StateDone, StateIdle}, states)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "error", StateError.String())
}
