package app

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/require"

	actx "go.hackfix.me/vemigrate/app/context"
	"go.hackfix.me/vemigrate/store"
	"go.hackfix.me/vemigrate/store/sqlite"
)

var timeStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

const configPath = "/config.yaml"

type testApp struct {
	*App
	stdout, stderr *safeBuffer
	env            *mockEnv
	clock          *mockClock
}

// newTestApp returns an application using an in-memory filesystem. If st is
// nil, the store is opened from the configured settings on every run.
func newTestApp(ctx context.Context, t *testing.T, st store.Store) *testApp {
	t.Helper()

	stdout, stderr := newSafeBuffer(), newSafeBuffer()
	env := &mockEnv{env: map[string]string{}}
	clock := &mockClock{now: timeStart}

	opts := []Option{
		WithTimeNow(clock.Now),
		WithEnv(env),
		WithContext(ctx),
		WithFDs(&bytes.Buffer{}, stdout, stderr),
		WithFS(memoryfs.New()),
		WithLogger(false),
	}
	if st != nil {
		opts = append(opts, WithStore(st))
	}

	app, err := New("vemigrate", configPath, opts...)
	require.NoError(t, err)

	return &testApp{App: app, stdout: stdout, stderr: stderr, env: env, clock: clock}
}

// newSQLiteStore returns a store backed by an in-memory SQLite database that
// lives for the duration of the test.
func newSQLiteStore(t *testing.T) *sqlite.Store {
	t.Helper()

	// A unique name per test, to avoid clashing of in-memory SQLite DBs.
	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	st, err := sqlite.Open(
		fmt.Sprintf("file:vemigrate-%x?mode=memory&cache=shared", rndName), "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return st
}

// Run runs the app with the given arguments, and resets the output buffers
// beforehand, so that they only contain the output of this run.
func (ta *testApp) Run(args ...string) error {
	ta.stdout.Reset()
	ta.stderr.Reset()
	return ta.App.Run(args)
}

func (ta *testApp) writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, ta.ctx.FS.MkdirAll(dirOf(path), 0o755))
	require.NoError(t, vfs.WriteFile(ta.ctx.FS, path, []byte(content), 0o644))
}

func (ta *testApp) readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := vfs.ReadFile(ta.ctx.FS, path)
	require.NoError(t, err)
	return string(data)
}

func dirOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return "/"
	}
	return path[:i]
}

type mockEnv struct {
	mx  sync.RWMutex
	env map[string]string
}

var _ actx.Environment = (*mockEnv)(nil)

func (me *mockEnv) Get(key string) string {
	me.mx.RLock()
	defer me.mx.RUnlock()
	return me.env[key]
}

func (me *mockEnv) Set(key, val string) error {
	me.mx.Lock()
	defer me.mx.Unlock()
	me.env[key] = val
	return nil
}

type mockClock struct {
	mx  sync.Mutex
	now time.Time
}

func (c *mockClock) Now() time.Time {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.now = c.now.Add(d)
}

// newTestContext returns a context that times out after timeout, and an
// assertion handling function that cancels the context prematurely and fails
// the test if the assertion fails. This is done to avoid waiting for the
// context timeout to be reached.
func newTestContext(t *testing.T, timeout time.Duration) (
	ctx context.Context, cancelCtx func(), assertHandler func(bool),
) {
	ctx, cancelCtx = context.WithTimeout(t.Context(), timeout)
	assertHandler = func(success bool) {
		if !success {
			cancelCtx()
			t.FailNow()
		}
	}

	return
}

// safeBuffer is a thread-safe buffer.
type safeBuffer struct {
	mx  sync.RWMutex
	buf *bytes.Buffer
}

var _ io.Writer = (*safeBuffer)(nil)

func newSafeBuffer() *safeBuffer {
	return &safeBuffer{buf: &bytes.Buffer{}}
}

func (b *safeBuffer) Write(p []byte) (n int, err error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) Reset() {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.buf.Reset()
}

func (b *safeBuffer) String() string {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.buf.String()
}
