package scenario

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loykin/apiscope/internal/common"
	"github.com/loykin/apiscope/internal/httpc"
	"github.com/loykin/apiscope/pkg/config"
)

type fakeClient struct {
	id         int
	configures int
	closed     int
	lastSet    *config.Set
}

func (c *fakeClient) Configure(set *config.Set) error {
	c.configures++
	c.lastSet = set
	return nil
}

func (c *fakeClient) Close() { c.closed++ }

type fakeFactory struct {
	mu    sync.Mutex
	built []*fakeClient
}

func (f *fakeFactory) build(httpc.Options) (httpc.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &fakeClient{id: len(f.built) + 1}
	f.built = append(f.built, c)
	return c, nil
}

type harness struct {
	rt      *Runtime
	factory *fakeFactory
	logs    *bytes.Buffer
	baseDir string
}

func newHarness(t *testing.T, opts ...RuntimeOption) *harness {
	t.Helper()
	h := &harness{factory: &fakeFactory{}, logs: &bytes.Buffer{}, baseDir: t.TempDir()}
	p := httpc.NewProvisioner()
	p.Register("fake", h.factory.build)
	p.Register("fake2", h.factory.build)
	base := []RuntimeOption{
		WithProvisioner(p),
		WithLogger(common.NewLoggerWithWriter(h.logs, common.LogLevelDebug)),
		WithBaseDir(h.baseDir),
	}
	h.rt = NewRuntime(append(base, opts...)...)
	return h
}

// root builds a fresh context backed by the fake client class.
func (h *harness) root(t *testing.T, opts ...LinkOption) *Context {
	t.Helper()
	ctx, err := NewContext(h.rt, NewCallLink(append([]LinkOption{WithClientClass("fake")}, opts...)...))
	require.NoError(t, err)
	t.Cleanup(ctx.Close)
	return ctx
}

func (h *harness) child(t *testing.T, parent *Context, reuse bool, opts ...LinkOption) *Context {
	t.Helper()
	ctx, err := NewContext(h.rt, NewCallLink(append([]LinkOption{WithParent(parent, reuse)}, opts...)...))
	require.NoError(t, err)
	return ctx
}

func clientOf(t *testing.T, ctx *Context) *fakeClient {
	t.Helper()
	fc, ok := ctx.Client().(*fakeClient)
	require.True(t, ok, "expected fake client, got %T", ctx.Client())
	return fc
}
