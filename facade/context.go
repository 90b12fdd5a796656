// File: facade/context.go
// Author: momentics <momentics@gmail.com>
//
// Context is the public entry point composing every lower layer into the
// surface spec.md §6 names: a set of Reactor goroutines sockets are
// round-robin assigned to, a shared BufferPool, an inproc registry, and
// the control/config/metrics/debug quartet the teacher's own facade
// wires (control.ConfigStore, control.MetricsRegistry, control.DebugProbes,
// control.Logger) in place of the teacher's NUMA/DPDK/executor stack.

package facade

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nanozmq/zmqcore/affinity"
	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/control"
	"github.com/nanozmq/zmqcore/internal/socket"
	"github.com/nanozmq/zmqcore/pool"
	"github.com/nanozmq/zmqcore/reactor"
	"github.com/nanozmq/zmqcore/transport/inproc"
)

// Context owns every Reactor a process's sockets run on, plus the shared
// resources (buffer pool, inproc namespace, config/metrics/debug) they
// all draw from. Most programs create exactly one.
type Context struct {
	cfg      Config
	cfgStore *control.ConfigStore
	metrics  *metricsCollector
	debug    *control.DebugProbes
	logger   *control.Logger
	pool     api.BufferPool
	inproc   *inproc.Registry

	ioThreads []*reactor.Reactor
	nextRe    uint64

	mu         sync.Mutex
	sockets    map[*Socket]struct{}
	terminated bool
	startedAt  time.Time
}

// NewContext starts a Context with ioThreads Reactor goroutines and
// every other default from DefaultConfig.
func NewContext(ioThreads int) (*Context, error) {
	cfg := DefaultConfig()
	cfg.IOThreads = ioThreads
	return NewContextWithConfig(cfg)
}

// NewContextWithConfig starts a Context from an explicit Config, for
// callers that need non-default HWM, linger, or reconnect bounds.
func NewContextWithConfig(cfg *Config) (*Context, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if c.IOThreads < 1 {
		c.IOThreads = 1
	}

	ctx := &Context{
		cfg:       c,
		cfgStore:  control.NewConfigStore(),
		metrics:   newMetricsCollector(),
		debug:     control.NewDebugProbes(),
		logger:    control.NewLogger("context"),
		pool:      pool.NewManager(),
		inproc:    inproc.NewRegistry(),
		sockets:   make(map[*Socket]struct{}),
		startedAt: time.Now(),
	}
	ctx.cfgStore.SetConfig(map[string]any{
		"io_threads":        c.IOThreads,
		"snd_hwm":           c.SndHWM,
		"rcv_hwm":           c.RcvHWM,
		"pipe_capacity":     c.PipeCapacity,
		"pipe_lwm":          c.PipeLWM,
		"linger":            c.Linger,
		"reconnect_ivl":     c.ReconnectIvl,
		"reconnect_ivl_max": c.ReconnectIvlMax,
		"max_msg_size":      c.MaxMsgSize,
	})

	control.RegisterPlatformProbes(ctx.debug)
	ctx.debug.RegisterProbe("sockets.active", func() any {
		ctx.mu.Lock()
		defer ctx.mu.Unlock()
		return len(ctx.sockets)
	})

	for i := 0; i < c.IOThreads; i++ {
		re, err := reactor.New()
		if err != nil {
			ctx.stopReactors()
			return nil, err
		}
		ctx.ioThreads = append(ctx.ioThreads, re)
		cpu := i
		go func() {
			if c.CPUAffinity {
				// SetAffinity pins the current OS thread, so keep this
				// Reactor goroutine on it.
				runtime.LockOSThread()
				if err := affinity.SetAffinity(cpu); err != nil {
					ctx.logger.Warn("cpu affinity failed", control.F("cpu", cpu), control.F("err", err))
				}
			}
			re.Run()
		}()
	}
	ctx.logger.Info("context started", control.F("io_threads", c.IOThreads))
	return ctx, nil
}

func (ctx *Context) stopReactors() {
	for _, re := range ctx.ioThreads {
		re.Stop()
	}
}

func (ctx *Context) nextReactor() *reactor.Reactor {
	idx := atomic.AddUint64(&ctx.nextRe, 1) - 1
	return ctx.ioThreads[idx%uint64(len(ctx.ioThreads))]
}

func (ctx *Context) registerSocket(s *Socket) {
	ctx.mu.Lock()
	ctx.sockets[s] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *Context) unregisterSocket(s *Socket) {
	ctx.mu.Lock()
	delete(ctx.sockets, s)
	ctx.mu.Unlock()
}

// NewSocket builds a Socket of kind, assigned round-robin to one of the
// Context's Reactor goroutines.
func (ctx *Context) NewSocket(kind api.SocketType) (*Socket, error) {
	ctx.mu.Lock()
	terminated := ctx.terminated
	ctx.mu.Unlock()
	if terminated {
		return nil, api.ErrTerm
	}

	pattern := socket.New(kind, ctx.pool)
	if pattern == nil {
		return nil, api.NewError(api.KindInvalidState, "facade: unsupported socket type "+kind.String(), api.ErrNotSupported)
	}

	sock := &Socket{
		ctx:     ctx,
		kind:    kind,
		pattern: pattern,
		re:      ctx.nextReactor(),
		opts: socketOptions{
			sndHWM:          ctx.cfg.SndHWM,
			rcvHWM:          ctx.cfg.RcvHWM,
			linger:          ctx.cfg.Linger,
			reconnectIvl:    ctx.cfg.ReconnectIvl,
			reconnectIvlMax: ctx.cfg.ReconnectIvlMax,
		},
	}
	ctx.registerSocket(sock)
	return sock, nil
}

// Stats returns a snapshot of the Context's counters (§7 EXPANSION).
func (ctx *Context) Stats() api.Metrics {
	return ctx.metrics.snapshot(ctx.startedAt)
}

// GetConfig returns a snapshot of the Context's dynamic configuration.
func (ctx *Context) GetConfig() map[string]any { return ctx.cfgStore.GetSnapshot() }

// SetConfig merges new values into the Context's configuration and fires
// any registered reload hooks.
func (ctx *Context) SetConfig(cfg map[string]any) error {
	ctx.cfgStore.SetConfig(cfg)
	return nil
}

// OnReload registers a hook fired whenever SetConfig is called.
func (ctx *Context) OnReload(fn func()) { ctx.cfgStore.OnReload(fn) }

// RegisterDebugProbe exposes a named introspection hook through DebugDump.
func (ctx *Context) RegisterDebugProbe(name string, fn func() any) {
	ctx.debug.RegisterProbe(name, fn)
}

// DebugDump runs every registered debug probe and returns the results.
func (ctx *Context) DebugDump() map[string]any { return ctx.debug.DumpState() }

// Term closes every Socket the Context still owns (respecting each
// Socket's linger) and stops all Reactor goroutines. Safe to call once;
// later calls are no-ops.
func (ctx *Context) Term() error {
	ctx.mu.Lock()
	if ctx.terminated {
		ctx.mu.Unlock()
		return nil
	}
	ctx.terminated = true
	socks := make([]*Socket, 0, len(ctx.sockets))
	for s := range ctx.sockets {
		socks = append(socks, s)
	}
	ctx.mu.Unlock()

	for _, s := range socks {
		s.Close()
	}
	ctx.stopReactors()
	ctx.logger.Info("context terminated")
	return nil
}

// Shutdown implements api.GracefulShutdown for callers that drive every
// long-lived component through one uniform contract; equivalent to Term.
func (ctx *Context) Shutdown() error { return ctx.Term() }

var (
	_ api.Control          = (*Context)(nil)
	_ api.GracefulShutdown = (*Context)(nil)
)
