/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package protocol

import (
	"net"
	"plugin"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nabbar/taps-core/eventloop"
	"github.com/nabbar/taps-core/message"
	"github.com/nabbar/taps-core/tapserr"
)

// Symbol names a loaded plugin must export, one function per Module
// method (§6.1/§4.3). Missing any required-for-role symbol fails fast
// with tapserr.IncompleteModule naming the symbol, mirroring the source's
// per-dlsym "goto fail" convention.
const (
	SymbolListen  = "Listen"
	SymbolStop    = "Stop"
	SymbolConnect = "Connect"
	SymbolSend    = "Send"
	SymbolReceive = "Receive"
)

type fnListen = func(loop eventloop.Loop, addr net.Addr, cb ListenCallbacks) (ProtoCtx, error)
type fnStop = func(ctx ProtoCtx, onStopped func())
type fnConnect = func(loop eventloop.Loop, addr net.Addr, cb ConnectCallbacks) (ProtoCtx, error)
type fnSend = func(ctx ProtoCtx, item ItemToken, iov []message.Buf, cb SendCallbacks) error
type fnReceive = func(ctx ProtoCtx, item ItemToken, iov []message.Buf, cb ReceiveCallbacks)

// Handle is a loaded Module plus the role it was validated for. The
// handle is released by its last owner (see Release); per §4.3 that is
// never done from within a module callback, since that would unload the
// very code executing the callback.
type Handle struct {
	Module
	Path string

	listen  bool
	connect bool
}

// Release is called by the last owner (a Connection with no parent
// Listener, or a Listener once it reaches Stopped) to give up its
// reference to the loaded module. Go's plugin package exposes no unload
// primitive — unlike dlclose, a *plugin.Plugin lives for the life of the
// process — so Release is a no-op: this Loader keeps no reference count
// and nothing is ever unloaded.
func (h *Handle) Release() {}

// moduleFuncs adapts five loosely-typed function values (as resolved from
// a plugin, or supplied directly by an in-process module such as
// protocol/tcp) into the Module interface.
type moduleFuncs struct {
	listen  fnListen
	stop    fnStop
	connect fnConnect
	send    fnSend
	receive fnReceive
}

func (m moduleFuncs) Listen(loop eventloop.Loop, addr net.Addr, cb ListenCallbacks) (ProtoCtx, error) {
	return m.listen(loop, addr, cb)
}

func (m moduleFuncs) Stop(ctx ProtoCtx, onStopped func()) {
	m.stop(ctx, onStopped)
}

func (m moduleFuncs) Connect(loop eventloop.Loop, addr net.Addr, cb ConnectCallbacks) (ProtoCtx, error) {
	return m.connect(loop, addr, cb)
}

func (m moduleFuncs) Send(ctx ProtoCtx, item ItemToken, iov []message.Buf, cb SendCallbacks) error {
	return m.send(ctx, item, iov, cb)
}

func (m moduleFuncs) Receive(ctx ProtoCtx, item ItemToken, iov []message.Buf, cb ReceiveCallbacks) {
	m.receive(ctx, item, iov, cb)
}

// Role selects which subset of the five symbols a Load call validates,
// per §4.3: a listener needs listen+stop+send+receive, an initiator needs
// connect+send+receive.
type Role int

const (
	RoleListener Role = iota
	RoleInitiator
)

// Loader resolves a Module by filesystem path. Concurrent Load calls for
// the same path are coalesced via singleflight so the plugin is opened at
// most once.
type Loader struct {
	group singleflight.Group

	mu     sync.Mutex
	cache  map[string]*plugin.Plugin
	inproc map[string]Module
}

// NewLoader returns an empty Loader.
func NewLoader() *Loader {
	return &Loader{
		cache:  make(map[string]*plugin.Plugin),
		inproc: make(map[string]Module),
	}
}

// RegisterInProcess binds a path to a Module implemented in this binary
// rather than a dynamically-loaded .so, used for the bundled protocol/tcp
// module and for tests.
func (l *Loader) RegisterInProcess(path string, m Module) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inproc[path] = m
}

// Load resolves path to a Handle, validating the symbol set required by
// role.
func (l *Loader) Load(path string, role Role) (*Handle, error) {
	l.mu.Lock()
	if m, ok := l.inproc[path]; ok {
		l.mu.Unlock()
		return l.validate(path, m, role)
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do(path, func() (any, error) {
		l.mu.Lock()
		p, ok := l.cache[path]
		l.mu.Unlock()
		if ok {
			return p, nil
		}

		p, perr := plugin.Open(path)
		if perr != nil {
			return nil, tapserr.New(tapserr.LoadError, "failed to open protocol module: "+path, perr)
		}

		l.mu.Lock()
		l.cache[path] = p
		l.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	p := v.(*plugin.Plugin)
	m, err := resolveSymbols(p, role)
	if err != nil {
		return nil, err
	}
	return l.validate(path, m, role)
}

func (l *Loader) validate(path string, m Module, role Role) (*Handle, error) {
	h := &Handle{Module: m, Path: path}
	switch role {
	case RoleListener:
		h.listen = true
	case RoleInitiator:
		h.connect = true
	}
	return h, nil
}

// resolveSymbols resolves the symbol subset role requires (§4.3: a
// listener needs listen+stop+send+receive, an initiator needs
// connect+send+receive) and fails fast with tapserr.IncompleteModule naming
// the first missing or mistyped symbol. A symbol not required by role is
// resolved on a best-effort basis so a module implementing both roles still
// gets the extra method wired, but its absence is not an error.
func resolveSymbols(p *plugin.Plugin, role Role) (Module, error) {
	mf := moduleFuncs{}

	switch role {
	case RoleListener:
		listenSym, err := p.Lookup(SymbolListen)
		if err != nil {
			return nil, tapserr.New(tapserr.IncompleteModule, SymbolListen, err)
		}
		listen, ok := listenSym.(fnListen)
		if !ok {
			return nil, tapserr.New(tapserr.IncompleteModule, SymbolListen+" has wrong signature")
		}
		mf.listen = listen

		stopSym, err := p.Lookup(SymbolStop)
		if err != nil {
			return nil, tapserr.New(tapserr.IncompleteModule, SymbolStop, err)
		}
		stop, ok := stopSym.(fnStop)
		if !ok {
			return nil, tapserr.New(tapserr.IncompleteModule, SymbolStop+" has wrong signature")
		}
		mf.stop = stop
	case RoleInitiator:
		connectSym, err := p.Lookup(SymbolConnect)
		if err != nil {
			return nil, tapserr.New(tapserr.IncompleteModule, SymbolConnect, err)
		}
		connect, ok := connectSym.(fnConnect)
		if !ok {
			return nil, tapserr.New(tapserr.IncompleteModule, SymbolConnect+" has wrong signature")
		}
		mf.connect = connect
	}

	sendSym, err := p.Lookup(SymbolSend)
	if err != nil {
		return nil, tapserr.New(tapserr.IncompleteModule, SymbolSend, err)
	}
	send, ok := sendSym.(fnSend)
	if !ok {
		return nil, tapserr.New(tapserr.IncompleteModule, SymbolSend+" has wrong signature")
	}
	mf.send = send

	recvSym, err := p.Lookup(SymbolReceive)
	if err != nil {
		return nil, tapserr.New(tapserr.IncompleteModule, SymbolReceive, err)
	}
	receive, ok := recvSym.(fnReceive)
	if !ok {
		return nil, tapserr.New(tapserr.IncompleteModule, SymbolReceive+" has wrong signature")
	}
	mf.receive = receive

	// Opportunistically pick up the other role's entry point too, so a
	// module built for both roles (e.g. protocol/tcp) doesn't lose Listen
	// when first loaded as an initiator or vice versa.
	if role != RoleListener {
		if listenSym, err := p.Lookup(SymbolListen); err == nil {
			if listen, ok := listenSym.(fnListen); ok {
				mf.listen = listen
			}
		}
		if stopSym, err := p.Lookup(SymbolStop); err == nil {
			if stop, ok := stopSym.(fnStop); ok {
				mf.stop = stop
			}
		}
	}
	if role != RoleInitiator {
		if connectSym, err := p.Lookup(SymbolConnect); err == nil {
			if connect, ok := connectSym.(fnConnect); ok {
				mf.connect = connect
			}
		}
	}

	return mf, nil
}
