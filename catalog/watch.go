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

package catalog

import (
	"github.com/fsnotify/fsnotify"

	"github.com/nabbar/taps-core/internal/obslog"
)

// Watcher drives repeated Provider.Update calls from filesystem change
// notifications, a library-level stand-in for the out-of-scope tapsd
// daemon: the daemon binary stays out of scope, but a reusable component
// it would embed to notice new/changed descriptor files is in scope.
type Watcher struct {
	dir      string
	provider *YAMLDirectory
	onUpdate func([]Descriptor)
	log      obslog.FuncLog

	watch *fsnotify.Watcher
	done  chan struct{}
}

// NewWatcher builds a Watcher over provider's directory. onUpdate is
// invoked (on the Watcher's own goroutine) after each successful Update
// triggered by a filesystem event.
func NewWatcher(provider *YAMLDirectory, onUpdate func([]Descriptor), log obslog.FuncLog) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err = w.Add(provider.Dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	return &Watcher{
		dir:      provider.Dir,
		provider: provider,
		onUpdate: onUpdate,
		log:      log,
		watch:    w,
		done:     make(chan struct{}),
	}, nil
}

// Run blocks, dispatching Update on every write/create/rename event until
// Close is called. Intended to run on its own goroutine; every onUpdate
// invocation should itself hand off to the application's event loop
// rather than touching shared state directly, per §5's single-threaded
// cooperative model.
func (w *Watcher) Run() {
	logger := obslog.Resolve(w.log)
	for {
		select {
		case ev, ok := <-w.watch.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			descs, err := w.provider.Update(0)
			if err != nil {
				logger.Warn("catalog reload failed", obslog.Fields{"dir": w.dir, "error": err.Error()})
				continue
			}
			if w.onUpdate != nil {
				w.onUpdate(descs)
			}
		case err, ok := <-w.watch.Errors:
			if !ok {
				return
			}
			logger.Warn("catalog watch error", obslog.Fields{"dir": w.dir, "error": err.Error()})
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher and releases the underlying inotify/kqueue
// handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watch.Close()
}
