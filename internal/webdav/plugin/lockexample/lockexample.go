// Package lockexample is a minimal demonstration of the plugin contract: a
// class-2-flavored LOCK/UNLOCK pair that vetoes writes and unbinds against a
// locked resource. Locking itself is named an external concern in spec §1;
// this plugin exists to exercise plugin.Plugin end to end, not as a
// production lock manager — a real deployment brings its own token store
// instead of the in-memory map here.
package lockexample

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/opencloud-eu/davcore/internal/webdav/events"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

// Plugin is a single-depth, exclusive-write lock manager keyed by
// server-relative path. The zero value is ready to use.
type Plugin struct {
	mu    sync.Mutex
	locks map[string]string // path -> opaque lock token
}

// New returns an empty Plugin.
func New() *Plugin {
	return &Plugin{locks: map[string]string{}}
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return "lockexample" }

// HTTPMethods implements plugin.Plugin.
func (p *Plugin) HTTPMethods(uri string) []string {
	return []string{"LOCK", "UNLOCK"}
}

// Features implements plugin.Plugin.
func (p *Plugin) Features() []string {
	return []string{"2"}
}

// Lock acquires an exclusive lock on path and returns its token. It fails if
// path is already locked.
func (p *Plugin) Lock(path string) (token string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, locked := p.locks[path]; locked {
		return "", errtypes.Locked(fmt.Sprintf("%s is already locked", path))
	}
	if p.locks == nil {
		p.locks = map[string]string{}
	}
	token = "opaquelocktoken:" + uuid.NewString()
	p.locks[path] = token
	return token, nil
}

// Unlock releases the lock on path if token matches its current holder.
func (p *Plugin) Unlock(path, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	current, locked := p.locks[path]
	if !locked {
		return errtypes.Conflict(fmt.Sprintf("%s is not locked", path))
	}
	if current != token {
		return errtypes.Forbidden("lock token does not match")
	}
	delete(p.locks, path)
	return nil
}

func (p *Plugin) isLocked(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, locked := p.locks[path]
	return locked
}

// Subscribe implements plugin.Plugin: it vetoes beforeWriteContent and
// beforeUnbind against any path currently locked.
func (p *Plugin) Subscribe(bus *events.Bus) {
	veto := func(ctx context.Context, args ...any) (bool, error) {
		if len(args) == 0 {
			return false, nil
		}
		path, ok := args[0].(string)
		if !ok {
			return false, nil
		}
		if p.isLocked(path) {
			return false, errtypes.Locked(fmt.Sprintf("%s is locked", path))
		}
		return false, nil
	}
	bus.On(events.BeforeWriteContent, veto)
	bus.On(events.BeforeUnbind, veto)
}
