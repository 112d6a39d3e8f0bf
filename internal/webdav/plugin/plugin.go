// Package plugin defines the extension hook contract authentication,
// locking, ACL, and principal plugins implement against (spec §1f).
// Plugins attach to the event bus at construction time and contribute to
// OPTIONS' Allow/DAV header negotiation; the core itself ships none.
package plugin

import "github.com/opencloud-eu/davcore/internal/webdav/events"

// Plugin is the contract every extension implements.
type Plugin interface {
	// Name identifies the plugin for logging and diagnostics.
	Name() string
	// Subscribe attaches the plugin's event handlers to bus. Called once,
	// at server construction, before the server accepts any request.
	Subscribe(bus *events.Bus)
	// HTTPMethods returns any additional HTTP methods this plugin makes
	// available on uri (e.g. LOCK/UNLOCK), folded into OPTIONS' Allow
	// header.
	HTTPMethods(uri string) []string
	// Features returns any DAV compliance-class tokens this plugin adds,
	// folded into OPTIONS' DAV header (e.g. "2" for a locking plugin).
	Features() []string
}

// Registry is an ordered, append-only collection of plugins. It is mutated
// only during server construction, before the server starts serving
// requests — matching spec §3's "mutated only during plugin registration
// (before listen)" invariant on process-wide state.
type Registry struct {
	plugins []Plugin
}

// Register appends p to the registry.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
}

// SubscribeAll attaches every registered plugin's handlers to bus, in
// registration order.
func (r *Registry) SubscribeAll(bus *events.Bus) {
	for _, p := range r.plugins {
		p.Subscribe(bus)
	}
}

// HTTPMethods collects the HTTP methods every registered plugin contributes
// for uri.
func (r *Registry) HTTPMethods(uri string) []string {
	var methods []string
	for _, p := range r.plugins {
		methods = append(methods, p.HTTPMethods(uri)...)
	}
	return methods
}

// Features collects the DAV compliance-class tokens every registered plugin
// contributes.
func (r *Registry) Features() []string {
	var features []string
	for _, p := range r.plugins {
		features = append(features, p.Features()...)
	}
	return features
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	return r.plugins
}
