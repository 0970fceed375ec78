package module

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/wardengo/internal/ctxlog"
	"github.com/vk/wardengo/internal/fsutil"
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/registry"
	"github.com/vk/wardengo/internal/route"
	"github.com/zclconf/go-cty/cty"
)

// routeSubdirs are the conventional filing locations for route files.
var routeSubdirs = []string{"commands", "components", "events", "tasks"}

const defaultDebounce = 250 * time.Millisecond

// Record is one module's load-state bookkeeping. It survives Unload, so
// the generation keeps climbing across load cycles.
type Record struct {
	Name        string
	Path        string
	Description string
	Loaded      bool
	LoadedAt    time.Time
	// Generation counts loads of this module. The routes of each load are
	// stamped with it, so sets from different cycles are distinguishable.
	Generation int
	Routes     int
	Settings   map[string]cty.Value
}

// MiddlewareSource answers whether a named middleware exists, so route
// files referencing unknown names are caught at load time instead of at
// dispatch.
type MiddlewareSource interface {
	Has(name string) bool
}

// Option tunes a Loader.
type Option func(*Loader)

// WithMiddlewares makes loading reject route files that reference unknown
// middleware names.
func WithMiddlewares(src MiddlewareSource) Option {
	return func(l *Loader) { l.middlewares = src }
}

// WithDebounce overrides how long the watcher waits after the last file
// event before reloading a module.
func WithDebounce(d time.Duration) Option {
	return func(l *Loader) { l.debounce = d }
}

// Loader discovers modules under one root directory, parses their route
// files and moves the resulting sets in and out of the registry.
type Loader struct {
	root        string
	registry    *registry.Registry
	handlers    *handler.Registry
	middlewares MiddlewareSource
	debounce    time.Duration

	mu       sync.RWMutex
	records  map[string]*Record
	onReload []func(name string)
}

// New creates a Loader rooted at root.
func New(root string, reg *registry.Registry, handlers *handler.Registry, opts ...Option) *Loader {
	l := &Loader{
		root:     root,
		registry: reg,
		handlers: handlers,
		debounce: defaultDebounce,
		records:  make(map[string]*Record),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discover lists the immediate subdirectories of the modules root,
// sorted. A missing root is an empty result, not an error: a bot running
// purely on compiled-in defaults has no modules directory.
func (l *Loader) Discover(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			ctxlog.FromContext(ctx).Warn("Modules root does not exist; nothing to discover.", "path", l.root)
			return nil, nil
		}
		return nil, fmt.Errorf("reading modules root %s: %w", l.root, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Load parses one module's directory and registers its routes as a single
// batch. Loading a module that is already live returns a
// DuplicateModuleError.
func (l *Loader) Load(ctx context.Context, name string) error {
	l.mu.RLock()
	rec := l.records[name]
	if rec != nil && rec.Loaded {
		l.mu.RUnlock()
		return &DuplicateModuleError{Name: name}
	}
	gen := 1
	if rec != nil {
		gen = rec.Generation + 1
	}
	l.mu.RUnlock()

	file, desc, settings, err := l.parseModule(ctx, name, gen)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Re-check: another goroutine may have loaded it while we parsed.
	if rec := l.records[name]; rec != nil && rec.Loaded {
		return &DuplicateModuleError{Name: name}
	}
	if err := l.registry.Register(file); err != nil {
		return fmt.Errorf("registering module %q: %w", name, err)
	}
	l.records[name] = &Record{
		Name:        name,
		Path:        filepath.Join(l.root, name),
		Description: desc,
		Loaded:      true,
		LoadedAt:    time.Now(),
		Generation:  gen,
		Routes:      file.Len(),
		Settings:    settings,
	}

	ctxlog.FromContext(ctx).Info("Module loaded.", "module", name, "routes", file.Len(), "generation", gen)
	return nil
}

// LoadAll discovers and loads every module under the root. A module that
// fails to load is logged and skipped; the others still come up. The
// returned names are the modules that made it.
func (l *Loader) LoadAll(ctx context.Context) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	names, err := l.Discover(ctx)
	if err != nil {
		return nil, err
	}

	var loaded []string
	for _, name := range names {
		if err := l.Load(ctx, name); err != nil {
			logger.Error("Failed to load module.", "module", name, "error", err)
			continue
		}
		loaded = append(loaded, name)
	}
	return loaded, nil
}

// Unload removes every route the module owns from the registry. The
// record survives with Loaded false so a later load continues the
// generation sequence.
func (l *Loader) Unload(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.records[name]
	if rec == nil || !rec.Loaded {
		return &NotLoadedError{Name: name}
	}

	removed := l.registry.UnregisterModule(name)
	rec.Loaded = false
	rec.Routes = 0
	rec.Settings = nil

	ctxlog.FromContext(ctx).Info("Module unloaded.", "module", name, "routes_removed", removed)
	return nil
}

// Reload re-reads the module from disk and swaps the new route set in
// atomically: lookups observe the complete old set or the complete new
// one, never a mix. A failed parse or a collision leaves the old set
// fully live and the generation untouched.
func (l *Loader) Reload(ctx context.Context, name string) error {
	l.mu.RLock()
	rec := l.records[name]
	if rec == nil || !rec.Loaded {
		l.mu.RUnlock()
		return &NotLoadedError{Name: name}
	}
	gen := rec.Generation + 1
	l.mu.RUnlock()

	// Parse outside the lock; the old set keeps serving while we read
	// disk.
	file, desc, settings, err := l.parseModule(ctx, name, gen)
	if err != nil {
		return fmt.Errorf("reloading module %q: %w", name, err)
	}

	l.mu.Lock()
	rec = l.records[name]
	if rec == nil || !rec.Loaded {
		l.mu.Unlock()
		return &NotLoadedError{Name: name}
	}
	if err := l.registry.ReplaceModule(name, file); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("reloading module %q: %w", name, err)
	}
	rec.Generation = gen
	rec.LoadedAt = time.Now()
	rec.Routes = file.Len()
	rec.Description = desc
	rec.Settings = settings
	l.mu.Unlock()

	ctxlog.FromContext(ctx).Info("Module reloaded.", "module", name, "routes", file.Len(), "generation", gen)
	l.notifyReload(name)
	return nil
}

// OnReload registers a callback fired after every successful reload.
// Registration is wiring-time; callbacks run outside the loader's lock.
func (l *Loader) OnReload(fn func(name string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onReload = append(l.onReload, fn)
}

func (l *Loader) notifyReload(name string) {
	l.mu.RLock()
	subs := make([]func(string), len(l.onReload))
	copy(subs, l.onReload)
	l.mu.RUnlock()

	for _, fn := range subs {
		fn(name)
	}
}

// Record returns a copy of one module's bookkeeping.
func (l *Loader) Record(name string) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec := l.records[name]
	if rec == nil {
		return Record{}, false
	}
	return l.copyRecordLocked(rec), true
}

// Records returns a copy of every module record, sorted by name.
func (l *Loader) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, l.copyRecordLocked(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Settings returns a copy of a loaded module's manifest settings, nil for
// unknown or unloaded modules.
func (l *Loader) Settings(name string) map[string]cty.Value {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec := l.records[name]
	if rec == nil || !rec.Loaded || rec.Settings == nil {
		return nil
	}
	return copySettings(rec.Settings)
}

func (l *Loader) copyRecordLocked(rec *Record) Record {
	out := *rec
	out.Settings = copySettings(rec.Settings)
	return out
}

func copySettings(in map[string]cty.Value) map[string]cty.Value {
	if in == nil {
		return nil
	}
	out := make(map[string]cty.Value, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// parseModule reads one module directory into a single route batch.
// Broken route files are logged and skipped; the rest of the module still
// parses. A broken manifest fails the whole parse.
func (l *Loader) parseModule(ctx context.Context, name string, gen int) (*route.File, string, map[string]cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	dir := filepath.Join(l.root, name)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, "", nil, fmt.Errorf("module %q: %w", name, err)
	}
	if !info.IsDir() {
		return nil, "", nil, fmt.Errorf("module %q: %s is not a directory", name, dir)
	}

	// A fresh parser per parse: hclparse caches file bodies by path, and a
	// reload must read what is on disk now, not what the last generation
	// read.
	parser := hclparse.NewParser()

	desc, settings, err := loadManifest(dir, parser)
	if err != nil {
		return nil, "", nil, err
	}

	meta := route.Meta{Module: name, Generation: gen}
	merged := &route.File{}
	claimed := make(map[string]struct{})

	for _, sub := range routeSubdirs {
		subdir := filepath.Join(dir, sub)
		if _, err := os.Stat(subdir); os.IsNotExist(err) {
			// The split is a filing convention, not a requirement.
			continue
		}
		paths, err := fsutil.FindFilesByExtension(subdir, ".hcl")
		if err != nil {
			return nil, "", nil, fmt.Errorf("scanning %s: %w", subdir, err)
		}
		for _, path := range paths {
			file, err := route.LoadFile(path, meta, parser)
			if err != nil {
				logger.Warn("Skipping broken route file.", "module", name, "file", path, "error", err)
				continue
			}
			if err := l.checkFile(file, claimed); err != nil {
				logger.Warn("Skipping route file.", "module", name, "file", path, "error", err)
				continue
			}
			merged.Merge(file)
		}
	}

	return merged, desc, settings, nil
}

// checkFile runs the cross-file checks one route file must pass before it
// joins the module's batch: its handler references exist in Go, its
// middleware names are registered, and its route keys collide neither
// with each other nor with an earlier file of the module. Keys are
// claimed only when the whole file passes, so a rejected file cannot
// block a later good one.
func (l *Loader) checkFile(file *route.File, claimed map[string]struct{}) error {
	for _, ref := range file.Handlers() {
		if _, ok := l.handlers.Lookup(ref); !ok {
			return fmt.Errorf("route references handler %q, but no Go handler with that name is registered", ref)
		}
	}
	if l.middlewares != nil {
		for _, name := range middlewareNames(file) {
			if !l.middlewares.Has(name) {
				return fmt.Errorf("route references middleware %q, but none with that name is registered", name)
			}
		}
	}

	keys := fileKeys(file)
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%s declared twice in one file", key)
		}
		seen[key] = struct{}{}
		if _, dup := claimed[key]; dup {
			return fmt.Errorf("%s is already declared by an earlier file of this module", key)
		}
	}
	for key := range seen {
		claimed[key] = struct{}{}
	}
	return nil
}

// fileKeys mirrors the registry's uniqueness namespaces.
func fileKeys(file *route.File) []string {
	var keys []string
	for _, c := range file.Commands {
		keys = append(keys, "command "+c.Name)
	}
	for _, c := range file.Components {
		keys = append(keys, string(c.Type)+" pattern "+c.Source)
	}
	for _, e := range file.Events {
		keys = append(keys, "event route "+e.Name)
	}
	for _, t := range file.Tasks {
		keys = append(keys, "task "+t.Name)
	}
	return keys
}

// middlewareNames collects the distinct middleware names a file's routes
// reference, in first-appearance order.
func middlewareNames(file *route.File) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(names []string) {
		for _, n := range names {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	for _, c := range file.Commands {
		add(c.Middlewares)
		for _, sub := range c.Subcommands {
			add(sub.Middlewares)
		}
	}
	for _, c := range file.Components {
		add(c.Middlewares)
	}
	return out
}
