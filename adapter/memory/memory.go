// Package memory implements an in-memory adapter. Documents live in
// insertion order per model and are copied on the way in and out, so
// callers never share state with the store.
//
//	a := memory.New(memory.WithSeed("book", adapter.Entity{"_id": "b1", "title": "Dune"}))
//	p, err := harmony.New(models, harmony.WithAdapter("memory", a))
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jvdsande/harmony"
	"github.com/jvdsande/harmony/adapter"
	"github.com/jvdsande/harmony/adapter/filter"
	"github.com/jvdsande/harmony/contrib/dataloader"
)

// Adapter stores documents in memory. It is safe for concurrent use.
type Adapter struct {
	mu     sync.RWMutex
	docs   map[string][]adapter.Entity
	events adapter.Events
	logger *slog.Logger
	newID  func() string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithSeed stores docs for model before initialization. Documents without
// an _id get one.
func WithSeed(model string, docs ...adapter.Entity) Option {
	return func(a *Adapter) {
		for _, d := range docs {
			d = adapter.Clone(d)
			if d["_id"] == nil {
				d["_id"] = a.newID()
			}
			a.docs[model] = append(a.docs[model], d)
		}
	}
}

// WithIDGenerator sets the function generating the _id of new documents.
// Defaults to random UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(a *Adapter) { a.newID = fn }
}

// New returns an empty adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		docs:   make(map[string][]adapter.Entity),
		events: adapter.NopEvents{},
		logger: slog.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Initialize registers the collections of p.Models.
func (a *Adapter) Initialize(_ context.Context, p adapter.InitParams) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p.Events != nil {
		a.events = p.Events
	}
	if p.Logger != nil {
		a.logger = p.Logger
	}
	for _, m := range p.Models {
		if _, ok := a.docs[m.Name]; !ok {
			a.docs[m.Name] = nil
		}
	}
	a.logger.Info("memory adapter initialized", "models", len(p.Models))
	return nil
}

// Close is a no-op; stored documents are kept.
func (a *Adapter) Close(context.Context) error { return nil }

// find returns copies of the documents of model matching the filter
// argument of p, sorted by its sort argument.
func (a *Adapter) find(p adapter.Params) ([]adapter.Entity, error) {
	q, err := filter.Sanitize(p.Filter())
	if err != nil {
		return nil, harmony.NewValidationError("filter", err)
	}
	keys, err := filter.SortKeys(p.Sort())
	if err != nil {
		return nil, harmony.NewValidationError("sort", err)
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []adapter.Entity
	for _, d := range a.docs[p.Model] {
		ok, err := filter.Match(q, d)
		if err != nil {
			return nil, harmony.NewValidationError("filter", err)
		}
		if ok {
			out = append(out, adapter.Clone(d))
		}
	}
	filter.Sort(out, keys)
	return out, nil
}

// Read returns the first matching document after skip, or nil.
func (a *Adapter) Read(_ context.Context, p adapter.Params) (adapter.Entity, error) {
	docs, err := a.find(p)
	if err != nil {
		return nil, err
	}
	docs = filter.Page(docs, p.Skip(), 1)
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// ReadMany returns the matching documents in the skip and limit window.
func (a *Adapter) ReadMany(_ context.Context, p adapter.Params) ([]adapter.Entity, error) {
	docs, err := a.find(p)
	if err != nil {
		return nil, err
	}
	return nonNil(filter.Page(docs, p.Skip(), p.Limit())), nil
}

// Count returns the number of matching documents.
func (a *Adapter) Count(_ context.Context, p adapter.Params) (int, error) {
	docs, err := a.find(p)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Create stores the record argument.
func (a *Adapter) Create(ctx context.Context, p adapter.Params) (adapter.Entity, error) {
	record, err := p.Record()
	if err != nil {
		return nil, harmony.NewValidationError("record", err)
	}
	doc, err := a.insert(p.Model, record)
	if err != nil {
		return nil, err
	}
	a.events.Updated(ctx, p.Model, doc)
	return doc, nil
}

// CreateMany stores every record. It stops at the first failure.
func (a *Adapter) CreateMany(ctx context.Context, p adapter.Params) ([]adapter.Entity, error) {
	records, err := p.Records()
	if err != nil {
		return nil, harmony.NewValidationError("records", err)
	}
	out := make([]adapter.Entity, 0, len(records))
	for _, r := range records {
		doc, err := a.insert(p.Model, r)
		if err != nil {
			return out, err
		}
		a.events.Updated(ctx, p.Model, doc)
		out = append(out, doc)
	}
	return out, nil
}

func (a *Adapter) insert(model string, record adapter.Entity) (adapter.Entity, error) {
	doc := adapter.Clone(record)
	a.mu.Lock()
	defer a.mu.Unlock()
	if doc["_id"] == nil {
		doc["_id"] = a.newID()
	} else if a.index(model, doc["_id"]) >= 0 {
		return nil, harmony.NewConstraintError(fmt.Sprintf("%s %v already exists", model, doc["_id"]), nil)
	}
	a.docs[model] = append(a.docs[model], doc)
	return adapter.Clone(doc), nil
}

// Update merges the record argument into the document with the same _id.
// Null fields are removed.
func (a *Adapter) Update(ctx context.Context, p adapter.Params) (adapter.Entity, error) {
	record, err := p.Record()
	if err != nil {
		return nil, harmony.NewValidationError("record", err)
	}
	doc, err := a.update(p.Model, record)
	if err != nil {
		return nil, err
	}
	a.events.Updated(ctx, p.Model, doc)
	return doc, nil
}

// UpdateMany updates every record. It stops at the first failure.
func (a *Adapter) UpdateMany(ctx context.Context, p adapter.Params) ([]adapter.Entity, error) {
	records, err := p.Records()
	if err != nil {
		return nil, harmony.NewValidationError("records", err)
	}
	out := make([]adapter.Entity, 0, len(records))
	for _, r := range records {
		doc, err := a.update(p.Model, r)
		if err != nil {
			return out, err
		}
		a.events.Updated(ctx, p.Model, doc)
		out = append(out, doc)
	}
	return out, nil
}

func (a *Adapter) update(model string, record adapter.Entity) (adapter.Entity, error) {
	id := record["_id"]
	if id == nil {
		return nil, harmony.NewValidationError("record._id", fmt.Errorf("%s update requires an _id", model))
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.index(model, id)
	if i < 0 {
		return nil, harmony.NewNotFoundError(model, id)
	}
	doc := a.docs[model][i]
	for k, v := range adapter.Clone(record) {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
	return adapter.Clone(doc), nil
}

// Delete removes the document with the _id argument and returns it.
func (a *Adapter) Delete(ctx context.Context, p adapter.Params) (adapter.Entity, error) {
	id, err := p.ID()
	if err != nil {
		return nil, harmony.NewValidationError("_id", err)
	}
	doc := a.remove(p.Model, id)
	if doc == nil {
		return nil, harmony.NewNotFoundError(p.Model, id)
	}
	a.events.Removed(ctx, p.Model, doc)
	return doc, nil
}

// DeleteMany removes the documents of the _ids argument. Unknown ids are
// skipped.
func (a *Adapter) DeleteMany(ctx context.Context, p adapter.Params) ([]adapter.Entity, error) {
	ids, err := p.IDs()
	if err != nil {
		return nil, harmony.NewValidationError("_ids", err)
	}
	out := make([]adapter.Entity, 0, len(ids))
	for _, id := range ids {
		if doc := a.remove(p.Model, id); doc != nil {
			a.events.Removed(ctx, p.Model, doc)
			out = append(out, doc)
		}
	}
	return out, nil
}

func (a *Adapter) remove(model string, id any) adapter.Entity {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.index(model, id)
	if i < 0 {
		return nil
	}
	doc := a.docs[model][i]
	a.docs[model] = append(a.docs[model][:i], a.docs[model][i+1:]...)
	return doc
}

// index returns the position of the document with _id id. The caller holds
// the lock.
func (a *Adapter) index(model string, id any) int {
	key := dataloader.Key(id)
	for i, d := range a.docs[model] {
		if dataloader.Key(d["_id"]) == key {
			return i
		}
	}
	return -1
}

// ResolveRef returns the first document referenced from p.Source.
func (a *Adapter) ResolveRef(ctx context.Context, p adapter.RefParams) (adapter.Entity, error) {
	docs, err := a.ResolveRefs(ctx, p)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

// ResolveRefs returns the documents of p.Model whose p.ForeignFieldName
// matches the p.FieldName value of p.Source. A list value matches any of
// its elements and keeps their order.
func (a *Adapter) ResolveRefs(ctx context.Context, p adapter.RefParams) ([]adapter.Entity, error) {
	value := p.Value()
	if value == nil {
		return []adapter.Entity{}, nil
	}
	if keys, ok := value.([]any); ok {
		docs, err := a.ResolveBatch(ctx, adapter.BatchParams{Model: p.Model, FieldName: p.ForeignFieldName, Keys: keys})
		if err != nil {
			return nil, err
		}
		out := make([]adapter.Entity, 0, len(docs))
		for _, d := range docs {
			if d != nil {
				out = append(out, d)
			}
		}
		return out, nil
	}
	docs, err := a.find(adapter.Params{
		Model: p.Model,
		Args:  map[string]any{"filter": map[string]any{p.ForeignFieldName: value}},
	})
	if err != nil {
		return nil, err
	}
	return nonNil(docs), nil
}

// ResolveBatch returns, for each key, the first document whose
// p.FieldName equals it, or nil.
func (a *Adapter) ResolveBatch(_ context.Context, p adapter.BatchParams) ([]adapter.Entity, error) {
	a.mu.RLock()
	var found []adapter.Entity
	want := make(map[string]bool, len(p.Keys))
	for _, k := range p.Keys {
		want[dataloader.Key(k)] = true
	}
	for _, d := range a.docs[p.Model] {
		if want[dataloader.Key(d[p.FieldName])] {
			found = append(found, adapter.Clone(d))
		}
	}
	a.mu.RUnlock()
	return dataloader.OrderByKeysNoError(dataloader.Keys(p.Keys), found, func(d adapter.Entity) string {
		return dataloader.Key(d[p.FieldName])
	}), nil
}

func nonNil(docs []adapter.Entity) []adapter.Entity {
	if docs == nil {
		return []adapter.Entity{}
	}
	return docs
}

var _ adapter.Adapter = (*Adapter)(nil)
