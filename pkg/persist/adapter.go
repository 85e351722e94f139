package persist

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archboard/pkg/diagram"
	errs "github.com/matzehuels/archboard/pkg/errors"
	"github.com/matzehuels/archboard/pkg/observability"
	"github.com/matzehuels/archboard/pkg/store"
)

// DefaultKey is the store key the diagram is autosaved under.
const DefaultKey = "archboard:diagram"

// Outcome classifies the result of [Adapter.Load].
type Outcome int

const (
	// OutcomeRestored means the stored diagram was read back.
	OutcomeRestored Outcome = iota
	// OutcomeDefault means nothing usable was stored: the key was absent
	// or held a corrupt document.
	OutcomeDefault
	// OutcomeFallback means the store itself failed.
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRestored:
		return "restored"
	case OutcomeDefault:
		return "default"
	case OutcomeFallback:
		return "fallback"
	}
	return "unknown"
}

// LoadResult is the outcome of load-on-start. Diagram is never nil. Err
// carries the STORAGE_CORRUPT or STORAGE_UNREADABLE reason when the
// starter diagram was substituted; it is informational only.
type LoadResult struct {
	Diagram *diagram.Diagram
	Outcome Outcome
	Err     error
}

// Adapter persists a diagram under one key of a store.
type Adapter struct {
	Store  store.Store
	Key    string
	Logger *log.Logger
}

// NewAdapter returns an adapter for s using [DefaultKey]. A nil logger
// falls back to log.Default().
func NewAdapter(s store.Store, logger *log.Logger) *Adapter {
	return &Adapter{Store: s, Key: DefaultKey, Logger: logger}
}

func (a *Adapter) key() string {
	if a.Key == "" {
		return DefaultKey
	}
	return a.Key
}

func (a *Adapter) logger() *log.Logger {
	if a.Logger == nil {
		return log.Default()
	}
	return a.Logger
}

// Load reads the stored diagram. It never fails: an absent key, a corrupt
// document or a store error yields the starter diagram.
func (a *Adapter) Load(ctx context.Context) LoadResult {
	res := a.load(ctx)
	observability.Store().OnLoad(ctx, res.Outcome.String())

	logger := a.logger()
	switch {
	case res.Err != nil:
		logger.Warn("using starter diagram", "key", a.key(), "outcome", res.Outcome, "code", errs.GetCode(res.Err), "err", res.Err)
	case res.Outcome == OutcomeDefault:
		logger.Debug("no stored diagram, using starter diagram", "key", a.key())
	default:
		logger.Debug("restored diagram", "key", a.key(), "nodes", len(res.Diagram.Nodes), "edges", len(res.Diagram.Edges))
	}
	return res
}

func (a *Adapter) load(ctx context.Context) LoadResult {
	if a.Store == nil {
		return LoadResult{Diagram: diagram.NewStarter(""), Outcome: OutcomeDefault}
	}

	data, ok, err := a.Store.Get(ctx, a.key())
	if err != nil {
		code := errs.ErrCodeStorageUnreadable
		outcome := OutcomeFallback
		if errors.Is(err, store.ErrCorrupt) {
			code, outcome = errs.ErrCodeStorageCorrupt, OutcomeDefault
		}
		return LoadResult{
			Diagram: diagram.NewStarter(""),
			Outcome: outcome,
			Err:     errs.Wrap(code, err, "read %s", a.key()),
		}
	}
	if !ok {
		return LoadResult{Diagram: diagram.NewStarter(""), Outcome: OutcomeDefault}
	}

	d, err := Unmarshal(data)
	if err != nil {
		return LoadResult{
			Diagram: diagram.NewStarter(""),
			Outcome: OutcomeDefault,
			Err:     errs.Wrap(errs.ErrCodeStorageCorrupt, err, "decode %s", a.key()),
		}
	}
	return LoadResult{Diagram: d, Outcome: OutcomeRestored}
}

// Save writes d under the adapter's key. Failures are returned coded
// STORAGE_UNWRITABLE; callers log them and carry on.
func (a *Adapter) Save(ctx context.Context, d *diagram.Diagram) error {
	start := time.Now()
	data, err := Marshal(d)
	if err == nil && a.Store != nil {
		err = a.Store.Set(ctx, a.key(), data)
	}
	observability.Store().OnSave(ctx, len(data), time.Since(start), err)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorageUnwritable, err, "write %s", a.key())
	}
	return nil
}

// Clear removes the stored diagram.
func (a *Adapter) Clear(ctx context.Context) error {
	if a.Store == nil {
		return nil
	}
	if err := a.Store.Delete(ctx, a.key()); err != nil {
		return errs.Wrap(errs.ErrCodeStorageUnwritable, err, "delete %s", a.key())
	}
	return nil
}
