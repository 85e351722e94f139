package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/archboard/pkg/buildinfo"
	"github.com/matzehuels/archboard/pkg/observability"
)

func TestHooks(t *testing.T) {
	ctx := context.Background()
	h := Hooks{}

	before := testutil.ToFloat64(MutationsTotal.WithLabelValues("add_node"))
	h.OnMutation(ctx, "add_node", 5, 2)
	if got := testutil.ToFloat64(MutationsTotal.WithLabelValues("add_node")); got != before+1 {
		t.Errorf("mutations = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(Nodes); got != 5 {
		t.Errorf("nodes gauge = %v, want 5", got)
	}
	if got := testutil.ToFloat64(Edges); got != 2 {
		t.Errorf("edges gauge = %v, want 2", got)
	}

	failed := testutil.ToFloat64(ExportsTotal.WithLabelValues("png", "error"))
	h.OnExport(ctx, "png", time.Millisecond, errors.New("boom"))
	if got := testutil.ToFloat64(ExportsTotal.WithLabelValues("png", "error")); got != failed+1 {
		t.Errorf("failed exports = %v, want %v", got, failed+1)
	}

	restored := testutil.ToFloat64(LoadsTotal.WithLabelValues("restored"))
	h.OnLoad(ctx, "restored")
	if got := testutil.ToFloat64(LoadsTotal.WithLabelValues("restored")); got != restored+1 {
		t.Errorf("loads = %v, want %v", got, restored+1)
	}

	h.OnSave(ctx, 512, time.Millisecond, nil)
	if got := testutil.ToFloat64(SaveBytes); got != 512 {
		t.Errorf("save bytes = %v, want 512", got)
	}
	errs := testutil.ToFloat64(SavesTotal.WithLabelValues("error"))
	h.OnSave(ctx, 1024, time.Millisecond, errors.New("disk full"))
	if got := testutil.ToFloat64(SavesTotal.WithLabelValues("error")); got != errs+1 {
		t.Errorf("save errors = %v, want %v", got, errs+1)
	}
	if got := testutil.ToFloat64(SaveBytes); got != 512 {
		t.Errorf("failed save changed save bytes to %v", got)
	}
}

func TestInstall(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	Install()
	if _, ok := observability.Editor().(Hooks); !ok {
		t.Errorf("Editor() = %T, want Hooks", observability.Editor())
	}
	if _, ok := observability.Store().(Hooks); !ok {
		t.Errorf("Store() = %T, want Hooks", observability.Store())
	}
	if got := testutil.ToFloat64(BuildInfo.WithLabelValues(buildinfo.Version, buildinfo.Commit)); got != 1 {
		t.Errorf("build_info = %v, want 1", got)
	}
}
