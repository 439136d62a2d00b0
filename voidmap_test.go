package voidmap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildstation/voidmap/internal/ifc"
	"github.com/buildstation/voidmap/internal/store"
	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
	"github.com/buildstation/voidmap/pkg/reconciler"
)

const revision1 = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'2;1');
FILE_NAME('hvac.ifc','2025-03-01T10:00:00',('author'),('org'),'preproc','tool','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#2=IFCOWNERHISTORY($,$,$,.ADDED.,$,$,$,1709280000);
#3=IFCBUILDINGSTOREY('0Bspl8Hkv0fQ3BB1oTAUSN',#2,'Level 1',$,$,$,$,$,.ELEMENT.,0.);
#4=IFCVIRTUALELEMENT('1kTvXnbbzCWw8lcMd1dR4o',#2,'Void A','wall sleeve','ProvisionForVoid',$,$,'T-1');
#5=IFCBUILDINGELEMENTPROXY('0EvVH4yDf5egsLyQpSeGdr',#2,'Void B',$,$,$,$,'T-2',.NOTDEFINED.);
#6=IFCRELCONTAINEDINSPATIALSTRUCTURE('3Jq7PLFfHB9viUSp1Vkrak',#2,$,$,(#4,#5),#3);
ENDSEC;
END-ISO-10303-21;
`

// revision2 drops Void B and renames Void A.
const revision2 = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'2;1');
FILE_NAME('hvac.ifc','2025-03-08T10:00:00',('author'),('org'),'preproc','tool','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#2=IFCOWNERHISTORY($,$,$,.ADDED.,$,$,$,1709280000);
#3=IFCBUILDINGSTOREY('0Bspl8Hkv0fQ3BB1oTAUSN',#2,'Level 1',$,$,$,$,$,.ELEMENT.,0.);
#4=IFCVIRTUALELEMENT('1kTvXnbbzCWw8lcMd1dR4o',#2,'Void A, widened','wall sleeve','ProvisionForVoid',$,$,'T-1');
#6=IFCRELCONTAINEDINSPATIALSTRUCTURE('3Jq7PLFfHB9viUSp1Vkrak',#2,$,$,(#4),#3);
ENDSEC;
END-ISO-10303-21;
`

func writeRevision(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTracker(t *testing.T, opts ...Option) Voidmap {
	t.Helper()
	vm, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = vm.Close() })
	return vm
}

func TestIngestLifecycle(t *testing.T) {
	t.Parallel()

	vm := newTracker(t)
	ctx := context.Background()

	var added, updated, removed []string
	vm.OnElementAdded(func(e elements.Element) { added = append(added, e.GlobalID) })
	vm.OnElementUpdated(func(_, e elements.Element) { updated = append(updated, e.GlobalID) })
	vm.OnElementRemoved(func(e elements.Element) { removed = append(removed, e.GlobalID) })

	r1, err := vm.Ingest(ctx, writeRevision(t, "hvac_r1.ifc", revision1), "hvac")
	require.NoError(t, err)
	assert.Len(t, r1.Changeset.Added, 2)
	assert.ElementsMatch(t, []string{"1kTvXnbbzCWw8lcMd1dR4o", "0EvVH4yDf5egsLyQpSeGdr"}, added)

	// Approve Void A before the next revision lands.
	n, err := vm.Approve(ctx, elements.RoleArchitect, elements.ApprovalApproved, "1kTvXnbbzCWw8lcMd1dR4o")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	r2, err := vm.Ingest(ctx, writeRevision(t, "hvac_r2.ifc", revision2), "hvac")
	require.NoError(t, err)
	assert.Len(t, r2.Changeset.Updated, 1)
	assert.Len(t, r2.Changeset.Removed, 1)
	assert.Equal(t, []string{"1kTvXnbbzCWw8lcMd1dR4o"}, updated)
	assert.Equal(t, []string{"0EvVH4yDf5egsLyQpSeGdr"}, removed)

	// Approval survived the content update.
	a, err := vm.Element(ctx, "1kTvXnbbzCWw8lcMd1dR4o")
	require.NoError(t, err)
	assert.Equal(t, "Void A, widened", a.Name)
	assert.Equal(t, elements.ApprovalApproved, a.ApprovalArchitect)
	assert.Equal(t, elements.StatusActive, a.Status)

	// Void B is retired, not erased.
	b, err := vm.Element(ctx, "0EvVH4yDf5egsLyQpSeGdr")
	require.NoError(t, err)
	assert.Equal(t, elements.StatusDeleted, b.Status)
	require.NotNil(t, b.DeletedAt)

	// An older revision is rejected outright.
	_, err = vm.Ingest(ctx, writeRevision(t, "hvac_r0.ifc", revision1), "hvac")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestReconcileBatchAtomicCommit(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	vm := newTracker(t, WithStore(mem))
	ctx := context.Background()

	hookFired := false
	vm.OnElementAdded(func(elements.Element) { hookFired = true })

	mem.FailNextSave = true
	_, err := vm.ReconcileBatch(ctx, &reconciler.Batch{
		Lineage: "hvac",
		Elements: []elements.Element{{
			GlobalID: "guid-a", Type: elements.VirtualElement, Name: "Void A",
		}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsStorageUnavailable(err))
	assert.False(t, hookFired, "hooks fire only after a committed save")

	set, err := vm.Elements(ctx)
	require.NoError(t, err)
	assert.Zero(t, set.Len(), "failed commit leaves the population untouched")
}

func TestResurrectionHook(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := utc.Time{Time: t0}
	vm := newTracker(t, WithNow(func() utc.Time { return clock }))
	ctx := context.Background()

	batch := func(ts time.Time, ids ...string) *reconciler.Batch {
		b := &reconciler.Batch{Lineage: "hvac", Timestamp: utc.Time{Time: ts}}
		for _, id := range ids {
			b.Elements = append(b.Elements, elements.Element{
				GlobalID: id, Type: elements.VirtualElement, Name: "Void " + id,
			})
		}
		return b
	}

	var resurrected []string
	vm.OnElementResurrected(func(e elements.Element) { resurrected = append(resurrected, e.GlobalID) })

	_, err := vm.ReconcileBatch(ctx, batch(t0, "guid-a"))
	require.NoError(t, err)

	clock = utc.Time{Time: t0.Add(time.Hour)}
	_, err = vm.ReconcileBatch(ctx, batch(t0.Add(time.Hour)))
	require.NoError(t, err)

	clock = utc.Time{Time: t0.Add(2 * time.Hour)}
	_, err = vm.ReconcileBatch(ctx, batch(t0.Add(2*time.Hour), "guid-a"))
	require.NoError(t, err)

	assert.Equal(t, []string{"guid-a"}, resurrected)
}

func TestPurgeDeleted(t *testing.T) {
	t.Parallel()

	vm := newTracker(t)
	ctx := context.Background()

	_, err := vm.Ingest(ctx, writeRevision(t, "hvac_r1.ifc", revision1), "hvac")
	require.NoError(t, err)
	_, err = vm.Ingest(ctx, writeRevision(t, "hvac_r2.ifc", revision2), "hvac")
	require.NoError(t, err)

	purged, err := vm.PurgeDeleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = vm.Element(ctx, "0EvVH4yDf5egsLyQpSeGdr")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestWritebackRoundTrip(t *testing.T) {
	t.Parallel()

	vm := newTracker(t)
	ctx := context.Background()

	src := writeRevision(t, "hvac_r1.ifc", revision1)
	_, err := vm.Ingest(ctx, src, "hvac")
	require.NoError(t, err)
	_, err = vm.Approve(ctx, elements.RoleStructural, elements.ApprovalApproved, "1kTvXnbbzCWw8lcMd1dR4o")
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "annotated.ifc")
	result, err := vm.Writeback(ctx, src, dst, ifc.WritebackConfig{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Annotated)

	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "'Pset_VoidTracking'")
	assert.Contains(t, string(raw), "IFCLABEL('approved')")
}

func TestApproveUnknownElement(t *testing.T) {
	t.Parallel()

	vm := newTracker(t)
	_, err := vm.Approve(context.Background(), elements.RoleArchitect, elements.ApprovalApproved, "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
