package reconciler

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
	"github.com/buildstation/voidmap/pkg/logging"
)

func fixedClock(t time.Time) func() utc.Time {
	return func() utc.Time { return utc.Time{Time: t} }
}

func testBatch(lineage string, ts time.Time, elems ...elements.Element) *Batch {
	return &Batch{
		Lineage:    lineage,
		SourceFile: lineage + "_r1.ifc",
		Timestamp:  utc.Time{Time: ts},
		Elements:   elems,
	}
}

func virtualElement(id, name string) elements.Element {
	return elements.Element{
		GlobalID:         id,
		Type:             elements.VirtualElement,
		Name:             name,
		SpatialContainer: "Level 1",
		Attributes:       map[string]string{"Tag": "T-" + id},
	}
}

func TestReconcileFirstBatch(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r, err := New(WithNow(fixedClock(t0)))
	require.NoError(t, err)

	batch := testBatch("hvac", t0,
		virtualElement("guid-a", "Void A"),
		virtualElement("guid-b", "Void B"),
	)

	result, err := r.Reconcile(context.Background(), elements.NewSet(), batch)
	require.NoError(t, err)

	assert.Len(t, result.Changeset.Added, 2)
	assert.Empty(t, result.Changeset.Updated)
	assert.Empty(t, result.Changeset.Removed)
	assert.Equal(t, 2, result.Set.Len())

	a, ok := result.Set.Get("guid-a")
	require.True(t, ok)
	assert.Equal(t, elements.StatusNew, a.Status)
	assert.Equal(t, elements.ApprovalPending, a.ApprovalArchitect)
	assert.Equal(t, elements.ApprovalPending, a.ApprovalStructural)
	assert.Equal(t, t0, a.AddedAt.Time)
	assert.Nil(t, a.DeletedAt)
	assert.Equal(t, "hvac", a.Lineage)
	assert.Equal(t, "hvac_r1.ifc", a.SourceFile)
}

func TestReconcileIdempotent(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r, err := New(WithNow(fixedClock(t0)))
	require.NoError(t, err)

	batch := testBatch("hvac", t0, virtualElement("guid-a", "Void A"))

	first, err := r.Reconcile(context.Background(), elements.NewSet(), batch)
	require.NoError(t, err)

	second, err := r.Reconcile(context.Background(), first.Set, batch)
	require.NoError(t, err)

	assert.Empty(t, second.Changeset.Added)
	assert.Empty(t, second.Changeset.Updated)
	assert.Empty(t, second.Changeset.Removed)
	assert.Len(t, second.Changeset.Unchanged, 1)
	assert.Empty(t, second.Resurrected)

	// The second pass acknowledges the new element as active.
	a, ok := second.Set.Get("guid-a")
	require.True(t, ok)
	assert.Equal(t, elements.StatusActive, a.Status)
	assert.Equal(t, t0, a.AddedAt.Time)

	third, err := r.Reconcile(context.Background(), second.Set, batch)
	require.NoError(t, err)
	assert.False(t, third.HasChanges())
}

func TestReconcilePreservesApprovals(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)
	r, err := New(WithNow(fixedClock(t1)))
	require.NoError(t, err)

	persisted := virtualElement("guid-a", "Void A")
	persisted.Status = elements.StatusActive
	persisted.Lineage = "hvac"
	persisted.FileTimestamp = utc.Time{Time: t0}
	persisted.AddedAt = utc.Time{Time: t0}
	persisted.ApprovalArchitect = elements.ApprovalApproved
	persisted.ApprovalStructural = elements.ApprovalRejected

	// The incoming revision renames the element and carries no
	// approval state of its own.
	incoming := virtualElement("guid-a", "Void A, widened")

	result, err := r.Reconcile(context.Background(),
		elements.NewSetOf(persisted), testBatch("hvac", t1, incoming))
	require.NoError(t, err)

	require.Len(t, result.Changeset.Updated, 1)
	merged, ok := result.Set.Get("guid-a")
	require.True(t, ok)
	assert.Equal(t, "Void A, widened", merged.Name)
	assert.Equal(t, elements.ApprovalApproved, merged.ApprovalArchitect)
	assert.Equal(t, elements.ApprovalRejected, merged.ApprovalStructural)
	assert.Equal(t, t0, merged.AddedAt.Time, "AddedAt survives updates")
	assert.Equal(t, t1, merged.FileTimestamp.Time)
}

func TestReconcileRetiresAbsentSameLineage(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	r, err := New(WithNow(fixedClock(t1)))
	require.NoError(t, err)

	keep := virtualElement("guid-a", "Void A")
	keep.Status = elements.StatusActive
	keep.Lineage = "hvac"
	keep.FileTimestamp = utc.Time{Time: t0}

	gone := virtualElement("guid-b", "Void B")
	gone.Status = elements.StatusActive
	gone.Lineage = "hvac"
	gone.FileTimestamp = utc.Time{Time: t0}
	gone.ApprovalArchitect = elements.ApprovalApproved

	other := virtualElement("guid-c", "Void C")
	other.Status = elements.StatusActive
	other.Lineage = "plumbing"
	other.FileTimestamp = utc.Time{Time: t0}

	result, err := r.Reconcile(context.Background(),
		elements.NewSetOf(keep, gone, other),
		testBatch("hvac", t1, virtualElement("guid-a", "Void A")))
	require.NoError(t, err)

	require.Len(t, result.Changeset.Removed, 1)
	assert.Equal(t, "guid-b", result.Changeset.Removed[0].GlobalID)

	retired, ok := result.Set.Get("guid-b")
	require.True(t, ok, "retired elements are kept, not erased")
	assert.Equal(t, elements.StatusDeleted, retired.Status)
	require.NotNil(t, retired.DeletedAt)
	assert.Equal(t, t1, retired.DeletedAt.Time)
	assert.Equal(t, elements.ApprovalApproved, retired.ApprovalArchitect,
		"approvals survive retirement")

	// Another lineage's elements are out of scope for deletion.
	untouched, ok := result.Set.Get("guid-c")
	require.True(t, ok)
	assert.Equal(t, elements.StatusActive, untouched.Status)
}

func TestReconcileDeletedStaysDeleted(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	r, err := New(WithNow(fixedClock(t1)))
	require.NoError(t, err)

	deletedAt := utc.Time{Time: t0}
	dead := virtualElement("guid-b", "Void B")
	dead.Status = elements.StatusDeleted
	dead.Lineage = "hvac"
	dead.FileTimestamp = utc.Time{Time: t0}
	dead.DeletedAt = &deletedAt

	result, err := r.Reconcile(context.Background(),
		elements.NewSetOf(dead),
		testBatch("hvac", t1, virtualElement("guid-a", "Void A")))
	require.NoError(t, err)

	assert.Empty(t, result.Changeset.Removed,
		"an already deleted element is not retired again")
	still, ok := result.Set.Get("guid-b")
	require.True(t, ok)
	require.NotNil(t, still.DeletedAt)
	assert.Equal(t, t0, still.DeletedAt.Time, "DeletedAt keeps its original stamp")
}

func TestReconcileResurrection(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	r, err := New(WithNow(fixedClock(t1)))
	require.NoError(t, err)

	deletedAt := utc.Time{Time: t0}
	dead := virtualElement("guid-a", "Void A")
	dead.Status = elements.StatusDeleted
	dead.Lineage = "hvac"
	dead.FileTimestamp = utc.Time{Time: t0}
	dead.AddedAt = utc.Time{Time: t0}
	dead.DeletedAt = &deletedAt
	dead.ApprovalArchitect = elements.ApprovalApproved

	result, err := r.Reconcile(context.Background(),
		elements.NewSetOf(dead),
		testBatch("hvac", t1, virtualElement("guid-a", "Void A")))
	require.NoError(t, err)

	assert.Equal(t, []string{"guid-a"}, result.Resurrected)
	assert.True(t, result.HasChanges())

	back, ok := result.Set.Get("guid-a")
	require.True(t, ok)
	assert.Equal(t, elements.StatusActive, back.Status)
	assert.Nil(t, back.DeletedAt)
	assert.Equal(t, elements.ApprovalApproved, back.ApprovalArchitect,
		"approvals survive the delete/resurrect round trip")
	assert.Equal(t, t0, back.AddedAt.Time)
}

func TestReconcileDuplicateIDLastWins(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r, err := New(WithNow(fixedClock(t0)))
	require.NoError(t, err)

	first := virtualElement("guid-a", "Void A")
	second := virtualElement("guid-a", "Void A, revised")

	result, err := r.Reconcile(context.Background(), elements.NewSet(),
		testBatch("hvac", t0, first, second))
	require.NoError(t, err)

	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "guid-a", result.Conflicts[0].GlobalID)
	assert.Equal(t, 2, result.Conflicts[0].Count)
	assert.True(t, result.Conflicts[0].Divergent)

	assert.Equal(t, 1, result.Set.Len())
	kept, ok := result.Set.Get("guid-a")
	require.True(t, ok)
	assert.Equal(t, "Void A, revised", kept.Name)
}

func TestReconcileRejectsStaleRevision(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r, err := New(WithNow(fixedClock(t0)))
	require.NoError(t, err)

	persisted := virtualElement("guid-a", "Void A")
	persisted.Status = elements.StatusActive
	persisted.Lineage = "hvac"
	persisted.FileTimestamp = utc.Time{Time: t0}

	_, err = r.Reconcile(context.Background(),
		elements.NewSetOf(persisted),
		testBatch("hvac", t0.Add(-time.Hour), virtualElement("guid-a", "Void A")))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	// The newest persisted revision wins the comparison, not the
	// first one seen: a batch older than guid-a but newer than guid-b
	// is still stale.
	older := virtualElement("guid-b", "Void B")
	older.Status = elements.StatusActive
	older.Lineage = "hvac"
	older.FileTimestamp = utc.Time{Time: t0.Add(-2 * time.Hour)}

	_, err = r.Reconcile(context.Background(),
		elements.NewSetOf(older, persisted),
		testBatch("hvac", t0.Add(-time.Hour), virtualElement("guid-a", "Void A")))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	// A stale revision in a different lineage is fine.
	_, err = r.Reconcile(context.Background(),
		elements.NewSetOf(persisted),
		testBatch("plumbing", t0.Add(-time.Hour), virtualElement("guid-z", "Void Z")))
	require.NoError(t, err)
}

func TestReconcileValidation(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)

	_, err = r.Reconcile(context.Background(), elements.NewSet(),
		&Batch{Elements: []elements.Element{virtualElement("guid-a", "Void A")}})
	require.Error(t, err, "lineage is required")
	assert.True(t, errors.IsValidationError(err))

	bad := virtualElement("", "No ID")
	_, err = r.Reconcile(context.Background(), elements.NewSet(),
		testBatch("hvac", time.Now(), bad))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestReconcileCanceledContext(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Reconcile(ctx, elements.NewSet(),
		testBatch("hvac", time.Now(), virtualElement("guid-a", "Void A")))
	assert.ErrorIs(t, err, errors.ErrCanceled)
}

func TestReconcileDoesNotMutatePersisted(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	r, err := New(WithNow(fixedClock(t1)))
	require.NoError(t, err)

	existing := virtualElement("guid-a", "Void A")
	existing.Status = elements.StatusActive
	existing.Lineage = "hvac"
	existing.FileTimestamp = utc.Time{Time: t0}
	persisted := elements.NewSetOf(existing)

	_, err = r.Reconcile(context.Background(), persisted,
		testBatch("hvac", t1, virtualElement("guid-a", "Void A, revised")))
	require.NoError(t, err)

	before, ok := persisted.Get("guid-a")
	require.True(t, ok)
	assert.Equal(t, "Void A", before.Name, "caller's set is untouched")
}

func TestResolverDropsUnknownAttributes(t *testing.T) {
	// Not parallel: lowers the zerolog global level to observe the
	// debug line.
	old := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(old) })

	e := virtualElement("guid-a", "Void A")
	e.Attributes["NotInSchema"] = "x"

	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)
	ctx := logging.WithLogger(context.Background(), &logger)

	resolver := NewResolver(nil)
	resolved, conflicts, err := resolver.Resolve(ctx, []elements.Element{e})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	require.Len(t, resolved, 1)
	assert.NotContains(t, resolved[0].Attributes, "NotInSchema")
	assert.Contains(t, resolved[0].Attributes, "Tag")
	assert.Contains(t, logs.String(), "NotInSchema", "dropped keys are logged")
}
