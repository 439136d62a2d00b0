package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
)

func sampleSet(t *testing.T) *elements.Set {
	t.Helper()

	added := utc.Time{Time: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	deleted := utc.Time{Time: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)}

	return elements.NewSetOf(
		elements.Element{
			GlobalID:           "guid-a",
			Type:               elements.VirtualElement,
			Name:               "Void A",
			Description:        "wall penetration",
			Attributes:         map[string]string{"Tag": "T-1", "ObjectType": "ProvisionForVoid"},
			SpatialContainer:   "Level 1",
			SourceFile:         "hvac_r1.ifc",
			Lineage:            "hvac",
			FileTimestamp:      added,
			Status:             elements.StatusActive,
			ApprovalArchitect:  elements.ApprovalApproved,
			ApprovalStructural: elements.ApprovalPending,
			AddedAt:            added,
		},
		elements.Element{
			GlobalID:           "guid-b",
			Type:               elements.BuildingElementProxy,
			Name:               "Void B",
			SpatialContainer:   "Level 2",
			SourceFile:         "hvac_r1.ifc",
			Lineage:            "hvac",
			FileTimestamp:      added,
			Status:             elements.StatusDeleted,
			ApprovalArchitect:  elements.ApprovalRejected,
			ApprovalStructural: elements.ApprovalRejected,
			AddedAt:            added,
			DeletedAt:          &deleted,
		},
	)
}

// stores under test share one behavioral contract.
func openStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := Open(filepath.Join(t.TempDir(), "voidmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemory(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sampleSet(t)

			require.NoError(t, s.Save(ctx, want))

			got, err := s.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, want.Len(), got.Len())

			a, ok := got.Get("guid-a")
			require.True(t, ok)
			assert.Equal(t, elements.VirtualElement, a.Type)
			assert.Equal(t, "wall penetration", a.Description)
			assert.Equal(t, map[string]string{"Tag": "T-1", "ObjectType": "ProvisionForVoid"}, a.Attributes)
			assert.Equal(t, "Level 1", a.SpatialContainer)
			assert.Equal(t, elements.ApprovalApproved, a.ApprovalArchitect)
			assert.Equal(t, elements.StatusActive, a.Status)
			assert.Nil(t, a.DeletedAt)

			b, ok := got.Get("guid-b")
			require.True(t, ok)
			assert.Equal(t, elements.BuildingElementProxy, b.Type)
			assert.Equal(t, elements.StatusDeleted, b.Status)
			require.NotNil(t, b.DeletedAt)
			assert.True(t, b.DeletedAt.Equal(utc.Time{Time: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)}))
		})
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, sampleSet(t)))

			smaller := elements.NewSetOf(elements.Element{
				GlobalID: "guid-c",
				Type:     elements.VirtualElement,
				Name:     "Void C",
				Lineage:  "plumbing",
				Status:   elements.StatusNew,
			})
			require.NoError(t, s.Save(ctx, smaller))

			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, got.Len())
			assert.True(t, got.Has("guid-c"))
			assert.False(t, got.Has("guid-a"))
		})
	}
}

func TestStorePurgeDeleted(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, sampleSet(t)))

			purged, err := s.PurgeDeleted(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, purged)

			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.True(t, got.Has("guid-a"))
			assert.False(t, got.Has("guid-b"), "deleted rows are gone for good")

			purged, err = s.PurgeDeleted(ctx)
			require.NoError(t, err)
			assert.Zero(t, purged)
		})
	}
}

func TestSQLiteSnapshot(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "voidmap.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleSet(t)))

	snapPath := filepath.Join(dir, "snapshot.db")
	require.NoError(t, s.Snapshot(ctx, snapPath))

	// The snapshot is a full standalone database.
	snap, err := Open(snapPath)
	require.NoError(t, err)
	defer snap.Close()

	got, err := snap.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())

	// Refusing to clobber an existing file.
	err = s.Snapshot(ctx, snapPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voidmap.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), sampleSet(t)))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestMemoryFailNextSave(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Save(ctx, sampleSet(t)))

	m.FailNextSave = true
	err := m.Save(ctx, elements.NewSet())
	require.Error(t, err)
	assert.True(t, errors.IsStorageUnavailable(err))

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len(), "failed save leaves the previous state")
}
