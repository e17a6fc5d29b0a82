package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), ".cwf", "cwf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createAction(t *testing.T, s *store.Store, a store.Action) store.Action {
	t.Helper()
	out, err := s.CreateAction(context.Background(), a)
	require.NoError(t, err)
	return out
}

func TestCreateAndGetAction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := createAction(t, s, store.Action{Title: "Fix leaking valve"})
	require.NotEmpty(t, created.ID)
	require.Equal(t, store.StatusTodo, created.Status)

	got, err := s.GetAction(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Fix leaking valve", got.Title)
	require.Empty(t, got.Policy)
}

func TestGetActionNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetAction(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateField_TextPatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := createAction(t, s, store.Action{Title: "Pump maintenance"})

	err := s.UpdateField(ctx, a.ID, store.TextPatch{Field: store.FieldPolicy, Value: "Replace pump"})
	require.NoError(t, err)

	got, err := s.GetAction(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Replace pump", got.Policy)
}

func TestUpdateField_FirstContentStartsWork(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := createAction(t, s, store.Action{Title: "Pump maintenance"})

	err := s.UpdateField(ctx, a.ID, store.TextPatch{Field: store.FieldPlan, Value: "Drain, swap, refill"})
	require.NoError(t, err)

	got, err := s.GetAction(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, store.StatusInProgress, got.Status, "first content should start the action")
}

func TestUpdateField_EmptyMarkupDoesNotStartWork(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := createAction(t, s, store.Action{Title: "Pump maintenance"})

	err := s.UpdateField(ctx, a.ID, store.TextPatch{Field: store.FieldPlan, Value: "<p></p>"})
	require.NoError(t, err)

	got, err := s.GetAction(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, store.StatusTodo, got.Status)
}

func TestUpdateField_TransitionIsOneDirectional(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := createAction(t, s, store.Action{Title: "Done already", Status: store.StatusDone})

	err := s.UpdateField(ctx, a.ID, store.TextPatch{Field: store.FieldObservations, Value: "Looks fine"})
	require.NoError(t, err)

	got, err := s.GetAction(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, store.StatusDone, got.Status, "content must never move status backwards")
}

func TestUpdateField_FirstTouchAssignmentRidesAlong(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := createAction(t, s, store.Action{Title: "Unassigned work"})

	err := s.UpdateField(ctx, a.ID,
		store.TextPatch{Field: store.FieldPolicy, Value: "Weekly check"},
		store.AssignPatch{Assignee: "rhodri"},
	)
	require.NoError(t, err)

	got, err := s.GetAction(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "rhodri", got.Assignee)
	require.Equal(t, "Weekly check", got.Policy)
	require.Equal(t, store.StatusInProgress, got.Status)
}

func TestUpdateField_RejectsUnknownField(t *testing.T) {
	s := openTestStore(t)
	a := createAction(t, s, store.Action{Title: "x"})

	err := s.UpdateField(context.Background(), a.ID, store.TextPatch{Field: "danger", Value: "v"})
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestUpdateField_RejectsEmptyPatchSet(t *testing.T) {
	s := openTestStore(t)
	a := createAction(t, s, store.Action{Title: "x"})

	err := s.UpdateField(context.Background(), a.ID)
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestUpdateField_NotFound(t *testing.T) {
	s := openTestStore(t)
	err := s.UpdateField(context.Background(), "missing",
		store.TextPatch{Field: store.FieldPolicy, Value: "v"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateField_StatusPatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := createAction(t, s, store.Action{Title: "x"})

	require.NoError(t, s.UpdateField(ctx, a.ID, store.StatusPatch{Status: store.StatusDone}))
	got, err := s.GetAction(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, store.StatusDone, got.Status)

	err = s.UpdateField(ctx, a.ID, store.StatusPatch{Status: "bogus"})
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestListActions_Filters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	createAction(t, s, store.Action{Title: "Grease bearings", Assignee: "mira"})
	createAction(t, s, store.Action{Title: "Replace pump seal", Assignee: "noor", Status: store.StatusInProgress})
	createAction(t, s, store.Action{Title: "Order pump spares", Assignee: "mira"})

	all, err := s.ListActions(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	mine, err := s.ListActions(ctx, store.Filter{Assignee: "mira"})
	require.NoError(t, err)
	require.Len(t, mine, 2)

	active, err := s.ListActions(ctx, store.Filter{Status: store.StatusInProgress})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "Replace pump seal", active[0].Title)

	pumps, err := s.ListActions(ctx, store.Filter{Search: "pump"})
	require.NoError(t, err)
	require.Len(t, pumps, 2)
}

func TestAssets_CreateAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateAsset(ctx, store.Asset{Name: "Impact wrench", Location: "Bay 2"})
	require.NoError(t, err)
	_, err = s.CreateAsset(ctx, store.Asset{Name: "Bearing grease", Kind: store.KindStock, Quantity: 12})
	require.NoError(t, err)

	assets, err := s.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	require.Equal(t, "Bearing grease", assets[0].Name, "assets are ordered by name")
	require.Equal(t, store.KindStock, assets[0].Kind)
	require.Equal(t, 12, assets[0].Quantity)
}

func TestExternalWriterVisible(t *testing.T) {
	// Two store handles on the same file model this client plus another
	// client writing concurrently.
	dir := t.TempDir()
	path := filepath.Join(dir, "cwf.db")

	ours, err := store.Open(path)
	require.NoError(t, err)
	defer func() { _ = ours.Close() }()

	theirs, err := store.Open(path)
	require.NoError(t, err)
	defer func() { _ = theirs.Close() }()

	ctx := context.Background()
	a, err := ours.CreateAction(ctx, store.Action{Title: "Shared action"})
	require.NoError(t, err)

	require.NoError(t, theirs.UpdateField(ctx, a.ID,
		store.TextPatch{Field: store.FieldPolicy, Value: "their edit"}))

	got, err := ours.GetAction(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "their edit", got.Policy)
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cwf.db")

	s, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = store.Open(path)
	var schemaErr *store.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, 99, schemaErr.Found)
	require.Equal(t, store.SchemaVersion, schemaErr.Supported)
}

func TestGetAsset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateAsset(ctx, store.Asset{Name: "Angle grinder", Location: "van 2"})
	require.NoError(t, err)

	got, err := s.GetAsset(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Angle grinder", got.Name)
	require.Equal(t, store.KindTool, got.Kind, "kind defaults to tool")
	require.Equal(t, "van 2", got.Location)

	_, err = s.GetAsset(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}
