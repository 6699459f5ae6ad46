package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Purav2003/epimech-admin/internal/apperr"
	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/store/memory"
)

func newTestService() *Service {
	return NewService(memory.NewProductStore())
}

func mustCreate(t *testing.T, svc *Service, cat Category, name string) *models.Product {
	t.Helper()
	p, err := svc.Create(context.Background(), cat, models.ProductInput{PartName: name})
	require.NoError(t, err)
	return p
}

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.PartName
	}
	return out
}

func TestCreate_AppendsRank(t *testing.T) {
	svc := newTestService()

	first := mustCreate(t, svc, Waterpump, "Pump A")
	assert.Equal(t, 1, first.Rank)
	assert.False(t, first.IsHide)
	assert.False(t, first.ID.IsZero())

	second := mustCreate(t, svc, Waterpump, "Pump B")
	assert.Equal(t, 2, second.Rank)

	// Categories rank independently.
	other := mustCreate(t, svc, OtherParts, "Gasket")
	assert.Equal(t, 1, other.Rank)
}

func TestReorder_PositionBecomesRank(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a := mustCreate(t, svc, Waterpump, "A")
	b := mustCreate(t, svc, Waterpump, "B")
	c := mustCreate(t, svc, Waterpump, "C")

	// Client-sent ranks are stale and ignored.
	err := svc.Reorder(ctx, Waterpump, []models.RankItem{
		{ID: c.ID.Hex(), Rank: 3},
		{ID: a.ID.Hex(), Rank: 1},
		{ID: b.ID.Hex(), Rank: 2},
	})
	require.NoError(t, err)

	list, err := svc.List(ctx, Waterpump, models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, names(list))
	assert.Equal(t, []int{1, 2, 3}, []int{list[0].Rank, list[1].Rank, list[2].Rank})
}

func TestReorder_DeletedItemFailsGracefully(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a := mustCreate(t, svc, Waterpump, "A")
	b := mustCreate(t, svc, Waterpump, "B")
	require.NoError(t, svc.Delete(ctx, Waterpump, a.ID.Hex()))

	list, err := svc.List(ctx, Waterpump, models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, names(list))

	err = svc.Reorder(ctx, Waterpump, []models.RankItem{{ID: b.ID.Hex()}, {ID: a.ID.Hex()}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// The surviving update was still applied.
	got, err := svc.Get(ctx, Waterpump, b.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Rank)
}

func TestReorder_MalformedID(t *testing.T) {
	svc := newTestService()
	err := svc.Reorder(context.Background(), Waterpump, []models.RankItem{{ID: "not-an-object-id"}})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestReorder_DuplicateID(t *testing.T) {
	svc := newTestService()
	a := mustCreate(t, svc, Waterpump, "A")
	err := svc.Reorder(context.Background(), Waterpump, []models.RankItem{{ID: a.ID.Hex()}, {ID: a.ID.Hex()}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestReorder_ScopedToCategory(t *testing.T) {
	svc := newTestService()
	pump := mustCreate(t, svc, Waterpump, "Pump")

	err := svc.Reorder(context.Background(), OtherParts, []models.RankItem{{ID: pump.ID.Hex()}})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

type failingRanks struct {
	*memory.ProductStore
	mu    sync.Mutex
	fail  string
	calls int
}

func (f *failingRanks) SetRank(ctx context.Context, col, id string, rank int) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if id == f.fail {
		return errors.New("write timeout")
	}
	return f.ProductStore.SetRank(ctx, col, id, rank)
}

func TestReorder_StoreFailureAttemptsAll(t *testing.T) {
	base := memory.NewProductStore()
	seed := NewService(base)
	a := mustCreate(t, seed, Waterpump, "A")
	b := mustCreate(t, seed, Waterpump, "B")
	c := mustCreate(t, seed, Waterpump, "C")

	fs := &failingRanks{ProductStore: base, fail: a.ID.Hex()}
	svc := NewService(fs)

	err := svc.Reorder(context.Background(), Waterpump, []models.RankItem{{ID: c.ID.Hex()}, {ID: a.ID.Hex()}, {ID: b.ID.Hex()}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Equal(t, 3, fs.calls)

	got, err := svc.Get(context.Background(), Waterpump, b.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rank, "committed updates are not rolled back")
}

func TestSetHidden_TwiceRestores(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	orig := mustCreate(t, svc, OtherParts, "Seal")

	hidden, err := svc.SetHidden(ctx, OtherParts, orig.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, hidden.IsHide)

	shown, err := svc.SetHidden(ctx, OtherParts, orig.ID.Hex(), false)
	require.NoError(t, err)

	assert.Equal(t, orig.ID, shown.ID)
	assert.Equal(t, orig.PartName, shown.PartName)
	assert.Equal(t, orig.Rank, shown.Rank)
	assert.Equal(t, orig.IsHide, shown.IsHide)
	assert.Equal(t, orig.Image, shown.Image)
	assert.Equal(t, orig.Subimages, shown.Subimages)
	assert.Equal(t, orig.PartNumber, shown.PartNumber)
}

func TestList_FiltersAndSearch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, Waterpump, "Centrifugal Pump")
	sub := mustCreate(t, svc, Waterpump, "Submersible PUMP")
	mustCreate(t, svc, Waterpump, "Impeller")
	_, err := svc.SetHidden(ctx, Waterpump, sub.ID.Hex(), true)
	require.NoError(t, err)

	list, err := svc.List(ctx, Waterpump, models.ProductFilter{Search: "pump"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Centrifugal Pump", "Submersible PUMP"}, names(list))

	list, err = svc.List(ctx, Waterpump, models.ProductFilter{VisibleOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Centrifugal Pump", "Impeller"}, names(list))

	empty, err := svc.List(ctx, OtherParts, models.ProductFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdate_Partial(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p, err := svc.Create(ctx, Waterpump, models.ProductInput{
		PartName:   "Pump",
		Image:      "https://cdn.example.com/pump.jpg",
		PartNumber: map[string]string{"OEM": "P-1"},
	})
	require.NoError(t, err)

	name := "Pump Mk2"
	svc.now = func() time.Time { return p.UpdatedAt.Add(time.Minute) }
	got, err := svc.Update(ctx, Waterpump, p.ID.Hex(), models.ProductPatch{PartName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Pump Mk2", got.PartName)
	assert.Equal(t, p.Image, got.Image)
	assert.Equal(t, p.PartNumber, got.PartNumber)
	assert.Equal(t, p.Rank, got.Rank)
	assert.True(t, got.UpdatedAt.After(p.UpdatedAt))

	_, err = svc.Update(ctx, Waterpump, p.ID.Hex(), models.ProductPatch{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	blank := "  "
	_, err = svc.Update(ctx, Waterpump, p.ID.Hex(), models.ProductPatch{PartName: &blank})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDelete_Missing(t *testing.T) {
	svc := newTestService()
	err := svc.Delete(context.Background(), Waterpump, "65f000000000000000000000")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
