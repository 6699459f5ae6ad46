package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/store"
)

func TestProductStore_ReturnsCopies(t *testing.T) {
	s := NewProductStore()
	ctx := context.Background()
	p := &models.Product{PartName: "Pump", PartNumber: map[string]string{"OEM": "1"}, Subimages: []string{"a"}}
	require.NoError(t, s.Insert(ctx, "waterpumps", p))

	got, err := s.Get(ctx, "waterpumps", p.ID.Hex())
	require.NoError(t, err)
	got.PartNumber["OEM"] = "changed"
	got.Subimages[0] = "changed"

	again, err := s.Get(ctx, "waterpumps", p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "1", again.PartNumber["OEM"])
	assert.Equal(t, "a", again.Subimages[0])
}

func TestProductStore_MaxRankAndSetRank(t *testing.T) {
	s := NewProductStore()
	ctx := context.Background()

	top, err := s.MaxRank(ctx, "waterpumps")
	require.NoError(t, err)
	assert.Equal(t, 0, top)

	p := &models.Product{PartName: "Pump", Rank: 4}
	require.NoError(t, s.Insert(ctx, "waterpumps", p))
	top, _ = s.MaxRank(ctx, "waterpumps")
	assert.Equal(t, 4, top)

	require.NoError(t, s.SetRank(ctx, "waterpumps", p.ID.Hex(), 9))
	top, _ = s.MaxRank(ctx, "waterpumps")
	assert.Equal(t, 9, top)

	assert.ErrorIs(t, s.SetRank(ctx, "otherparts", p.ID.Hex(), 1), store.ErrNotFound)
	assert.ErrorIs(t, s.SetRank(ctx, "waterpumps", "zzz", 1), store.ErrNotFound)
}

func TestUserStore_UniqueUsername(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	a, err := s.CreateUser(ctx, models.User{Username: "admin", Email: "a@example.com", Password: "h"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, models.User{Username: "admin", Email: "b@example.com", Password: "h"})
	assert.ErrorIs(t, err, store.ErrConflict)

	b, err := s.CreateUser(ctx, models.User{Username: "editor", Email: "e@example.com", Password: "h"})
	require.NoError(t, err)

	b.Username = "admin"
	_, err = s.UpdateUser(ctx, *b)
	assert.ErrorIs(t, err, store.ErrConflict)

	a.Email = "new@example.com"
	updated, err := s.UpdateUser(ctx, *a)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)

	byName, err := s.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byName.ID)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInquiryStore_NewestFirstWithFilter(t *testing.T) {
	s := NewInquiryStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, &models.Inquiry{Type: models.InquiryContactUs, Name: "old", CreatedAt: base}))
	require.NoError(t, s.Insert(ctx, &models.Inquiry{Type: models.InquiryProduct, Name: "mid", CreatedAt: base.Add(time.Hour)}))
	newest := &models.Inquiry{Type: models.InquiryContactUs, Name: "new", CreatedAt: base.Add(2 * time.Hour)}
	require.NoError(t, s.Insert(ctx, newest))

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].Name, all[1].Name, all[2].Name})

	contact, err := s.List(ctx, models.InquiryContactUs)
	require.NoError(t, err)
	assert.Len(t, contact, 2)

	require.NoError(t, s.Delete(ctx, newest.ID.Hex()))
	assert.ErrorIs(t, s.Delete(ctx, newest.ID.Hex()), store.ErrNotFound)
}
