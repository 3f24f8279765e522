package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestReviewLifecycle(t *testing.T) {
	r := newRepo(t)
	svc := &ReviewService{Repo: r}
	ctx := context.Background()

	ann := testutil.User(t, r.DB, "ann@example.com", models.RoleUser)
	bob := testutil.User(t, r.DB, "bob@example.com", models.RoleUser)
	lamp := testutil.Product(t, r.DB, "Lamp", "30", 5)

	rating := func() (float64, int) {
		var p models.Product
		require.NoError(t, r.DB.First(&p, "id = ?", lamp.ID).Error)
		return p.RatingAvg, p.RatingCount
	}

	first, err := svc.Create(ctx, ann.ID, transport.ReviewRequest{Text: "bright", Rating: 4, ProductID: lamp.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, transport.ReviewRequest{Text: "dim", Rating: 2, ProductID: lamp.ID})
	require.NoError(t, err)

	avg, n := rating()
	assert.InDelta(t, 3.0, avg, 1e-9)
	assert.Equal(t, 2, n)

	_, err = svc.Create(ctx, ann.ID, transport.ReviewRequest{Text: "again", Rating: 5, ProductID: lamp.ID})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Create(ctx, ann.ID, transport.ReviewRequest{Text: "ghost", Rating: 5, ProductID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)

	five := 5
	_, err = svc.Update(ctx, bob.ID, first.ID, transport.PatchReviewRequest{Rating: &five})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, ann.ID, first.ID, transport.PatchReviewRequest{Rating: &five})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "bright", updated.Text)
	avg, _ = rating()
	assert.InDelta(t, 3.5, avg, 1e-9)

	assert.ErrorIs(t, svc.Delete(ctx, bob.ID, false, first.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, bob.ID, true, first.ID))
	avg, n = rating()
	assert.InDelta(t, 2.0, avg, 1e-9)
	assert.Equal(t, 1, n)

	page, err := svc.List(ctx, url.Values{"product_id": {lamp.ID.String()}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Meta.Total)
	assert.Len(t, page.Data, 1)
}
