package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine/memory"
	apperrors "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/errors"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/validator"
)

func TestCatalogService_SessionFilters_Lifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	got, err := svc.SessionFilters(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Defaults(), got)

	saved, err := svc.SaveSessionFilters(ctx, "sess-1", domain.FilterState{Query: " ankara ", MinRating: "4+", VerifiedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "ankara", saved.Query)
	assert.Equal(t, domain.All, saved.Category)
	assert.Equal(t, domain.SortFeatured, saved.Sort)

	got, err = svc.SessionFilters(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	require.NoError(t, svc.ClearSessionFilters(ctx, "sess-1"))
	got, err = svc.SessionFilters(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Defaults(), got)
}

func TestCatalogService_SessionFilters_Rejects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SessionFilters(ctx, "../etc")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.SaveSessionFilters(ctx, "sess-1", domain.FilterState{MinRating: "six+"})
	var ve *validator.ValidationError
	assert.ErrorAs(t, err, &ve)

	bare := NewCatalogService(Deps{Engine: memory.New(), Logger: discardLogger()})
	_, err = bare.SessionFilters(ctx, "sess-1")
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
	assert.True(t, errors.Is(bare.ClearSessionFilters(ctx, "sess-1"), apperrors.ErrServiceUnavail))
}
