package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceRepository(t *testing.T) {
	repo := NewPlaceRepository(newTestDB(t))
	ctx := context.Background()

	id, err := repo.CreatePlace(ctx, Place{
		Name:    "Club Cafe",
		Kind:    PlaceKindVenue,
		Address: "209 Columbus Ave",
		City:    "Boston",
		State:   "MA",
	})
	require.NoError(t, err)

	place, err := repo.GetPlace(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, place)
	assert.Equal(t, "Club Cafe", place.Name)
	assert.Equal(t, PlaceKindVenue, place.Kind)
	assert.Equal(t, "Boston", place.City)
	assert.NotEmpty(t, place.CreatedAt)

	missing, err := repo.GetPlace(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, err := repo.CountPlaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestScraperConfigRepository(t *testing.T) {
	db := newTestDB(t)
	places := NewPlaceRepository(db)
	repo := NewScraperConfigRepository(db)
	ctx := context.Background()

	placeID, err := places.CreatePlace(ctx, Place{Name: "Sonia", Kind: PlaceKindVenue})
	require.NoError(t, err)

	id, err := repo.CreateScraperConfig(ctx, ScraperConfig{
		PlaceID:      placeID,
		Scraper:      "dice",
		SearchString: "https://dice.fm/venue/sonia",
	})
	require.NoError(t, err)

	sc, err := repo.GetScraperConfig(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, sc)
	assert.Equal(t, placeID, sc.PlaceID)
	assert.Equal(t, "dice", sc.Scraper)

	missing, err := repo.GetScraperConfig(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	configs, err := repo.ListScraperConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)

	// The scraper column only admits known source kinds
	_, err = repo.CreateScraperConfig(ctx, ScraperConfig{
		PlaceID:      placeID,
		Scraper:      "eventbrite",
		SearchString: "whatever",
	})
	require.Error(t, err)
}
