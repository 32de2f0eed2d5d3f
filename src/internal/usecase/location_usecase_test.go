package usecase

import (
	"context"
	"errors"
	"testing"

	"booking-service/src/internal/model"
	httpError "booking-service/src/pkg/http-error"
	"booking-service/src/pkg/log"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLocations struct {
	at  map[string]model.Coordinates
	err error
}

func (m *memLocations) UpdateLocation(_ context.Context, workerID string, at model.Coordinates) error {
	if m.err != nil {
		return m.err
	}
	m.at[workerID] = at
	return nil
}

func TestUpdateLocation(t *testing.T) {
	store := &memLocations{at: map[string]model.Coordinates{}}
	uc := NewLocationUseCase(log.Discard(), validator.New(), store)
	ctx := context.Background()

	res := uc.UpdateLocation(ctx, &model.UpdateLocationRequest{Actor: worker, Latitude: 18.5, Longitude: 73.8})
	require.NoError(t, res.Error)
	assert.Equal(t, model.Coordinates{Latitude: 18.5, Longitude: 73.8}, store.at[worker.ID])

	res = uc.UpdateLocation(ctx, &model.UpdateLocationRequest{Actor: customer, Latitude: 18.5, Longitude: 73.8})
	assert.True(t, httpError.Is(res.Error, httpError.KindAuthorization))

	res = uc.UpdateLocation(ctx, &model.UpdateLocationRequest{Actor: worker, Latitude: 95, Longitude: 73.8})
	assert.True(t, httpError.Is(res.Error, httpError.KindValidation))

	store.err = errors.New("redis down")
	res = uc.UpdateLocation(ctx, &model.UpdateLocationRequest{Actor: worker, Latitude: 18.5, Longitude: 73.8})
	assert.True(t, httpError.Is(res.Error, httpError.KindExternalService))

	res = NewLocationUseCase(log.Discard(), validator.New(), nil).
		UpdateLocation(ctx, &model.UpdateLocationRequest{Actor: worker, Latitude: 1, Longitude: 1})
	assert.True(t, httpError.Is(res.Error, httpError.KindExternalService))
}
