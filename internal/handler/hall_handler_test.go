package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
)

type hallServiceMock struct {
	filter models.HallFilter
}

func (m *hallServiceMock) List(_ context.Context, filter models.HallFilter) ([]models.Hall, error) {
	m.filter = filter
	return []models.Hall{}, nil
}

func (m *hallServiceMock) Get(_ context.Context, id string) (*models.Hall, error) {
	return &models.Hall{ID: id}, nil
}

func (m *hallServiceMock) Create(context.Context, models.Actor, dto.HallRequest) (*models.Hall, error) {
	return &models.Hall{}, nil
}

func (m *hallServiceMock) Update(_ context.Context, _ models.Actor, id string, _ dto.HallRequest) (*models.Hall, error) {
	return &models.Hall{ID: id}, nil
}

func (m *hallServiceMock) Deactivate(context.Context, models.Actor, string) error {
	return nil
}

type availabilityMock struct {
	hallID, month, date string
}

func (m *availabilityMock) Calendar(_ context.Context, _ models.Actor, hallID, month string) (*models.HallCalendar, error) {
	m.hallID, m.month = hallID, month
	return &models.HallCalendar{}, nil
}

func (m *availabilityMock) Slots(_ context.Context, _ models.Actor, hallID, date string) (*models.DaySlots, error) {
	m.hallID, m.date = hallID, date
	return &models.DaySlots{}, nil
}

func TestHallHandlerListParsesActive(t *testing.T) {
	halls := &hallServiceMock{}
	handler := NewHallHandler(halls, &availabilityMock{})

	c, rec := newTestContext(http.MethodGet, "/halls?institution_id=inst-1&active=true", nil)
	handler.List(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "inst-1", halls.filter.InstitutionID)
	require.NotNil(t, halls.filter.Active)
	assert.True(t, *halls.filter.Active)

	c, rec = newTestContext(http.MethodGet, "/halls?active=maybe", nil)
	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHallHandlerAvailabilityRequiresMonth(t *testing.T) {
	avail := &availabilityMock{}
	handler := NewHallHandler(&hallServiceMock{}, avail)

	c, rec := newTestContext(http.MethodGet, "/halls/h1/availability", nil)
	handler.Availability(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/halls/h1/availability?month=2024-05", deptClaims)
	c.Params = append(c.Params, ginParam("id", "h1"))
	handler.Availability(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "h1", avail.hallID)
	assert.Equal(t, "2024-05", avail.month)
}

func TestHallHandlerSlots(t *testing.T) {
	avail := &availabilityMock{}
	handler := NewHallHandler(&hallServiceMock{}, avail)

	c, rec := newTestContext(http.MethodGet, "/halls/h1/slots?date=2024-05-02", deptClaims)
	c.Params = append(c.Params, ginParam("id", "h1"))
	handler.Slots(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-05-02", avail.date)
}

func TestHallHandlerSlotsRequiresClaims(t *testing.T) {
	handler := NewHallHandler(&hallServiceMock{}, &availabilityMock{})

	c, rec := newTestContext(http.MethodGet, "/halls/h1/slots?date=2024-05-02", nil)
	handler.Slots(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
