package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/booking-engine/internal/domain"
	bookingRepo "github.com/bookline/booking-engine/internal/infra/storage/booking"
	"github.com/bookline/booking-engine/internal/infra/stream"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*domain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*domain.Booking)}
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	for _, b := range f.bookings {
		if b.TenantID == booking.TenantID && b.ClientGeneratedID == booking.ClientGeneratedID {
			return nil, bookingRepo.ErrClientGeneratedIDTaken
		}
		if b.TenantID == booking.TenantID && b.ResourceID == booking.ResourceID &&
			b.IsActive() && b.Overlaps(booking.StartAt, booking.EndAt) {
			return nil, bookingRepo.ErrTimeRangeConflict
		}
	}

	stored := *booking
	stored.CreatedAt = time.Now()
	f.bookings[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeBookingRepo) GetByIDForUpdate(_ context.Context, tenantID int64, id uuid.UUID) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok || b.TenantID != tenantID {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) GetByClientGeneratedID(_ context.Context, tenantID int64, clientGeneratedID string) (*domain.Booking, error) {
	for _, b := range f.bookings {
		if b.TenantID == tenantID && b.ClientGeneratedID == clientGeneratedID {
			return b, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (f *fakeBookingRepo) UpdateLifecycle(_ context.Context, booking *domain.Booking) error {
	if _, ok := f.bookings[booking.ID]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

type fakePublisher struct {
	events []stream.BookingEvent
}

func (f *fakePublisher) Publish(_ context.Context, event stream.BookingEvent) error {
	f.events = append(f.events, event)
	return nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func seedBooking(repo *fakeBookingRepo, status domain.BookingStatus) *domain.Booking {
	b := &domain.Booking{
		ID:                uuid.New(),
		TenantID:          1,
		ClientGeneratedID: "original-key",
		CustomerID:        100,
		ResourceID:        10,
		ServiceID:         5,
		StartAt:           time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC),
		EndAt:             time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC),
		BookingTZ:         "Europe/Berlin",
		Status:            status,
		AttendeeCount:     1,
		AmountCents:       10000,
		FinalAmountCents:  8000,
	}
	repo.bookings[b.ID] = b
	return b
}

func newTestUseCase(repo *fakeBookingRepo, publisher *fakePublisher) *UseCase {
	uc := NewUseCase(repo, publisher, passthroughTxManager{}, nopLogger{}, nil)
	uc.timeProvider = fixedTime{now: time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)}
	return uc
}

func rescheduleRequest(bookingID uuid.UUID) *Request {
	return &Request{
		TenantID:          1,
		BookingID:         bookingID,
		StartAt:           time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		EndAt:             time.Date(2026, 4, 2, 11, 0, 0, 0, time.UTC),
		ClientGeneratedID: "reschedule-key",
	}
}

func TestExecute_Success(t *testing.T) {
	repo := newFakeBookingRepo()
	publisher := &fakePublisher{}
	uc := newTestUseCase(repo, publisher)
	original := seedBooking(repo, domain.StatusConfirmed)

	resp, err := uc.Execute(context.Background(), rescheduleRequest(original.ID))
	require.NoError(t, err)

	assert.Equal(t, original.ID, resp.RescheduledFrom)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.False(t, resp.Replayed)

	// старое отменено, таймзона и суммы унаследованы
	old := repo.bookings[original.ID]
	assert.Equal(t, domain.StatusCanceled, old.Status)
	require.NotNil(t, old.CanceledAt)

	created := repo.bookings[resp.ID]
	assert.Equal(t, "Europe/Berlin", created.BookingTZ)
	assert.Equal(t, int64(8000), created.FinalAmountCents)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventBookingRescheduled, publisher.events[0].EventCode)
}

func TestExecute_MoveWithinOriginalSlot(t *testing.T) {
	repo := newFakeBookingRepo()
	uc := newTestUseCase(repo, &fakePublisher{})
	original := seedBooking(repo, domain.StatusConfirmed)

	// сдвиг на полчаса внутри старого интервала: старое отменяется первым,
	// поэтому конфликт с самим собой невозможен
	req := rescheduleRequest(original.ID)
	req.StartAt = time.Date(2026, 4, 1, 14, 30, 0, 0, time.UTC)
	req.EndAt = time.Date(2026, 4, 1, 15, 30, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_NewSlotTaken(t *testing.T) {
	repo := newFakeBookingRepo()
	uc := newTestUseCase(repo, &fakePublisher{})
	original := seedBooking(repo, domain.StatusConfirmed)

	blocker := seedBooking(repo, domain.StatusConfirmed)
	blocker.ClientGeneratedID = "blocker-key"
	blocker.StartAt = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	blocker.EndAt = time.Date(2026, 4, 2, 11, 0, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), rescheduleRequest(original.ID))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestExecute_ReplaySameKey(t *testing.T) {
	repo := newFakeBookingRepo()
	publisher := &fakePublisher{}
	uc := newTestUseCase(repo, publisher)
	original := seedBooking(repo, domain.StatusConfirmed)

	first, err := uc.Execute(context.Background(), rescheduleRequest(original.ID))
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), rescheduleRequest(original.ID))
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, publisher.events, 1)
}

func TestExecute_IdempotencyConflict(t *testing.T) {
	repo := newFakeBookingRepo()
	uc := newTestUseCase(repo, &fakePublisher{})
	original := seedBooking(repo, domain.StatusConfirmed)

	_, err := uc.Execute(context.Background(), rescheduleRequest(original.ID))
	require.NoError(t, err)

	// тот же ключ, другой интервал
	req := rescheduleRequest(original.ID)
	req.StartAt = time.Date(2026, 4, 3, 10, 0, 0, 0, time.UTC)
	req.EndAt = time.Date(2026, 4, 3, 11, 0, 0, 0, time.UTC)

	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrIdempotencyConflict)
}

func TestExecute_TerminalBookingRejected(t *testing.T) {
	repo := newFakeBookingRepo()
	uc := newTestUseCase(repo, &fakePublisher{})

	for _, status := range []domain.BookingStatus{domain.StatusCompleted, domain.StatusCanceled, domain.StatusNoShow} {
		b := seedBooking(repo, status)
		b.ClientGeneratedID = "key-" + string(status)

		req := rescheduleRequest(b.ID)
		req.ClientGeneratedID = "reschedule-" + string(status)

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrBookingNotActive, "status %s", status)
	}
}

func TestExecute_NotFound(t *testing.T) {
	uc := newTestUseCase(newFakeBookingRepo(), &fakePublisher{})

	_, err := uc.Execute(context.Background(), rescheduleRequest(uuid.New()))
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_Validation(t *testing.T) {
	uc := newTestUseCase(newFakeBookingRepo(), &fakePublisher{})

	req := rescheduleRequest(uuid.New())
	req.ClientGeneratedID = ""

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = rescheduleRequest(uuid.New())
	req.EndAt = req.StartAt

	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
