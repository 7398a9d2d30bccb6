package update_booking_status

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
	updates  int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*domain.Booking)}
}

func (f *fakeBookingRepo) GetByIDForUpdate(_ context.Context, tenantID int64, id uuid.UUID) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok || b.TenantID != tenantID {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) UpdateLifecycle(_ context.Context, booking *domain.Booking) error {
	if _, ok := f.bookings[booking.ID]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	f.updates++
	copied := *booking
	copied.UpdatedAt = time.Now()
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
		ID:        uuid.New(),
		TenantID:  1,
		Status:    status,
		StartAt:   time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC),
		EndAt:     time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC),
		BookingTZ: "Europe/Berlin",
	}
	repo.bookings[b.ID] = b
	return b
}

func newTestUseCase(repo *fakeBookingRepo, publisher *fakePublisher) *UseCase {
	uc := NewUseCase(repo, publisher, passthroughTxManager{}, nopLogger{}, nil)
	uc.timeProvider = fixedTime{now: time.Date(2026, 4, 1, 13, 0, 0, 0, time.UTC)}
	return uc
}

func TestExecute_ConfirmPending(t *testing.T) {
	repo := newFakeBookingRepo()
	publisher := &fakePublisher{}
	uc := newTestUseCase(repo, publisher)
	b := seedBooking(repo, domain.StatusPending)

	resp, err := uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: b.ID, Action: domain.ActionConfirm})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.True(t, resp.Changed)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventBookingConfirmed, publisher.events[0].EventCode)
}

func TestExecute_CancelIsIdempotent(t *testing.T) {
	repo := newFakeBookingRepo()
	publisher := &fakePublisher{}
	uc := newTestUseCase(repo, publisher)
	b := seedBooking(repo, domain.StatusConfirmed)

	first, err := uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: b.ID, Action: domain.ActionCancel})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCanceled), first.Status)
	assert.True(t, first.Changed)
	require.NotNil(t, first.CanceledAt)

	// повторная отмена: тот же ответ, без второго события и без записи
	second, err := uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: b.ID, Action: domain.ActionCancel})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCanceled), second.Status)
	assert.False(t, second.Changed)
	assert.Equal(t, first.CanceledAt, second.CanceledAt)

	assert.Len(t, publisher.events, 1)
	assert.Equal(t, 1, repo.updates)
}

func TestExecute_CancelWinsOverCheckIn(t *testing.T) {
	repo := newFakeBookingRepo()
	uc := newTestUseCase(repo, &fakePublisher{})
	b := seedBooking(repo, domain.StatusConfirmed)

	_, err := uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: b.ID, Action: domain.ActionCancel})
	require.NoError(t, err)

	// check_in после отмены отклоняется: терминальный статус
	_, err = uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: b.ID, Action: domain.ActionCheckIn})
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Equal(t, domain.StatusCanceled, repo.bookings[b.ID].Status)
}

func TestExecute_DirectActionOnTerminalRejected(t *testing.T) {
	repo := newFakeBookingRepo()
	uc := newTestUseCase(repo, &fakePublisher{})
	b := seedBooking(repo, domain.StatusCompleted)

	for _, action := range []domain.BookingAction{domain.ActionConfirm, domain.ActionCheckIn, domain.ActionComplete} {
		_, err := uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: b.ID, Action: action})
		assert.ErrorIs(t, err, ErrAlreadyFinalized, "action %s", action)
	}
}

func TestExecute_MarkNoShow(t *testing.T) {
	repo := newFakeBookingRepo()
	publisher := &fakePublisher{}
	uc := newTestUseCase(repo, publisher)
	b := seedBooking(repo, domain.StatusConfirmed)

	resp, err := uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: b.ID, Action: domain.ActionMarkNoShow})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusNoShow), resp.Status)
	assert.True(t, resp.NoShowFlag)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.EventBookingNoShow, publisher.events[0].EventCode)

	// повторная отметка — no-op
	resp, err = uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: b.ID, Action: domain.ActionMarkNoShow})
	require.NoError(t, err)
	assert.False(t, resp.Changed)
	assert.Len(t, publisher.events, 1)
}

func TestExecute_CancelBeatsNoShowMarker(t *testing.T) {
	repo := newFakeBookingRepo()
	uc := newTestUseCase(repo, &fakePublisher{})
	b := seedBooking(repo, domain.StatusConfirmed)

	_, err := uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: b.ID, Action: domain.ActionCancel})
	require.NoError(t, err)

	// отметка неявки по отмененному: маркер записывается, статус остается canceled
	resp, err := uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: b.ID, Action: domain.ActionMarkNoShow})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCanceled), resp.Status)
	assert.True(t, resp.NoShowFlag)
}

func TestExecute_LifecycleChain(t *testing.T) {
	repo := newFakeBookingRepo()
	uc := newTestUseCase(repo, &fakePublisher{})
	b := seedBooking(repo, domain.StatusPending)

	for _, step := range []struct {
		action domain.BookingAction
		status domain.BookingStatus
	}{
		{domain.ActionConfirm, domain.StatusConfirmed},
		{domain.ActionCheckIn, domain.StatusCheckedIn},
		{domain.ActionComplete, domain.StatusCompleted},
	} {
		resp, err := uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: b.ID, Action: step.action})
		require.NoError(t, err)
		assert.Equal(t, string(step.status), resp.Status)
	}
}

func TestExecute_NotFound(t *testing.T) {
	uc := newTestUseCase(newFakeBookingRepo(), &fakePublisher{})

	_, err := uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: uuid.New(), Action: domain.ActionConfirm})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_TenantIsolation(t *testing.T) {
	repo := newFakeBookingRepo()
	uc := newTestUseCase(repo, &fakePublisher{})
	b := seedBooking(repo, domain.StatusPending)

	_, err := uc.Execute(context.Background(), &Request{TenantID: 2, BookingID: b.ID, Action: domain.ActionConfirm})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_UnknownActionRejected(t *testing.T) {
	uc := newTestUseCase(newFakeBookingRepo(), &fakePublisher{})

	_, err := uc.Execute(context.Background(), &Request{TenantID: 1, BookingID: uuid.New(), Action: "explode"})
	assert.ErrorIs(t, err, ErrInvalidAction)
}
