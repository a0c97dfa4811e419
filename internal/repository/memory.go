package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/pkg/util"
)

// MemoryStore is an in-memory Store implementation backing unit suites and
// local development without Postgres. WithinTx snapshots all collections and
// restores them when the scoped function fails, mirroring the rollback
// semantics of the pgx-backed store.
type MemoryStore struct {
	mu sync.Mutex

	users         map[string]domain.User
	properties    map[string]domain.Property
	applications  map[string]domain.Application
	bookings      map[string]domain.Booking
	bills         map[string]domain.Bill
	notifications map[string]domain.Notification

	failures map[string]error
	clock    func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]domain.User),
		properties:    make(map[string]domain.Property),
		applications:  make(map[string]domain.Application),
		bookings:      make(map[string]domain.Booking),
		bills:         make(map[string]domain.Bill),
		notifications: make(map[string]domain.Notification),
		failures:      make(map[string]error),
		clock:         time.Now,
	}
}

// FailOnce makes the next write for the given operation key (for example
// "bookings.create" or "properties.update") return err. Used by suites to
// simulate persistence failures at a chosen step.
func (s *MemoryStore) FailOnce(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *MemoryStore) failure(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *MemoryStore) Users() UserRepository                 { return &memUserRepo{s} }
func (s *MemoryStore) Properties() PropertyRepository        { return &memPropertyRepo{s} }
func (s *MemoryStore) Applications() ApplicationRepository   { return &memApplicationRepo{s} }
func (s *MemoryStore) Bookings() BookingRepository           { return &memBookingRepo{s} }
func (s *MemoryStore) Bills() BillRepository                 { return &memBillRepo{s} }
func (s *MemoryStore) Notifications() NotificationRepository { return &memNotificationRepo{s} }

func (s *MemoryStore) WithinTx(_ context.Context, fn func(Store) error) error {
	s.mu.Lock()
	snapshot := struct {
		users         map[string]domain.User
		properties    map[string]domain.Property
		applications  map[string]domain.Application
		bookings      map[string]domain.Booking
		bills         map[string]domain.Bill
		notifications map[string]domain.Notification
	}{
		users:         copyMap(s.users),
		properties:    copyMap(s.properties),
		applications:  copyMap(s.applications),
		bookings:      copyMap(s.bookings),
		bills:         copyMap(s.bills),
		notifications: copyMap(s.notifications),
	}
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.users = snapshot.users
		s.properties = snapshot.properties
		s.applications = snapshot.applications
		s.bookings = snapshot.bookings
		s.bills = snapshot.bills
		s.notifications = snapshot.notifications
		s.mu.Unlock()
		return err
	}
	return nil
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *MemoryStore) now() time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return time.Now()
}

// ---- users ----

type memUserRepo struct{ s *MemoryStore }

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.create"); err != nil {
		return err
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return util.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.update"); err != nil {
		return err
	}
	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.User
	for _, user := range r.s.users {
		if user.Role == role {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// ---- properties ----

type memPropertyRepo struct{ s *MemoryStore }

func (r *memPropertyRepo) Create(_ context.Context, property *domain.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("properties.create"); err != nil {
		return err
	}
	property.ID = uuid.NewString()
	property.CreatedAt = r.s.now()
	property.UpdatedAt = property.CreatedAt
	r.s.properties[property.ID] = *property
	return nil
}

func (r *memPropertyRepo) Update(_ context.Context, property *domain.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("properties.update"); err != nil {
		return err
	}
	if _, ok := r.s.properties[property.ID]; !ok {
		return pgx.ErrNoRows
	}
	property.UpdatedAt = r.s.now()
	r.s.properties[property.ID] = *property
	return nil
}

func (r *memPropertyRepo) GetByID(_ context.Context, id string) (*domain.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	property, ok := r.s.properties[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &property, nil
}

func (r *memPropertyRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("properties.delete"); err != nil {
		return err
	}
	if _, ok := r.s.properties[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.properties, id)
	return nil
}

func (r *memPropertyRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Property, error) {
	return r.ListWithFilter(ctx, PropertyFilter{OwnerID: &ownerID})
}

func (r *memPropertyRepo) ListWithFilter(_ context.Context, filter PropertyFilter) ([]domain.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Property
	for _, property := range r.s.properties {
		if filter.OwnerID != nil && property.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.City != nil && !strings.EqualFold(property.City, strings.TrimSpace(*filter.City)) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, property.Status) {
			continue
		}
		result = append(result, property)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func containsStatus(statuses []domain.PropertyStatus, status domain.PropertyStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ---- applications ----

type memApplicationRepo struct{ s *MemoryStore }

func (r *memApplicationRepo) Create(_ context.Context, application *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("applications.create"); err != nil {
		return err
	}
	application.ID = uuid.NewString()
	application.CreatedAt = r.s.now()
	application.UpdatedAt = application.CreatedAt
	r.s.applications[application.ID] = *application
	return nil
}

func (r *memApplicationRepo) Update(_ context.Context, application *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("applications.update"); err != nil {
		return err
	}
	if _, ok := r.s.applications[application.ID]; !ok {
		return pgx.ErrNoRows
	}
	application.UpdatedAt = r.s.now()
	r.s.applications[application.ID] = *application
	return nil
}

func (r *memApplicationRepo) GetByID(_ context.Context, id string) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	application, ok := r.s.applications[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &application, nil
}

func (r *memApplicationRepo) FindPending(_ context.Context, propertyID, renterID string) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, application := range r.s.applications {
		if application.PropertyID == propertyID && application.RenterID == renterID &&
			application.Status == domain.ApplicationStatusPending {
			a := application
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memApplicationRepo) ListByRenter(_ context.Context, renterID string) ([]domain.Application, error) {
	return r.listWhere(func(a domain.Application) bool { return a.RenterID == renterID })
}

func (r *memApplicationRepo) ListByProperty(_ context.Context, propertyID string) ([]domain.Application, error) {
	return r.listWhere(func(a domain.Application) bool { return a.PropertyID == propertyID })
}

func (r *memApplicationRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Application, error) {
	r.s.mu.Lock()
	owned := make(map[string]bool)
	for id, property := range r.s.properties {
		if property.OwnerID == ownerID {
			owned[id] = true
		}
	}
	r.s.mu.Unlock()
	return r.listWhere(func(a domain.Application) bool { return owned[a.PropertyID] })
}

func (r *memApplicationRepo) listWhere(keep func(domain.Application) bool) ([]domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Application
	for _, application := range r.s.applications {
		if keep(application) {
			result = append(result, application)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// ---- bookings ----

type memBookingRepo struct{ s *MemoryStore }

func (r *memBookingRepo) Create(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("bookings.create"); err != nil {
		return err
	}
	booking.ID = uuid.NewString()
	booking.CreatedAt = r.s.now()
	booking.UpdatedAt = booking.CreatedAt
	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *memBookingRepo) Update(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("bookings.update"); err != nil {
		return err
	}
	if _, ok := r.s.bookings[booking.ID]; !ok {
		return pgx.ErrNoRows
	}
	booking.UpdatedAt = r.s.now()
	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	booking, ok := r.s.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &booking, nil
}

func (r *memBookingRepo) ActiveByProperty(_ context.Context, propertyID string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, booking := range r.s.bookings {
		if booking.PropertyID == propertyID && booking.IsActive {
			b := booking
			return &b, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memBookingRepo) FindForPair(_ context.Context, propertyID, renterID string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *domain.Booking
	for _, booking := range r.s.bookings {
		if booking.PropertyID != propertyID || booking.RenterID != renterID {
			continue
		}
		b := booking
		if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
			latest = &b
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	return latest, nil
}

func (r *memBookingRepo) ListByProperty(_ context.Context, propertyID string) ([]domain.Booking, error) {
	return r.listWhere(func(b domain.Booking) bool { return b.PropertyID == propertyID })
}

func (r *memBookingRepo) ListByRenter(_ context.Context, renterID string) ([]domain.Booking, error) {
	return r.listWhere(func(b domain.Booking) bool { return b.RenterID == renterID })
}

func (r *memBookingRepo) ListActiveByOwner(_ context.Context, ownerID string) ([]domain.Booking, error) {
	r.s.mu.Lock()
	owned := make(map[string]bool)
	for id, property := range r.s.properties {
		if property.OwnerID == ownerID {
			owned[id] = true
		}
	}
	r.s.mu.Unlock()
	return r.listWhere(func(b domain.Booking) bool { return b.IsActive && owned[b.PropertyID] })
}

func (r *memBookingRepo) listWhere(keep func(domain.Booking) bool) ([]domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Booking
	for _, booking := range r.s.bookings {
		if keep(booking) {
			result = append(result, booking)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// ---- bills ----

type memBillRepo struct{ s *MemoryStore }

func (r *memBillRepo) Create(_ context.Context, bill *domain.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("bills.create"); err != nil {
		return err
	}
	bill.ID = uuid.NewString()
	bill.CreatedAt = r.s.now()
	bill.UpdatedAt = bill.CreatedAt
	r.s.bills[bill.ID] = *bill
	return nil
}

func (r *memBillRepo) Update(_ context.Context, bill *domain.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("bills.update"); err != nil {
		return err
	}
	if _, ok := r.s.bills[bill.ID]; !ok {
		return pgx.ErrNoRows
	}
	bill.UpdatedAt = r.s.now()
	r.s.bills[bill.ID] = *bill
	return nil
}

func (r *memBillRepo) GetByID(_ context.Context, id string) (*domain.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bill, ok := r.s.bills[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &bill, nil
}

func (r *memBillRepo) ListByRenter(_ context.Context, renterID string) ([]domain.Bill, error) {
	return r.listWhere(func(b domain.Bill) bool { return b.RenterID == renterID })
}

func (r *memBillRepo) ListByProperty(_ context.Context, propertyID string) ([]domain.Bill, error) {
	return r.listWhere(func(b domain.Bill) bool { return b.PropertyID == propertyID })
}

func (r *memBillRepo) listWhere(keep func(domain.Bill) bool) ([]domain.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Bill
	for _, bill := range r.s.bills {
		if keep(bill) {
			result = append(result, bill)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

// ---- notifications ----

type memNotificationRepo struct{ s *MemoryStore }

func (r *memNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("notifications.create"); err != nil {
		return err
	}
	notification.ID = uuid.NewString()
	notification.CreatedAt = r.s.now()
	r.s.notifications[notification.ID] = *notification
	return nil
}

func (r *memNotificationRepo) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Notification
	for _, notification := range r.s.notifications {
		if notification.UserID == userID {
			result = append(result, notification)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	notification, ok := r.s.notifications[id]
	if !ok {
		return pgx.ErrNoRows
	}
	notification.IsRead = true
	r.s.notifications[id] = notification
	return nil
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, notification := range r.s.notifications {
		if notification.UserID == userID {
			notification.IsRead = true
			r.s.notifications[id] = notification
		}
	}
	return nil
}

func (r *memNotificationRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.notifications, id)
	return nil
}

func (r *memNotificationRepo) DeleteByUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, notification := range r.s.notifications {
		if notification.UserID == userID {
			delete(r.s.notifications, id)
		}
	}
	return nil
}
