package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hapipet/internal/availability"
	"hapipet/internal/db"
	"hapipet/internal/entities"
	"hapipet/internal/repository"
)

type fakeUsers struct {
	byID map[string]*db.User
}

func newFakeUsers(users ...*db.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*db.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *db.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*db.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*db.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type fakeSitters struct {
	profiles map[string]*db.SitterProfile
	order    []string
}

func newFakeSitters(profiles ...*db.SitterProfile) *fakeSitters {
	f := &fakeSitters{profiles: map[string]*db.SitterProfile{}}
	for _, p := range profiles {
		f.profiles[p.UserID] = p
		f.order = append(f.order, p.UserID)
	}
	return f
}

func (f *fakeSitters) GetProfile(_ context.Context, id string) (*db.SitterProfile, error) {
	if err := uuidColumn(id); err != nil {
		return nil, err
	}
	if p, ok := f.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSitters) UpdateProfile(_ context.Context, p *db.SitterProfile) error {
	if _, ok := f.profiles[p.UserID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	f.profiles[p.UserID] = &cp
	return nil
}

func (f *fakeSitters) Search(_ context.Context, q string) ([]db.SitterProfile, error) {
	var out []db.SitterProfile
	for _, id := range f.order {
		p := f.profiles[id]
		if q == "" || strings.Contains(strings.ToLower(p.FullName+" "+p.Description), strings.ToLower(q)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeBookings struct {
	mu   sync.Mutex
	byID map[string]*db.Booking
}

func newFakeBookings(bookings ...*db.Booking) *fakeBookings {
	f := &fakeBookings{byID: map[string]*db.Booking{}}
	for _, b := range bookings {
		f.byID[b.ID] = b
	}
	return f
}

func (f *fakeBookings) Create(_ context.Context, b *db.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.byID[b.ID] = &cp
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id string) (*db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookings) ListForUser(_ context.Context, userID string) ([]db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.Booking{}
	for _, b := range f.byID {
		if b.IsParty(userID) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (f *fakeBookings) ConfirmedIntervals(_ context.Context, sitterID string, from, to time.Time) ([]availability.Interval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	window := availability.Interval{Start: from, End: to}
	var out []availability.Interval
	for _, b := range f.byID {
		if b.SitterID == sitterID && b.Status == db.StatusConfirmed && b.Interval().Overlaps(window) {
			out = append(out, b.Interval())
		}
	}
	return out, nil
}

func (f *fakeBookings) Confirm(_ context.Context, id string, payment db.PaymentStatus) (*db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if b.Status != db.StatusPending {
		return nil, repository.ErrStatusChanged
	}
	for _, other := range f.byID {
		if other.ID != id && other.SitterID == b.SitterID && other.Status == db.StatusConfirmed &&
			other.Interval().Overlaps(b.Interval()) {
			return nil, repository.ErrSlotTaken
		}
	}
	b.Status, b.PaymentStatus = db.StatusConfirmed, payment
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, id string, from, to db.BookingStatus, payment db.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok || b.Status != from {
		return repository.ErrStatusChanged
	}
	b.Status, b.PaymentStatus = to, payment
	return nil
}

func (f *fakeBookings) get(id string) db.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

// fakePayments shares the booking map so payment updates are visible to GetByID.
type fakePayments struct {
	bookings *fakeBookings
}

func (f *fakePayments) SavePaymentIntent(_ context.Context, bookingID, intentID string) error {
	f.bookings.mu.Lock()
	defer f.bookings.mu.Unlock()
	f.bookings.byID[bookingID].StripePaymentIntentID = intentID
	return nil
}

func (f *fakePayments) BookingIDByPaymentIntent(_ context.Context, intentID string) (string, error) {
	f.bookings.mu.Lock()
	defer f.bookings.mu.Unlock()
	for _, b := range f.bookings.byID {
		if b.StripePaymentIntentID == intentID {
			return b.ID, nil
		}
	}
	return "", repository.ErrNotFound
}

func (f *fakePayments) SetPaymentStatus(_ context.Context, bookingID string, status db.PaymentStatus) error {
	f.bookings.mu.Lock()
	defer f.bookings.mu.Unlock()
	f.bookings.byID[bookingID].PaymentStatus = status
	return nil
}

type fakeDogs struct {
	byID map[string]*db.Dog
}

func newFakeDogs(dogs ...*db.Dog) *fakeDogs {
	f := &fakeDogs{byID: map[string]*db.Dog{}}
	for _, d := range dogs {
		f.byID[d.ID] = d
	}
	return f
}

func (f *fakeDogs) Create(_ context.Context, d *db.Dog) error {
	f.byID[d.ID] = d
	return nil
}

func (f *fakeDogs) GetByID(_ context.Context, id string) (*db.Dog, error) {
	if err := uuidColumn(id); err != nil {
		return nil, err
	}
	if d, ok := f.byID[id]; ok {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDogs) ListByOwner(_ context.Context, ownerID string) ([]db.Dog, error) {
	out := []db.Dog{}
	for _, d := range f.byID {
		if d.OwnerID == ownerID {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeReviews struct {
	reviews []db.Review
}

func (f *fakeReviews) Create(_ context.Context, rv *db.Review) error {
	for _, r := range f.reviews {
		if r.BookingID == rv.BookingID {
			return repository.ErrDuplicate
		}
	}
	f.reviews = append(f.reviews, *rv)
	return nil
}

func (f *fakeReviews) ListForTarget(_ context.Context, targetID string) ([]db.Review, error) {
	out := []db.Review{}
	for _, r := range f.reviews {
		if r.TargetID == targetID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeMessages struct {
	byID map[string]*db.Message
}

func (f *fakeMessages) Create(_ context.Context, m *db.Message) error {
	m.CreatedAt = time.Now()
	f.byID[m.ID] = m
	return nil
}

func (f *fakeMessages) GetByID(_ context.Context, id string) (*db.Message, error) {
	if m, ok := f.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMessages) Conversation(_ context.Context, a, b string) ([]db.Message, error) {
	out := []db.Message{}
	for _, m := range f.byID {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessages) Conversations(context.Context, string) ([]entities.ConversationSummary, error) {
	return nil, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, id string, at time.Time) error {
	f.byID[id].ReadAt = &at
	return nil
}

type fakeJobs struct {
	due    []string
	marked []string
}

func (f *fakeJobs) DueReminders(context.Context, time.Time, time.Time) ([]string, error) {
	return f.due, nil
}

func (f *fakeJobs) MarkRemindersSent(_ context.Context, ids []string) (int64, error) {
	f.marked = append(f.marked, ids...)
	return int64(len(ids)), nil
}

type fakeGateway struct {
	intents   map[string]int64
	refunded  []string
	cancelled []string
	refundErr error
	cancelErr error
}

func (f *fakeGateway) CancelPaymentIntent(_ context.Context, intentID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, intentID)
	return nil
}

func (f *fakeGateway) CreatePaymentIntent(_ context.Context, amount int64, _, bookingID string) (string, string, error) {
	if f.intents == nil {
		f.intents = map[string]int64{}
	}
	id := "pi_" + bookingID[:8]
	f.intents[id] = amount
	return id, id + "_secret", nil
}

func (f *fakeGateway) Refund(_ context.Context, intentID string) error {
	if f.refundErr != nil {
		return f.refundErr
	}
	f.refunded = append(f.refunded, intentID)
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) kinds() []NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []NotificationKind
	for _, n := range r.sent {
		out = append(out, n.Kind)
	}
	return out
}

type sentEmail struct {
	to, subject, html string
}

type fakeChannels struct {
	mu     sync.Mutex
	emails []sentEmail
	sms    []string
}

func (f *fakeChannels) SendEmail(to, _, subject, _, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, sentEmail{to, subject, html})
	return nil
}

func (f *fakeChannels) SendSMS(to, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sms = append(f.sms, to)
	return nil
}

// uuidColumn fails the way Postgres does when text is compared with a uuid column.
func uuidColumn(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("pq: invalid input syntax for type uuid: %q", id)
	}
	return nil
}
