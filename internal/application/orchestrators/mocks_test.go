package orchestrators

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	emailAdapter "gymdesk/internal/adapters/email"
	"gymdesk/internal/adapters/sms"
	"gymdesk/internal/adapters/storage"
	leadStore "gymdesk/internal/adapters/storage/lead"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/lead"
	"gymdesk/internal/domain/otp"
	"gymdesk/internal/domain/performance"
)

// --- in-memory test doubles ---

var fixedNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type memLeadStore struct {
	leads   map[string]lead.Lead // keyed by id
	saveErr error
	saves   int
}

func newMemLeadStore(seed ...lead.Lead) *memLeadStore {
	s := &memLeadStore{leads: make(map[string]lead.Lead)}
	for _, l := range seed {
		s.leads[l.ID] = l
	}
	return s
}

// GetByID returns the lead or a wrapped storage.ErrNotFound.
func (s *memLeadStore) GetByID(_ context.Context, id string) (lead.Lead, error) {
	l, ok := s.leads[id]
	if !ok {
		return lead.Lead{}, fmt.Errorf("lead %s: %w", id, storage.ErrNotFound)
	}
	return l, nil
}

// GetByPhone scans for the normalized phone.
func (s *memLeadStore) GetByPhone(_ context.Context, phone string) (lead.Lead, error) {
	for _, l := range s.leads {
		if l.NormalizedPhone == phone {
			return l, nil
		}
	}
	return lead.Lead{}, fmt.Errorf("lead %s: %w", phone, storage.ErrNotFound)
}

// Save stores the lead, enforcing phone uniqueness.
func (s *memLeadStore) Save(_ context.Context, l lead.Lead) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	for id, other := range s.leads {
		if id != l.ID && other.NormalizedPhone == l.NormalizedPhone {
			return fmt.Errorf("lead phone %s: %w", l.NormalizedPhone, storage.ErrConflict)
		}
	}
	s.saves++
	s.leads[l.ID] = l
	return nil
}

// List returns matching leads newest first.
func (s *memLeadStore) List(_ context.Context, f leadStore.ListFilter) ([]lead.Lead, error) {
	var out []lead.Lead
	for _, l := range s.leads {
		if f.Matches(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Count returns the number of matching leads.
func (s *memLeadStore) Count(ctx context.Context, f leadStore.ListFilter) (int, error) {
	out, _ := s.List(ctx, f)
	return len(out), nil
}

type memAccountStore struct {
	byEmail map[string]account.Account
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{byEmail: make(map[string]account.Account)}
}

func (s *memAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return account.Account{}, fmt.Errorf("account %s: %w", email, storage.ErrNotFound)
	}
	return a, nil
}

func (s *memAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	for _, a := range s.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return account.Account{}, fmt.Errorf("account %s: %w", id, storage.ErrNotFound)
}

func (s *memAccountStore) Save(_ context.Context, a account.Account) error {
	s.byEmail[strings.ToLower(a.Email)] = a
	return nil
}

func (s *memAccountStore) Count(_ context.Context) (int, error) {
	return len(s.byEmail), nil
}

type memAttendanceStore struct {
	saved []attendance.Attendance
}

func (s *memAttendanceStore) Save(_ context.Context, a attendance.Attendance) error {
	s.saved = append(s.saved, a)
	return nil
}

type memPerformanceStore struct {
	targets map[string]performance.Target
	saves   int
}

func newMemPerformanceStore() *memPerformanceStore {
	return &memPerformanceStore{targets: make(map[string]performance.Target)}
}

func (s *memPerformanceStore) Get(_ context.Context, year, month int) (performance.Target, error) {
	t, ok := s.targets[performance.Key(year, month)]
	if !ok {
		return performance.Target{}, fmt.Errorf("performance: %w", storage.ErrNotFound)
	}
	return t, nil
}

func (s *memPerformanceStore) Save(_ context.Context, t performance.Target) error {
	s.saves++
	s.targets[performance.Key(t.Year, t.Month)] = t
	return nil
}

type memOTPStore struct {
	sessions []otp.Session
	links    map[string]otp.Link
}

func newMemOTPStore() *memOTPStore {
	return &memOTPStore{links: make(map[string]otp.Link)}
}

func (s *memOTPStore) Save(_ context.Context, sess otp.Session) error {
	for i := range s.sessions {
		if s.sessions[i].ID == sess.ID {
			s.sessions[i] = sess
			return nil
		}
	}
	s.sessions = append(s.sessions, sess)
	return nil
}

func (s *memOTPStore) GetLatestByPhone(_ context.Context, phone string) (otp.Session, error) {
	for i := len(s.sessions) - 1; i >= 0; i-- {
		if s.sessions[i].NormalizedPhone == phone {
			return s.sessions[i], nil
		}
	}
	return otp.Session{}, fmt.Errorf("otp %s: %w", phone, storage.ErrNotFound)
}

func (s *memOTPStore) SaveLink(_ context.Context, l otp.Link) error {
	s.links[l.NormalizedPhone] = l
	return nil
}

func (s *memOTPStore) GetLink(_ context.Context, phone string) (otp.Link, error) {
	l, ok := s.links[phone]
	if !ok {
		return otp.Link{}, fmt.Errorf("link %s: %w", phone, storage.ErrNotFound)
	}
	return l, nil
}

// fakeGateway answers from fixed results and records verify calls.
type fakeGateway struct {
	request     sms.RequestResult
	requestErr  error
	verify      sms.VerifyResult
	verifyCalls int
}

func (g *fakeGateway) RequestOTP(context.Context, string) (sms.RequestResult, error) {
	return g.request, g.requestErr
}

func (g *fakeGateway) VerifyOTP(context.Context, string, string, string) (sms.VerifyResult, error) {
	g.verifyCalls++
	return g.verify, nil
}

func (g *fakeGateway) Name() string { return "fake" }

// recordingSender captures batch sends.
type recordingSender struct {
	mu   sync.Mutex
	sent []emailAdapter.SendRequest
}

func (s *recordingSender) Send(ctx context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	res, err := s.SendBatch(ctx, []emailAdapter.SendRequest{req})
	if err != nil {
		return emailAdapter.SendResult{}, err
	}
	return res[0], nil
}

func (s *recordingSender) SendBatch(_ context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []emailAdapter.SendResult
	for range reqs {
		out = append(out, emailAdapter.SendResult{MessageID: fmt.Sprintf("msg-%d", len(s.sent)+len(out)), SentAt: fixedNow})
	}
	s.sent = append(s.sent, reqs...)
	return out, nil
}
