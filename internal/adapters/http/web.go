package web

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"gymdesk/internal/adapters/email"
	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/adapters/http/perf"
	"gymdesk/internal/adapters/metrics"
	"gymdesk/internal/adapters/sms"
	accountStore "gymdesk/internal/adapters/storage/account"
	attendanceStore "gymdesk/internal/adapters/storage/attendance"
	leadStore "gymdesk/internal/adapters/storage/lead"
	membershipStore "gymdesk/internal/adapters/storage/membership"
	otpStore "gymdesk/internal/adapters/storage/otp"
	performanceStore "gymdesk/internal/adapters/storage/performance"
	pitchStore "gymdesk/internal/adapters/storage/pitch"
	settingsStore "gymdesk/internal/adapters/storage/settings"
	trainerStore "gymdesk/internal/adapters/storage/trainer"
	"gymdesk/internal/auth"
)

// Stores holds all storage dependencies.
// Every field points at the same backend, chosen once at startup.
type Stores struct {
	AccountStore     accountStore.Store
	MembershipStore  membershipStore.Store
	LeadStore        leadStore.Store
	TrainerStore     trainerStore.Store
	PitchStore       pitchStore.Store
	AttendanceStore  attendanceStore.Store
	OTPStore         otpStore.Store
	PerformanceStore performanceStore.Store
	SettingsStore    settingsStore.Store
}

// Deps holds the collaborators the handlers call into.
type Deps struct {
	Stores      Stores
	Tokens      *auth.JWTManager
	SMS         sms.Gateway
	EmailSender email.Sender
	Collector   *perf.Collector // optional
	GenerateID  func() string   // defaults to uuid
	Now         func() time.Time

	// GenerateOTPCode overrides dry-run code generation; nil uses otp.GenerateCode.
	GenerateOTPCode func() (string, error)
}

// Options carries the HTTP-facing settings.
type Options struct {
	Version            string
	StorageBackend     string // "sqlite" or "file", reported by /api/health
	CSRFKey            []byte // 32 bytes; a random key is generated when empty
	TrustedOrigins     []string
	CORSOrigins        []string
	RateLimitPerSecond int
	SlowRequestMs      int
	EmailFrom          string
	EmailReplyTo       string
	GymName            string
	ReminderDays       int
}

// DefaultRateLimitPerSecond is the per-IP limit when Options leaves it unset.
const DefaultRateLimitPerSecond = 10

// Server owns the handlers and their dependencies.
type Server struct {
	deps Deps
	opts Options
	csrf func(http.Handler) http.Handler
}

// NewMux wires HTTP handlers for the app.
// The rate limiter's cleanup goroutine stops when ctx is cancelled.
// Middleware order, outer to inner: SecurityHeaders, CORS, RateLimit, Timing, Auth, Metrics.
// CSRF wraps only the routes browsers post forms to.
func NewMux(ctx context.Context, deps Deps, opts Options) http.Handler {
	if deps.GenerateID == nil {
		deps.GenerateID = func() string { return uuid.New().String() }
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.EmailSender == nil {
		deps.EmailSender = email.NewNoopSender()
	}
	if opts.RateLimitPerSecond <= 0 {
		opts.RateLimitPerSecond = DefaultRateLimitPerSecond
	}
	s := &Server{deps: deps, opts: opts, csrf: middleware.CSRF(csrfKey(opts.CSRFKey), opts.TrustedOrigins)}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	limiter := middleware.NewRateLimiter(opts.RateLimitPerSecond, time.Second)
	go func() {
		<-ctx.Done()
		limiter.Stop()
	}()

	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CORS(opts.CORSOrigins),
		middleware.RateLimit(limiter),
		middleware.Timing(deps.Collector, opts.SlowRequestMs),
		middleware.Auth(deps.Tokens),
		middleware.Metrics,
	)
}

// csrfKey returns the configured key or a random one for this process.
func csrfKey(key []byte) []byte {
	if len(key) == 32 {
		return key
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("csrf key: " + err.Error())
	}
	slog.Warn("csrf_event", "event", "random_key", "hint", "set GYM_CSRF_KEY so tokens survive restarts")
	return key
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	staff := middleware.RequireStaff
	admin := middleware.RequireAdmin
	member := middleware.RequireMember

	// Public
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /api/csrf", s.csrf(http.HandlerFunc(s.handleCSRFToken)))
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/otp/request", s.handleRequestOTP)
	mux.HandleFunc("POST /api/auth/otp/verify", s.handleVerifyOTP)
	mux.HandleFunc("GET /api/config/benefits", s.handleGetBenefits)
	mux.Handle("GET /metrics", metrics.Handler())

	// Members (OTP token)
	mux.Handle("GET /api/me/membership", member(http.HandlerFunc(s.handleMyMembership)))

	// Staff
	mux.Handle("POST /api/auth/password", staff(http.HandlerFunc(s.handleChangePassword)))

	mux.Handle("GET /api/memberships", staff(http.HandlerFunc(s.handleListMemberships)))
	mux.Handle("POST /api/memberships", staff(http.HandlerFunc(s.handleCreateMembership)))
	mux.Handle("PATCH /api/memberships/{id}", staff(http.HandlerFunc(s.handleUpdateMembership)))
	mux.Handle("DELETE /api/memberships/{id}", staff(http.HandlerFunc(s.handleDeleteMembership)))
	mux.Handle("GET /api/memberships/history", staff(http.HandlerFunc(s.handleMembershipHistory)))
	mux.Handle("GET /api/memberships/history/by-phone", staff(http.HandlerFunc(s.handleMembershipHistoryByPhone)))
	mux.Handle("GET /api/memberships/{id}/history", staff(http.HandlerFunc(s.handleMembershipHistoryForID)))

	mux.Handle("GET /api/leads", staff(http.HandlerFunc(s.handleListLeads)))
	mux.Handle("POST /api/leads", staff(http.HandlerFunc(s.handleUpsertLead)))
	mux.Handle("PUT /api/leads", staff(http.HandlerFunc(s.handleUpsertLead)))
	mux.Handle("PATCH /api/leads/{id}", staff(http.HandlerFunc(s.handleUpdateLead)))
	mux.Handle("GET /api/leads/expiring-soon", staff(http.HandlerFunc(s.handleExpiringSoon)))
	mux.Handle("GET /api/leads/expired", staff(http.HandlerFunc(s.handleExpired)))
	mux.Handle("GET /api/leads/export.csv", staff(http.HandlerFunc(s.handleExportLeads)))
	mux.Handle("POST /api/leads/import", staff(s.csrf(http.HandlerFunc(s.handleImportLeads))))
	mux.Handle("POST /api/leads/reminders", staff(http.HandlerFunc(s.handleSendReminders)))

	mux.Handle("GET /api/trainers", staff(http.HandlerFunc(s.handleListTrainers)))
	mux.Handle("POST /api/trainers", staff(http.HandlerFunc(s.handleCreateTrainer)))
	mux.Handle("GET /api/trainers/{id}", staff(http.HandlerFunc(s.handleGetTrainer)))
	mux.Handle("PATCH /api/trainers/{id}", staff(http.HandlerFunc(s.handleUpdateTrainer)))
	mux.Handle("DELETE /api/trainers/{id}", staff(http.HandlerFunc(s.handleDeleteTrainer)))

	mux.Handle("GET /api/pitches", staff(http.HandlerFunc(s.handleListPitches)))
	mux.Handle("POST /api/pitches", staff(http.HandlerFunc(s.handleCreatePitch)))
	mux.Handle("PATCH /api/pitches/{id}", staff(http.HandlerFunc(s.handleUpdatePitch)))

	mux.Handle("GET /api/attendance", staff(http.HandlerFunc(s.handleAttendanceByDate)))
	mux.Handle("POST /api/attendance", staff(http.HandlerFunc(s.handleCheckIn)))

	mux.Handle("GET /api/reports/dashboard", staff(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("GET /api/performance/{year}/{month}", staff(http.HandlerFunc(s.handlePerformance)))
	mux.Handle("GET /api/performance/{year}/{month}/export.csv", staff(http.HandlerFunc(s.handleExportPerformance)))

	// Admin
	mux.Handle("DELETE /api/memberships/history", admin(http.HandlerFunc(s.handleClearMembershipHistory)))
	mux.Handle("PUT /api/performance/{year}/{month}", admin(http.HandlerFunc(s.handleSetPerformanceTarget)))
	mux.Handle("PUT /api/config/benefits", admin(http.HandlerFunc(s.handleUpdateBenefits)))
	mux.Handle("POST /api/admin/accounts", admin(http.HandlerFunc(s.handleCreateAccount)))
	mux.Handle("GET /api/admin/perf", admin(http.HandlerFunc(s.handleAdminPerf)))
}
