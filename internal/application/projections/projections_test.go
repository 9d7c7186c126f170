package projections

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	attendanceStore "gymdesk/internal/adapters/storage/attendance"
	"gymdesk/internal/adapters/storage/filedb"
	leadStore "gymdesk/internal/adapters/storage/lead"
	membershipStore "gymdesk/internal/adapters/storage/membership"
	performanceStore "gymdesk/internal/adapters/storage/performance"
	settingsStore "gymdesk/internal/adapters/storage/settings"
	"gymdesk/internal/adapters/storage/storagetest"
	trainerStore "gymdesk/internal/adapters/storage/trainer"
	domainAttendance "gymdesk/internal/domain/attendance"
	domainLead "gymdesk/internal/domain/lead"
	domainMembership "gymdesk/internal/domain/membership"
	domainPerformance "gymdesk/internal/domain/performance"
	domainSettings "gymdesk/internal/domain/settings"
	domainTrainer "gymdesk/internal/domain/trainer"
)

var now = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func amount(v float64) *float64 { return &v }

func seedLeads(t *testing.T, db *filedb.DB, leads ...domainLead.Lead) *leadStore.FileStore {
	t.Helper()
	s := leadStore.NewFileStore(db)
	for _, l := range leads {
		if l.NormalizedPhone == "" {
			l.NormalizedPhone = domainLead.NormalizePhone(l.Phone)
		}
		if err := s.Save(context.Background(), l); err != nil {
			t.Fatalf("seed lead %s: %v", l.ID, err)
		}
	}
	return s
}

// TestQueryExpiringSoon_Window includes 2025-01-20 and excludes 2025-03-01 for a 30-day window.
func TestQueryExpiringSoon_Window(t *testing.T) {
	store := seedLeads(t, storagetest.OpenFile(t),
		domainLead.Lead{ID: "in", Name: "In", Phone: "9000000001", Status: domainLead.StatusConverted, ExpiryDate: date(2025, 1, 20)},
		domainLead.Lead{ID: "out", Name: "Out", Phone: "9000000002", Status: domainLead.StatusConverted, ExpiryDate: date(2025, 3, 1)},
		domainLead.Lead{ID: "first", Name: "First", Phone: "9000000003", Status: domainLead.StatusConverted, ExpiryDate: date(2025, 1, 5)},
		domainLead.Lead{ID: "gone", Name: "Gone", Phone: "9000000004", Status: domainLead.StatusConverted, ExpiryDate: date(2024, 12, 20)},
		domainLead.Lead{ID: "derived", Name: "Derived", Phone: "9000000005", Status: domainLead.StatusConverted,
			Membership: &domainLead.MembershipInfo{Plan: "1m", StartDate: date(2024, 12, 10)}},
		domainLead.Lead{ID: "unknown-plan", Name: "Xyz", Phone: "9000000006", Interest: "xyz", JoinDate: date(2024, 12, 10)},
	)
	deps := LeadDeps{LeadStore: store}

	soon, err := QueryExpiringSoon(context.Background(), ExpiryQuery{Days: 30, Now: now}, deps)
	if err != nil {
		t.Fatalf("QueryExpiringSoon: %v", err)
	}
	if got := expiringIDs(soon); got != "first,derived,in" {
		t.Errorf("expiring = %s", got)
	}

	bucket, _ := QueryExpiringSoon(context.Background(), ExpiryQuery{Days: 90, Year: 2025, Month: 3, Now: now}, deps)
	if got := expiringIDs(bucket); got != "out" {
		t.Errorf("march bucket = %s", got)
	}

	expired, _ := QueryExpired(context.Background(), ExpiryQuery{Now: now.AddDate(0, 2, 0)}, deps)
	if got := expiringIDs(expired); got != "out,in,derived,first,gone" {
		t.Errorf("expired = %s", got)
	}

	if _, err := QueryExpired(context.Background(), ExpiryQuery{Year: 2025, Month: 14}, deps); err == nil {
		t.Error("month 14 accepted")
	}
}

func expiringIDs(ls []ExpiringLead) string {
	ids := make([]string, len(ls))
	for i, l := range ls {
		ids[i] = l.ID
	}
	return strings.Join(ids, ",")
}

// TestQueryListLeads_Paging pages newest first and reports totals.
func TestQueryListLeads_Paging(t *testing.T) {
	var leads []domainLead.Lead
	for i := 0; i < 25; i++ {
		leads = append(leads, domainLead.Lead{
			ID: "l" + string(rune('a'+i)), Name: "Lead", Phone: "90000000" + string(rune('0'+i/10)) + string(rune('0'+i%10)),
			Status: domainLead.StatusNew, CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
	}
	store := seedLeads(t, storagetest.OpenFile(t), leads...)

	res, err := QueryListLeads(context.Background(), ListLeadsQuery{Page: 2, PerPage: 10, Now: now}, LeadDeps{LeadStore: store})
	if err != nil {
		t.Fatalf("QueryListLeads: %v", err)
	}
	if res.Page.Total != 25 || res.Page.TotalPages != 3 || len(res.Leads) != 10 {
		t.Errorf("page = %+v rows=%d", res.Page, len(res.Leads))
	}
	if res.Leads[0].ID != "lo" {
		t.Errorf("first row of page 2 = %s, want lo", res.Leads[0].ID)
	}
}

// TestQueryExportLeadsCSV writes a header and one row per lead.
func TestQueryExportLeadsCSV(t *testing.T) {
	store := seedLeads(t, storagetest.OpenFile(t),
		domainLead.Lead{ID: "a", Name: "Asha, R", Phone: "9000000001", Status: domainLead.StatusConverted,
			Membership: &domainLead.MembershipInfo{Plan: "3m", StartDate: date(2025, 1, 15)}},
	)
	var buf bytes.Buffer
	if err := QueryExportLeadsCSV(context.Background(), &buf, ExportLeadsQuery{Now: now}, LeadDeps{LeadStore: store}); err != nil {
		t.Fatalf("export: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "name" || rows[1][0] != "Asha, R" {
		t.Fatalf("rows = %v", rows)
	}
	if rows[1][6] != "3m" || rows[1][7] != "2025-01-15" || rows[1][8] != "2025-04-15" || rows[1][9] != "false" {
		t.Errorf("row = %v", rows[1])
	}
}

// TestQueryExportLeadsCSV_QuotesFormulaCells keeps spreadsheets from evaluating lead text.
func TestQueryExportLeadsCSV_QuotesFormulaCells(t *testing.T) {
	store := seedLeads(t, storagetest.OpenFile(t),
		domainLead.Lead{ID: "a", Name: "=HYPERLINK(\"x\")", Phone: "+919000000001", Source: "@ads", Interest: "-pt", Status: domainLead.StatusNew},
		domainLead.Lead{ID: "b", Name: "Bala", Phone: "9000000002", Source: "walk-in", Status: domainLead.StatusNew},
	)
	var buf bytes.Buffer
	if err := QueryExportLeadsCSV(context.Background(), &buf, ExportLeadsQuery{Now: now}, LeadDeps{LeadStore: store}); err != nil {
		t.Fatalf("export: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	byPhone := map[string][]string{}
	for _, r := range rows[1:] {
		byPhone[r[1]] = r
	}
	risky, ok := byPhone["'+919000000001"]
	if !ok {
		t.Fatalf("rows = %v", rows)
	}
	if risky[0] != `'=HYPERLINK("x")` || risky[3] != "'@ads" || risky[4] != "'-pt" {
		t.Errorf("risky row = %v", risky)
	}
	if plain := byPhone["9000000002"]; len(plain) == 0 || plain[0] != "Bala" || plain[3] != "walk-in" {
		t.Errorf("plain row = %v", plain)
	}
}

// TestMembershipHistoryForPhone includes memberships whose phone moved away from the query.
func TestMembershipHistoryForPhone(t *testing.T) {
	ctx := context.Background()
	store := membershipStore.NewFileStore(storagetest.OpenFile(t))
	at := now
	mk := func(id, phone string) domainMembership.Membership {
		m := domainMembership.Membership{ID: id, Name: "M " + id, Phone: phone, Category: "normal", Label: "1m", Price: 100, CreatedAt: at, UpdatedAt: at}
		if err := store.Create(ctx, m, domainMembership.NewCreateEntry("h-"+id, m, at)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
		return m
	}
	moved := mk("m1", "+91 90000 00001")
	mk("m2", "9000000002")
	mk("m3", "9000000001")

	before := moved
	moved.Phone = "9000000009"
	entry := domainMembership.History{
		ID: "h-move", MembershipID: "m1", MembershipLabel: "1m", Action: domainMembership.ActionUpdate,
		Changes:    map[string]domainMembership.Change{"phone": {From: before.Phone, To: moved.Phone}},
		OccurredAt: at.Add(time.Minute),
	}
	if err := store.Update(ctx, moved, &entry); err != nil {
		t.Fatalf("move phone: %v", err)
	}

	deps := MembershipDeps{MembershipStore: store}
	hist, err := QueryMembershipHistoryForPhone(ctx, MembershipHistoryQuery{Phone: "9000000001"}, deps)
	if err != nil {
		t.Fatalf("for phone: %v", err)
	}
	seen := map[string]bool{}
	for _, h := range hist {
		seen[h.MembershipID] = true
	}
	if !seen["m1"] || !seen["m3"] || seen["m2"] || len(hist) != 3 {
		t.Errorf("history = %+v", hist)
	}
	if hist[0].ID != "h-move" {
		t.Errorf("newest first: got %s", hist[0].ID)
	}

	none, _ := QueryMembershipHistoryForPhone(ctx, MembershipHistoryQuery{Phone: "n/a"}, deps)
	if len(none) != 0 {
		t.Errorf("blank phone returned %d", len(none))
	}
	all, _ := QueryMembershipHistory(ctx, MembershipHistoryQuery{Limit: 2}, deps)
	if len(all) != 2 {
		t.Errorf("limit 2 returned %d", len(all))
	}
	byID, _ := QueryMembershipHistoryForID(ctx, MembershipHistoryQuery{ID: "m2"}, deps)
	if len(byID) != 1 || byID[0].MembershipID != "m2" {
		t.Errorf("for id = %+v", byID)
	}
}

// TestQueryDashboard counts members, month revenue and plan categories.
func TestQueryDashboard(t *testing.T) {
	db := storagetest.OpenFile(t)
	leads := seedLeads(t, db,
		domainLead.Lead{ID: "jan", Name: "Jan", Phone: "9000000001", Status: domainLead.StatusConverted, ConvertedAt: date(2025, 1, 3),
			Membership: &domainLead.MembershipInfo{Plan: "1m", Amount: amount(1500), StartDate: date(2025, 1, 3)}},
		domainLead.Lead{ID: "dec", Name: "Dec", Phone: "9000000002", Status: domainLead.StatusConverted, ConvertedAt: date(2024, 12, 1),
			Membership: &domainLead.MembershipInfo{Plan: "1m", Amount: amount(900), StartDate: date(2024, 12, 1)}},
		domainLead.Lead{ID: "prospect", Name: "Prospect", Phone: "9000000003", Status: domainLead.StatusNew},
	)
	ms := membershipStore.NewFileStore(db)
	for i, cat := range []string{"VIP", "premium", "basic"} {
		m := domainMembership.Membership{ID: "m" + string(rune('1'+i)), Category: cat, Label: "1m", Name: domainMembership.TemplateName, CreatedAt: now}
		ms.Create(context.Background(), m, domainMembership.NewCreateEntry("h"+m.ID, m, now))
	}
	trainers := trainerStore.NewFileStore(db)
	trainers.Save(context.Background(), domainTrainer.Trainer{ID: "t1", Name: "Ravi", CreatedAt: now, UpdatedAt: now})

	res, err := QueryDashboard(context.Background(), DashboardQuery{Now: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
		DashboardDeps{LeadStore: leads, MembershipStore: ms, TrainerStore: trainers})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if res.Year != 2025 || res.Month != 1 || res.TotalMembers != 2 || res.NewMembersInMonth != 1 || res.Revenue != 1500 {
		t.Errorf("dashboard = %+v", res)
	}
	if res.Expired != 1 || res.ExpiringSoon != 1 || res.TotalLeads != 3 || res.Trainers != 1 {
		t.Errorf("counts = %+v", res)
	}
	if res.PlansByCategory["premium"] != 2 || res.PlansByCategory["normal"] != 1 {
		t.Errorf("categories = %v", res.PlansByCategory)
	}
}

// TestQueryMonthlyPerformance fills every day and averages over elapsed days.
func TestQueryMonthlyPerformance(t *testing.T) {
	db := storagetest.OpenFile(t)
	leads := seedLeads(t, db,
		domainLead.Lead{ID: "a", Name: "A", Phone: "9000000001", Status: domainLead.StatusConverted, ConvertedAt: date(2025, 2, 3),
			Membership: &domainLead.MembershipInfo{Amount: amount(1000)}},
		domainLead.Lead{ID: "b", Name: "B", Phone: "9000000002", Status: domainLead.StatusConverted, ConvertedAt: date(2025, 2, 3),
			Membership: &domainLead.MembershipInfo{Amount: amount(500.5)}},
		domainLead.Lead{ID: "c", Name: "C", Phone: "9000000003", Status: domainLead.StatusConverted, ConvertedAt: date(2025, 3, 1),
			Membership: &domainLead.MembershipInfo{Amount: amount(9999)}},
	)
	perf := performanceStore.NewFileStore(db)
	target := domainPerformance.Target{Year: 2025, Month: 2}
	target.SetTarget(50000, now)
	perf.Save(context.Background(), target)
	deps := PerformanceDeps{LeadStore: leads, PerformanceStore: perf}

	m, err := QueryMonthlyPerformance(context.Background(), PerformanceQuery{Year: 2025, Month: 2, Now: time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)}, deps)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if m.Target != 50000 || m.AchievedRevenue != 1500.5 || m.ConvertedCount != 2 || len(m.TargetHistory) != 1 {
		t.Errorf("monthly = %+v", m)
	}
	if len(m.DailyRevenue) != 28 || m.DailyRevenue[2].Revenue != 1500.5 || m.DailyRevenue[0].Revenue != 0 {
		t.Errorf("daily = %+v", m.DailyRevenue)
	}
	if m.AverageRevenuePerDay != 150.05 {
		t.Errorf("average = %v, want 150.05", m.AverageRevenuePerDay)
	}

	future, _ := QueryMonthlyPerformance(context.Background(), PerformanceQuery{Year: 2026, Month: 1, Now: now}, deps)
	if future.Target != 0 || future.AverageRevenuePerDay != 0 || future.TargetHistory == nil {
		t.Errorf("future month = %+v", future)
	}

	var buf bytes.Buffer
	if err := WritePerformanceCSV(&buf, m); err != nil {
		t.Fatalf("csv: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "day,revenue\n1,0.00\n") || !strings.Contains(out, "3,1500.50\n") || !strings.Contains(out, "achieved,1500.50\n") {
		t.Errorf("csv = %q", out)
	}
}

// TestQueryMyMembership returns the caller's lead, expiry and visits.
func TestQueryMyMembership(t *testing.T) {
	db := storagetest.OpenFile(t)
	leads := seedLeads(t, db, domainLead.Lead{ID: "a", Name: "Asha", Phone: "9876543210", Status: domainLead.StatusConverted,
		Membership: &domainLead.MembershipInfo{Plan: "3m", StartDate: date(2024, 9, 1)}})
	att := attendanceStore.NewFileStore(db)
	att.Save(context.Background(), domainAttendance.New("v1", "a", "Asha", "9876543210", now))
	deps := MyMembershipDeps{LeadStore: leads, AttendanceStore: att}

	res, err := QueryMyMembership(context.Background(), MyMembershipQuery{Phone: "9876543210", Now: now}, deps)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if res.Lead == nil || !res.Expired || res.ExpiresAt.Format("2006-01-02") != "2024-12-01" || len(res.RecentVisits) != 1 {
		t.Errorf("me = %+v", res)
	}

	stranger, err := QueryMyMembership(context.Background(), MyMembershipQuery{Phone: "9000000000", Now: now}, deps)
	if err != nil || stranger.Lead != nil || stranger.Expired {
		t.Errorf("stranger = %+v, %v", stranger, err)
	}
}

// TestQueryBenefits renders markdown and tolerates an unsaved document.
func TestQueryBenefits(t *testing.T) {
	store := settingsStore.NewFileStore(storagetest.OpenFile(t))
	empty, err := QueryBenefits(context.Background(), store)
	if err != nil || empty.Markdown != "" || empty.UpdatedAt != nil {
		t.Errorf("empty = %+v, %v", empty, err)
	}

	store.SaveBenefits(context.Background(), domainSettings.Benefits{Markdown: "## Perks\n\n- Sauna", UpdatedAt: now})
	got, err := QueryBenefits(context.Background(), store)
	if err != nil {
		t.Fatalf("benefits: %v", err)
	}
	if !strings.Contains(got.HTML, "<h2>Perks</h2>") || !strings.Contains(got.HTML, "<li>Sauna</li>") {
		t.Errorf("html = %q", got.HTML)
	}
}

// TestQueryAttendanceByDate rejects malformed dates.
func TestQueryAttendanceByDate(t *testing.T) {
	att := attendanceStore.NewFileStore(storagetest.OpenFile(t))
	att.Save(context.Background(), domainAttendance.New("v1", "a", "Asha", "9876543210", now))

	rows, err := QueryAttendanceByDate(context.Background(), AttendanceByDateQuery{Now: now}, att)
	if err != nil || len(rows) != 1 {
		t.Errorf("today = %+v, %v", rows, err)
	}
	if _, err := QueryAttendanceByDate(context.Background(), AttendanceByDateQuery{Date: "01/01/2025"}, att); err == nil {
		t.Error("bad date accepted")
	}
}
