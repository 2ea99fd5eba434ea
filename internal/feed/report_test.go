package feed

import (
	"context"
	"testing"

	"github.com/fritter/fritter/internal/models"
)

func newReportLedger(store *memStore, clock Clock) *ReportLedger {
	return NewReportLedger(store, clock, DefaultPolicy(), testLogger())
}

func TestReportIncrementsTally(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	author := seedUser(store, "author", false)
	reporter := seedUser(store, "reporter", false)
	freet := seedFreet(store, author, "hello", testTime)

	ledger := newReportLedger(store, &fakeClock{now: testTime})
	got, err := ledger.Report(ctx, freet.ID, reporter, models.ReportSpam)
	if err != nil {
		t.Fatalf("Report() error: %v", err)
	}

	if got.SpamReports != 1 {
		t.Errorf("SpamReports = %d, want 1", got.SpamReports)
	}
	if got.TotalReports() != 1 {
		t.Errorf("TotalReports() = %d, want 1", got.TotalReports())
	}
	category, ok, _ := store.GetReport(ctx, reporter, freet.ID)
	if !ok || category != models.ReportSpam {
		t.Errorf("ledger = (%d, %v), want (spam, true)", category, ok)
	}
}

func TestReportWithdrawalRestoresOriginalCategory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	author := seedUser(store, "author", false)
	reporter := seedUser(store, "reporter", false)
	freet := seedFreet(store, author, "hello", testTime)

	ledger := newReportLedger(store, &fakeClock{now: testTime})

	if _, err := ledger.Report(ctx, freet.ID, reporter, models.ReportMisinformation); err != nil {
		t.Fatal(err)
	}
	// Reporting again withdraws the original report, whatever category the
	// second request names.
	got, err := ledger.Report(ctx, freet.ID, reporter, models.ReportSpam)
	if err != nil {
		t.Fatal(err)
	}

	if got.MisinformationReports != 0 {
		t.Errorf("MisinformationReports = %d, want 0", got.MisinformationReports)
	}
	if got.SpamReports != 0 {
		t.Errorf("SpamReports = %d, want 0", got.SpamReports)
	}
	if _, ok, _ := store.GetReport(ctx, reporter, freet.ID); ok {
		t.Error("expected report ledger entry to be removed")
	}
}

func TestReportTallyMatchesOpenLedgerEntries(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	author := seedUser(store, "author", false)
	freet := seedFreet(store, author, "hello", testTime)
	reporters := []int64{
		seedUser(store, "r1", false),
		seedUser(store, "r2", false),
		seedUser(store, "r3", false),
	}

	ledger := newReportLedger(store, &fakeClock{now: testTime})

	categories := []int16{models.ReportSpam, models.ReportOffensive, models.ReportSpam}
	for i, reporter := range reporters {
		if _, err := ledger.Report(ctx, freet.ID, reporter, categories[i]); err != nil {
			t.Fatal(err)
		}
	}
	// r2 withdraws
	if _, err := ledger.Report(ctx, freet.ID, reporters[1], models.ReportOffensive); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetFreet(ctx, freet.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalReports() != store.openReportCount(freet.ID) {
		t.Errorf("TotalReports() = %d, open ledger entries = %d",
			got.TotalReports(), store.openReportCount(freet.ID))
	}
	if got.SpamReports != 2 || got.OffensiveReports != 0 {
		t.Errorf("tallies = (spam %d, offensive %d), want (2, 0)",
			got.SpamReports, got.OffensiveReports)
	}
}

func TestReportAuditTriggerPoint(t *testing.T) {
	// With downCount fixed at 12, threshold is totalReports > 1.2: the
	// first report must not trigger, the second must.
	ctx := context.Background()
	store := newMemStore()
	author := seedUser(store, "author", false)
	freet := seedFreet(store, author, "hello", testTime)
	freet.UpCount = 3
	freet.DownCount = 12
	if err := store.SaveFreet(ctx, freet); err != nil {
		t.Fatal(err)
	}

	clock := &fakeClock{now: testTime}
	ledger := newReportLedger(store, clock)

	first, err := ledger.Report(ctx, freet.ID, seedUser(store, "r1", false), models.ReportSpam)
	if err != nil {
		t.Fatal(err)
	}
	if first.AuditState != models.AuditNone {
		t.Fatalf("audit triggered after 1 report, want trigger at 2")
	}

	second, err := ledger.Report(ctx, freet.ID, seedUser(store, "r2", false), models.ReportSpam)
	if err != nil {
		t.Fatal(err)
	}
	if second.AuditState != models.AuditTesting {
		t.Fatal("audit did not trigger after 2nd report")
	}
	if second.AuditCategory != models.ReportSpam {
		t.Errorf("AuditCategory = %s, want spam",
			models.ReportCategoryName(second.AuditCategory))
	}
	if second.Cover != models.CoverSpam {
		t.Errorf("Cover = %s, want spam", models.CoverName(second.Cover))
	}
	if !second.AuditStartedAt.Valid || !second.AuditStartedAt.Time.Equal(testTime) {
		t.Errorf("AuditStartedAt = %v, want %v", second.AuditStartedAt, testTime)
	}
	if second.AuditYes != 0 || second.AuditNo != 0 {
		t.Errorf("audit tally = (%d, %d), want (0, 0)", second.AuditYes, second.AuditNo)
	}
}

func TestReportNoTriggerBelowDownvoteFloor(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	author := seedUser(store, "author", false)
	freet := seedFreet(store, author, "hello", testTime)
	freet.DownCount = 10 // floor is strict: downCount must exceed 10
	if err := store.SaveFreet(ctx, freet); err != nil {
		t.Fatal(err)
	}

	ledger := newReportLedger(store, &fakeClock{now: testTime})
	for i, name := range []string{"r1", "r2", "r3", "r4", "r5"} {
		got, err := ledger.Report(ctx, freet.ID, seedUser(store, name, false), models.ReportSpam)
		if err != nil {
			t.Fatal(err)
		}
		if got.AuditState != models.AuditNone {
			t.Fatalf("audit triggered after report %d with downCount 10", i+1)
		}
	}
}

func TestReportTopCategoryTieBreak(t *testing.T) {
	// On a tally tie the cover picks the first category in enumeration
	// order spam, misinformation, offensive.
	ctx := context.Background()
	store := newMemStore()
	author := seedUser(store, "author", false)
	freet := seedFreet(store, author, "hello", testTime)
	freet.DownCount = 11
	freet.MisinformationReports = 1
	if err := store.SaveFreet(ctx, freet); err != nil {
		t.Fatal(err)
	}
	// Seed the matching ledger row for the existing misinformation report
	if err := store.SetReport(ctx, seedUser(store, "r0", false), freet.ID, models.ReportMisinformation); err != nil {
		t.Fatal(err)
	}

	ledger := newReportLedger(store, &fakeClock{now: testTime})
	got, err := ledger.Report(ctx, freet.ID, seedUser(store, "r1", false), models.ReportSpam)
	if err != nil {
		t.Fatal(err)
	}

	if got.AuditState != models.AuditTesting {
		t.Fatal("audit did not trigger")
	}
	if got.AuditCategory != models.ReportSpam {
		t.Errorf("AuditCategory = %s, want spam on tie",
			models.ReportCategoryName(got.AuditCategory))
	}
}

func TestReportClosedDuringAudit(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	author := seedUser(store, "author", false)
	reporter := seedUser(store, "reporter", false)
	freet := seedFreet(store, author, "hello", testTime)
	freet.AuditState = models.AuditTesting
	if err := store.SaveFreet(ctx, freet); err != nil {
		t.Fatal(err)
	}

	ledger := newReportLedger(store, &fakeClock{now: testTime})
	if _, err := ledger.Report(ctx, freet.ID, reporter, models.ReportSpam); !IsConflict(err) {
		t.Errorf("got %v, want Conflict", err)
	}
}

func TestReportErrors(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	author := seedUser(store, "author", false)
	reporter := seedUser(store, "reporter", false)
	freet := seedFreet(store, author, "hello", testTime)

	ledger := newReportLedger(store, &fakeClock{now: testTime})

	if _, err := ledger.Report(ctx, 999, reporter, models.ReportSpam); !IsNotFound(err) {
		t.Errorf("missing freet: got %v, want NotFound", err)
	}
	if _, err := ledger.Report(ctx, freet.ID, 999, models.ReportSpam); !IsNotFound(err) {
		t.Errorf("missing user: got %v, want NotFound", err)
	}
	if _, err := ledger.Report(ctx, freet.ID, reporter, 42); !IsInvalidArgument(err) {
		t.Errorf("bad category: got %v, want InvalidArgument", err)
	}
}
