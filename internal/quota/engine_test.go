package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeberg.org/printableperks/server/internal/datekey"
)

// resolver fake with a fixed entitlement or error
type fakeResolver struct {
	ent Entitlement
	err error
}

func (f *fakeResolver) EntitlementFor(_ context.Context, _ string) (Entitlement, error) {
	if f.err != nil {
		return Free, f.err
	}

	return f.ent, nil
}

// stats store fake holding a single latest row per the store contract
type fakeStats struct {
	latest     *StatSnapshot
	latestErr  error
	monthlyErr error
	recordErr  error
}

func (f *fakeStats) Latest(_ context.Context, _ string) (*StatSnapshot, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}

	return f.latest, nil
}

func (f *fakeStats) MonthlyUsage(_ context.Context, _ string, monthStart time.Time) (int, error) {
	if f.monthlyErr != nil {
		return 0, f.monthlyErr
	}

	if f.latest != nil && !f.latest.CreatedAt.Before(monthStart) {
		return f.latest.MonthlyCount, nil
	}

	return 0, nil
}

func (f *fakeStats) Record(_ context.Context, _ string, now time.Time) error {
	if f.recordErr != nil {
		return f.recordErr
	}

	switch {
	case f.latest == nil:
		f.latest = &StatSnapshot{DailyCount: 1, MonthlyCount: 1, CreatedAt: now, UpdatedAt: now}
	case datekey.SameDay(f.latest.CreatedAt, now):
		f.latest.DailyCount++
		f.latest.MonthlyCount++
		f.latest.UpdatedAt = now
	case datekey.SameMonth(f.latest.CreatedAt, now):
		f.latest = &StatSnapshot{DailyCount: 1, MonthlyCount: f.latest.MonthlyCount + 1, CreatedAt: now, UpdatedAt: now}
	default:
		f.latest = &StatSnapshot{DailyCount: 1, MonthlyCount: 1, CreatedAt: now, UpdatedAt: now}
	}

	return nil
}

// anonymous store fake that always fails
type failingAnonymousStore struct{}

func (failingAnonymousStore) Count(_ context.Context, _ string, _ datekey.DayKey) (int, error) {
	return 0, errors.New("redis unreachable")
}

func (failingAnonymousStore) Increment(_ context.Context, _ string, _ datekey.DayKey) (int, error) {
	return 0, errors.New("redis unreachable")
}

func newFreeEngine(stats *fakeStats) *Engine {
	return NewEngine(NewMemoryAnonymousStore(), &fakeResolver{}, stats)
}

func TestEngine_AnonymousHappyPath(t *testing.T) {
	ctx := context.Background()
	engine := newFreeEngine(&fakeStats{})
	caller := AnonymousCaller("device1")

	// fresh device: available with the full daily allowance
	if !engine.CheckAvailability(ctx, caller) {
		t.Fatal("expected fresh device to be available")
	}

	stats := engine.GetStats(ctx, caller)
	if stats.RemainingToday != DailyLimitAnonymous {
		t.Errorf("remaining = %d, want %d", stats.RemainingToday, DailyLimitAnonymous)
	}

	for i := 0; i < DailyLimitAnonymous; i++ {
		if err := engine.RecordGeneration(ctx, caller); err != nil {
			t.Fatalf("record %d failed: %v", i, err)
		}
	}

	if engine.CheckAvailability(ctx, caller) {
		t.Error("expected device to be blocked at the daily limit")
	}

	stats = engine.GetStats(ctx, caller)

	if stats.RemainingToday != 0 {
		t.Errorf("remaining = %d, want 0", stats.RemainingToday)
	}

	if stats.FreeGenerationAvailable {
		t.Error("expected free_generation_available = false at the limit")
	}

	if stats.IsPaidUser || stats.MonthlyLimit != nil || stats.RemainingMonthly != nil {
		t.Error("anonymous stats should not carry paid fields")
	}

	if stats.LastGeneratedAt != nil {
		t.Error("anonymous stats should not track last_generated_at")
	}
}

func TestEngine_AnonymousDevicesAreIsolated(t *testing.T) {
	ctx := context.Background()
	engine := newFreeEngine(&fakeStats{})

	for i := 0; i < DailyLimitAnonymous; i++ {
		if err := engine.RecordGeneration(ctx, AnonymousCaller("device1")); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	if !engine.CheckAvailability(ctx, AnonymousCaller("device2")) {
		t.Error("expected a different device to be unaffected")
	}
}

func TestEngine_RegisteredFreeMonotonicity(t *testing.T) {
	ctx := context.Background()
	stats := &fakeStats{}
	engine := newFreeEngine(stats)
	caller := RegisteredCaller("user1")

	before := engine.GetStats(ctx, caller)

	const n = 3
	for i := 0; i < n; i++ {
		if err := engine.RecordGeneration(ctx, caller); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	after := engine.GetStats(ctx, caller)

	if after.Count != before.Count+n {
		t.Errorf("count = %d, want %d", after.Count, before.Count+n)
	}

	if after.RemainingToday != DailyLimitRegisteredFree-n {
		t.Errorf("remaining = %d, want %d", after.RemainingToday, DailyLimitRegisteredFree-n)
	}

	if after.LastGeneratedAt == nil {
		t.Error("expected last_generated_at to be set")
	}
}

func TestEngine_RegisteredFreeBlockedAtDailyLimit(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	stats := &fakeStats{latest: &StatSnapshot{
		DailyCount:   DailyLimitRegisteredFree,
		MonthlyCount: DailyLimitRegisteredFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}}
	engine := newFreeEngine(stats)
	caller := RegisteredCaller("user1")

	if engine.CheckAvailability(ctx, caller) {
		t.Error("expected user to be blocked at the daily limit")
	}

	got := engine.GetStats(ctx, caller)

	if got.RemainingToday != 0 || got.FreeGenerationAvailable {
		t.Errorf("stats = %+v, want zero remaining and unavailable", got)
	}
}

func TestEngine_DailyResetWithoutExplicitReset(t *testing.T) {
	ctx := context.Background()
	yesterday := time.Now().Add(-24 * time.Hour)

	// at the limit yesterday; today's usage is implicitly zero
	stats := &fakeStats{latest: &StatSnapshot{
		DailyCount:   DailyLimitRegisteredFree,
		MonthlyCount: DailyLimitRegisteredFree,
		CreatedAt:    yesterday,
		UpdatedAt:    yesterday,
	}}
	engine := newFreeEngine(stats)
	caller := RegisteredCaller("user1")

	if !engine.CheckAvailability(ctx, caller) {
		t.Error("expected availability on the next day")
	}

	got := engine.GetStats(ctx, caller)

	if got.RemainingToday != DailyLimitRegisteredFree {
		t.Errorf("remaining = %d, want %d", got.RemainingToday, DailyLimitRegisteredFree)
	}

	if !got.FreeGenerationAvailable {
		t.Error("expected free_generation_available = true on the next day")
	}
}

func TestEngine_MonthlyCarryAcrossDays(t *testing.T) {
	ctx := context.Background()
	yesterday := time.Now().Add(-24 * time.Hour)

	if !datekey.SameMonth(yesterday, time.Now()) {
		t.Skip("test day is the first of the month")
	}

	stats := &fakeStats{latest: &StatSnapshot{
		DailyCount:   2,
		MonthlyCount: 2,
		CreatedAt:    yesterday,
		UpdatedAt:    yesterday,
	}}
	engine := newFreeEngine(stats)
	caller := RegisteredCaller("user1")

	if err := engine.RecordGeneration(ctx, caller); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	got := engine.GetStats(ctx, caller)

	// monthly total carries forward; the daily window starts over
	if got.Count != 3 {
		t.Errorf("count = %d, want 3", got.Count)
	}

	if got.RemainingToday != DailyLimitRegisteredFree-1 {
		t.Errorf("remaining = %d, want %d", got.RemainingToday, DailyLimitRegisteredFree-1)
	}
}

func TestEngine_PaidUserIgnoresDailyGate(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	resolver := &fakeResolver{ent: Entitlement{Paid: true, PlanName: "Creator", MonthlyLimit: 300}}

	// far past any daily ceiling, but well under the monthly limit
	stats := &fakeStats{latest: &StatSnapshot{
		DailyCount:   50,
		MonthlyCount: 120,
		CreatedAt:    now,
		UpdatedAt:    now,
	}}
	engine := NewEngine(NewMemoryAnonymousStore(), resolver, stats)
	caller := RegisteredCaller("user1")

	if !engine.CheckAvailability(ctx, caller) {
		t.Error("expected paid user to be available regardless of daily count")
	}

	got := engine.GetStats(ctx, caller)

	if got.RemainingToday != UnlimitedDailySentinel {
		t.Errorf("remaining_today = %d, want sentinel %d", got.RemainingToday, UnlimitedDailySentinel)
	}

	if !got.IsPaidUser {
		t.Error("expected is_paid_user = true")
	}
}

func TestEngine_PaidExhaustion(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	resolver := &fakeResolver{ent: Entitlement{Paid: true, PlanName: "Creator", MonthlyLimit: 300}}
	stats := &fakeStats{latest: &StatSnapshot{
		DailyCount:   1,
		MonthlyCount: 299,
		CreatedAt:    now,
		UpdatedAt:    now,
	}}
	engine := NewEngine(NewMemoryAnonymousStore(), resolver, stats)
	caller := RegisteredCaller("user1")

	if !engine.CheckAvailability(ctx, caller) {
		t.Fatal("expected availability at 299/300")
	}

	got := engine.GetStats(ctx, caller)
	if got.RemainingMonthly == nil || *got.RemainingMonthly != 1 {
		t.Fatalf("remaining_monthly = %v, want 1", got.RemainingMonthly)
	}

	if err := engine.RecordGeneration(ctx, caller); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	if engine.CheckAvailability(ctx, caller) {
		t.Error("expected paid user to be blocked at the monthly limit")
	}

	got = engine.GetStats(ctx, caller)

	if got.RemainingMonthly == nil || *got.RemainingMonthly != 0 {
		t.Errorf("remaining_monthly = %v, want 0", got.RemainingMonthly)
	}

	if got.FreeGenerationAvailable {
		t.Error("expected free_generation_available = false when monthly quota is exhausted")
	}

	if got.RemainingToday != UnlimitedDailySentinel {
		t.Errorf("remaining_today = %d, want sentinel (daily gate inapplicable)", got.RemainingToday)
	}

	if got.MonthlyLimit == nil || *got.MonthlyLimit != 300 {
		t.Errorf("monthly_limit = %v, want 300", got.MonthlyLimit)
	}
}

func TestEngine_FailsClosedOnStatsError(t *testing.T) {
	ctx := context.Background()
	stats := &fakeStats{latestErr: errors.New("connection refused")}
	engine := newFreeEngine(stats)
	caller := RegisteredCaller("user1")

	if engine.CheckAvailability(ctx, caller) {
		t.Error("expected unavailable on storage error")
	}

	got := engine.GetStats(ctx, caller)

	if got.FreeGenerationAvailable || got.RemainingToday != 0 {
		t.Errorf("stats = %+v, want exhausted", got)
	}
}

func TestEngine_FailsClosedOnAnonymousStoreError(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(failingAnonymousStore{}, &fakeResolver{}, &fakeStats{})
	caller := AnonymousCaller("device1")

	if engine.CheckAvailability(ctx, caller) {
		t.Error("expected unavailable on storage error")
	}

	got := engine.GetStats(ctx, caller)

	if got.FreeGenerationAvailable || got.RemainingToday != 0 {
		t.Errorf("stats = %+v, want exhausted", got)
	}

	if err := engine.RecordGeneration(ctx, caller); err == nil {
		t.Error("expected record error to surface for logging")
	}
}

func TestEngine_SubscriptionLookupFailureFallsBackToFreeTier(t *testing.T) {
	ctx := context.Background()
	resolver := &fakeResolver{err: errors.New("subscriptions table unreachable")}
	engine := NewEngine(NewMemoryAnonymousStore(), resolver, &fakeStats{})
	caller := RegisteredCaller("user1")

	// fail toward free, never toward unlimited
	if !engine.CheckAvailability(ctx, caller) {
		t.Error("expected free-tier availability when subscription lookup fails")
	}

	got := engine.GetStats(ctx, caller)

	if got.IsPaidUser {
		t.Error("expected is_paid_user = false when subscription lookup fails")
	}

	if got.RemainingToday != DailyLimitRegisteredFree {
		t.Errorf("remaining = %d, want free-tier allowance", got.RemainingToday)
	}
}

func TestEngine_CheckWithoutRecordDoesNotCharge(t *testing.T) {
	ctx := context.Background()
	stats := &fakeStats{}
	engine := newFreeEngine(stats)
	caller := RegisteredCaller("user1")

	for i := 0; i < 10; i++ {
		if !engine.CheckAvailability(ctx, caller) {
			t.Fatal("availability changed without a recorded generation")
		}
	}

	got := engine.GetStats(ctx, caller)

	if got.Count != 0 || got.RemainingToday != DailyLimitRegisteredFree {
		t.Errorf("stats = %+v, want untouched allowance", got)
	}
}
