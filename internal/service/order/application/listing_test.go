package application

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	"verdant/internal/service/order/domain"
)

type fakeScheduler struct{ scheduled []string }

func (s *fakeScheduler) ScheduleExpiryCheck(_ context.Context, listingID string, _ time.Time) error {
	s.scheduled = append(s.scheduled, listingID)
	return nil
}
func (s *fakeScheduler) Close() error { return nil }

type fakeRuleEngine struct {
	result bool
	rules  []string
}

func (e *fakeRuleEngine) Evaluate(_ context.Context, rule string, _ map[string]interface{}) (bool, error) {
	e.rules = append(e.rules, rule)
	return e.result, nil
}

func newListingFixture(t *testing.T, fired bool) (*ListingApplicationService, *fakeListingRepo, *fakeScheduler, *fakeRuleEngine) {
	t.Helper()
	repo := newFakeListingRepo()
	scheduler := &fakeScheduler{}
	rules := &fakeRuleEngine{result: fired}
	svc := NewListingApplicationService(repo, otel.Tracer("test"), scheduler, rules, `now - listing.published_at >= duration("720h")`)
	return svc, repo, scheduler, rules
}

func TestPublishListing_SchedulesExpiryCheck(t *testing.T) {
	svc, repo, scheduler, _ := newListingFixture(t, false)

	resp, err := svc.PublishListing(context.Background(), &PublishListingRequest{
		SellerID: "seller-1",
		Title:    "Philodendron gloriosum",
	})
	if err != nil {
		t.Fatalf("PublishListing() error = %v", err)
	}
	if resp.Status != domain.ListingActive {
		t.Errorf("new listing status = %s, want active", resp.Status)
	}
	if len(scheduler.scheduled) != 1 || scheduler.scheduled[0] != resp.ListingID {
		t.Errorf("expiry check not scheduled for %s: %v", resp.ListingID, scheduler.scheduled)
	}
	if _, err := repo.FindByID(context.Background(), resp.ListingID); err != nil {
		t.Errorf("listing not persisted: %v", err)
	}
}

func TestProcessExpiryCheck_RuleFired(t *testing.T) {
	svc, repo, _, _ := newListingFixture(t, true)
	listing, _ := domain.NewListing("seller-1", "Hoya kerrii")
	repo.Save(context.Background(), listing)

	err := svc.ProcessExpiryCheck(context.Background(), &domain.ListingExpiryCheckRequested{
		ListingID:   listing.ID,
		PublishedAt: listing.PublishedAt,
	})
	if err != nil {
		t.Fatalf("ProcessExpiryCheck() error = %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), listing.ID)
	if stored.Status != domain.ListingExpired {
		t.Errorf("listing status = %s, want expired", stored.Status)
	}
}

func TestProcessExpiryCheck_SkipsReservedListing(t *testing.T) {
	svc, repo, _, _ := newListingFixture(t, true)
	listing, _ := domain.NewListing("seller-1", "Hoya kerrii")
	listing.SetStatus(domain.ListingReserved)
	repo.Save(context.Background(), listing)

	if err := svc.ProcessExpiryCheck(context.Background(), &domain.ListingExpiryCheckRequested{ListingID: listing.ID}); err != nil {
		t.Fatalf("ProcessExpiryCheck() error = %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), listing.ID)
	if stored.Status != domain.ListingReserved {
		t.Errorf("reserved listing mutated to %s by expiry check", stored.Status)
	}
}

func TestProcessExpiryCheck_MissingListingIsNoop(t *testing.T) {
	svc, _, _, _ := newListingFixture(t, true)
	if err := svc.ProcessExpiryCheck(context.Background(), &domain.ListingExpiryCheckRequested{ListingID: "gone"}); err != nil {
		t.Fatalf("ProcessExpiryCheck() on missing listing = %v, want nil", err)
	}
}

func TestRemoveListing_RefusesOngoingTransaction(t *testing.T) {
	svc, repo, _, _ := newListingFixture(t, false)
	listing, _ := domain.NewListing("seller-1", "Hoya kerrii")
	listing.SetStatus(domain.ListingReserved)
	repo.Save(context.Background(), listing)

	if err := svc.RemoveListing(context.Background(), listing.ID); err == nil {
		t.Fatal("RemoveListing() on reserved listing succeeded, want error")
	}
}
