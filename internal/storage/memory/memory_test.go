package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/shelfswap/shelfswap-api/internal/models"
	"github.com/shelfswap/shelfswap-api/internal/storage"
)

func seedListing(t *testing.T, s *Store, ownerID uuid.UUID) *models.Listing {
	t.Helper()
	l := &models.Listing{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     "Frankenstein",
		Author:    "Mary Shelley",
		Condition: models.ConditionOld,
		Price:     500,
	}
	if err := s.CreateListing(context.Background(), l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	return l
}

// A caller probing someone else's listing must see the same error as
// probing a listing that does not exist.
func TestOwnerMutationsDoNotRevealForeignListings(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	owner := uuid.New()
	stranger := uuid.New()
	l := seedListing(t, s, owner)
	missing := uuid.New()

	upd := models.ListingUpdate{Title: "x", Author: "y", Condition: models.ConditionNew, Price: 1}

	tests := []struct {
		name string
		call func(id, caller uuid.UUID) error
	}{
		{"UpdateListing", func(id, caller uuid.UUID) error {
			_, err := s.UpdateListing(ctx, id, caller, upd)
			return err
		}},
		{"MarkExchanged", func(id, caller uuid.UUID) error {
			_, err := s.MarkExchanged(ctx, id, caller)
			return err
		}},
		{"DeleteListing", func(id, caller uuid.UUID) error {
			_, err := s.DeleteListing(ctx, id, caller)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			foreignErr := tt.call(l.ID, stranger)
			missingErr := tt.call(missing, stranger)
			if !errors.Is(foreignErr, storage.ErrNotFound) {
				t.Fatalf("%s on foreign listing = %v, want ErrNotFound", tt.name, foreignErr)
			}
			if !errors.Is(missingErr, storage.ErrNotFound) {
				t.Fatalf("%s on missing listing = %v, want ErrNotFound", tt.name, missingErr)
			}
		})
	}

	got, err := s.GetListing(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if got.Title != "Frankenstein" || got.Status != models.ListingStatusAvailable {
		t.Fatalf("listing mutated by forbidden calls: %+v", got)
	}
}

func TestMarkExchangedIsOneWay(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	owner := uuid.New()
	l := seedListing(t, s, owner)

	if _, err := s.MarkExchanged(ctx, l.ID, owner); err != nil {
		t.Fatalf("MarkExchanged: %v", err)
	}
	if _, err := s.MarkExchanged(ctx, l.ID, owner); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("second MarkExchanged = %v, want ErrConflict", err)
	}
}

func TestUpdateListingCannotChangeOwner(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	owner := uuid.New()
	l := seedListing(t, s, owner)

	upd := models.ListingUpdate{
		Title:     "Updated",
		Author:    "Mary Shelley",
		Condition: models.ConditionNew,
		Price:     450,
	}
	got, err := s.UpdateListing(ctx, l.ID, owner, upd)
	if err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	if got.OwnerID != owner {
		t.Fatalf("owner changed by update: %v", got.OwnerID)
	}
	if got.Title != "Updated" || got.Condition != models.ConditionNew {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestDeleteListingDeclinesPendingRequests(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	x := seedListing(t, s, alice)
	y := seedListing(t, s, bob)

	req := &models.ExchangeRequest{
		ID:                 uuid.New(),
		RequestedListingID: x.ID,
		OfferedListingID:   y.ID,
		RequesterID:        bob,
		OwnerID:            alice,
	}
	if err := s.CreateRequest(ctx, req); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if _, err := s.DeleteListing(ctx, x.ID, alice); err != nil {
		t.Fatalf("DeleteListing: %v", err)
	}

	r, err := s.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if r.Status != models.RequestStatusDeclined {
		t.Fatalf("request status after delete = %q, want Declined", r.Status)
	}
	if _, err := s.GetListing(ctx, x.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("deleted listing still readable: %v", err)
	}
}

func TestCompleteRequestLeavesNoPartialState(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	x := seedListing(t, s, alice)
	y := seedListing(t, s, bob)

	req := &models.ExchangeRequest{
		ID:                 uuid.New(),
		RequestedListingID: x.ID,
		OfferedListingID:   y.ID,
		RequesterID:        bob,
		OwnerID:            alice,
	}
	if err := s.CreateRequest(ctx, req); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if _, err := s.AcceptRequest(ctx, req.ID); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}

	// Offered listing goes away before completion
	if _, err := s.MarkExchanged(ctx, y.ID, bob); err != nil {
		t.Fatalf("MarkExchanged: %v", err)
	}

	if _, err := s.CompleteRequest(ctx, req.ID); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("CompleteRequest = %v, want ErrConflict", err)
	}

	r, err := s.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if r.Status != models.RequestStatusAccepted {
		t.Fatalf("request status after failed completion = %q, want Accepted", r.Status)
	}
	l, err := s.GetListing(ctx, x.ID)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if l.Status != models.ListingStatusAvailable {
		t.Fatalf("requested listing status after failed completion = %q, want available", l.Status)
	}
}

func TestListAvailableExcludingHidesOwnAndExchanged(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	seedListing(t, s, alice)
	theirs := seedListing(t, s, bob)
	gone := seedListing(t, s, bob)
	if _, err := s.MarkExchanged(ctx, gone.ID, bob); err != nil {
		t.Fatalf("MarkExchanged: %v", err)
	}

	got, err := s.ListAvailableExcluding(ctx, alice)
	if err != nil {
		t.Fatalf("ListAvailableExcluding: %v", err)
	}
	if len(got) != 1 || got[0].ID != theirs.ID {
		t.Fatalf("ListAvailableExcluding = %d listings, want only %v", len(got), theirs.ID)
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u := &models.User{ID: uuid.New(), FullName: "Alice", Email: "alice@example.com", Password: "hash"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	dup := &models.User{ID: uuid.New(), FullName: "Other", Email: "ALICE@example.com", Password: "hash"}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, storage.ErrDuplicateEmail) {
		t.Fatalf("duplicate CreateUser = %v, want ErrDuplicateEmail", err)
	}
}
