package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/covercellhq/covercell-backend/internal/policies"
	"github.com/covercellhq/covercell-backend/internal/users"
	"github.com/covercellhq/covercell-backend/pkg/db/models"
	"github.com/covercellhq/covercell-backend/pkg/enums"
)

type stubUserFinder struct {
	user *models.User
	err  error
}

func (s *stubUserFinder) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return s.user, s.err
}

type stubPolicyLister struct {
	rows []models.Policy
	err  error
}

func (s *stubPolicyLister) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Policy, error) {
	return s.rows, s.err
}

func TestMe(t *testing.T) {
	userID := uuid.New()
	finder := &stubUserFinder{
		user: &models.User{
			ID:        userID,
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
			Role:      enums.MemberRoleCustomer,
			IsActive:  true,
		},
	}
	lister := &stubPolicyLister{
		rows: []models.Policy{
			{ID: uuid.New(), UserID: userID, Status: enums.PolicyStatusActive},
		},
	}
	handler := Me(finder, lister, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/me", "", userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			User     users.UserDTO       `json:"user"`
			Policies []policies.PolicyDTO `json:"policies"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User.Email != "jane@example.com" {
		t.Fatalf("unexpected user %+v", envelope.Data.User)
	}
	if len(envelope.Data.Policies) != 1 {
		t.Fatalf("expected one policy got %d", len(envelope.Data.Policies))
	}
}

func TestMeRequiresAuth(t *testing.T) {
	handler := Me(&stubUserFinder{}, &stubPolicyLister{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestMeUnknownUser(t *testing.T) {
	handler := Me(&stubUserFinder{err: gorm.ErrRecordNotFound}, &stubPolicyLister{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/me", "", uuid.New()))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
