package wizard

import (
	"time"

	"github.com/covercellhq/covercell-backend/internal/pricing"
	"github.com/covercellhq/covercell-backend/pkg/enums"
)

// Session is the server-held onboarding aggregate. It lives in Redis under a
// TTL and is deleted once a submission succeeds. All wizard operations load
// it, mutate a copy, and save it back; a failed operation never persists.
type Session struct {
	ID        string           `json:"id"`
	Step      enums.WizardStep `json:"step"`
	Device    DeviceSelection  `json:"device"`
	Personal  *PersonalInfo    `json:"personal,omitempty"`
	Photos    *PhotoSet        `json:"photos,omitempty"`
	Quote     *pricing.Quote   `json:"quote,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// DeviceSelection holds the device-and-plan step's fields. CustomName is set
// only when Model is the catalog's "other" sentinel.
type DeviceSelection struct {
	DeviceType   enums.DeviceType `json:"device_type,omitempty"`
	Model        string           `json:"model,omitempty"`
	CustomName   string           `json:"custom_name,omitempty"`
	Plan         enums.PlanID     `json:"plan,omitempty"`
	AddOnIDs     []string         `json:"add_on_ids,omitempty"`
	PurchaseDate string           `json:"purchase_date,omitempty"`
}

// PersonalInfo holds the applicant's details. The password is hashed the
// moment it is accepted; the session never stores it in clear.
type PersonalInfo struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	PasswordHash string `json:"password_hash"`
}

// PhotoSet references the staged verification images on disk.
type PhotoSet struct {
	FrontPath string `json:"front_path"`
	BackPath  string `json:"back_path"`
}

func (s *Session) deviceComplete() bool {
	if s.Device.Model == "" || s.Device.Plan == "" {
		return false
	}
	if s.Device.Model == otherModel && s.Device.CustomName == "" {
		return false
	}
	return true
}

func (s *Session) personalComplete() bool {
	p := s.Personal
	if p == nil {
		return false
	}
	return p.FirstName != "" && p.LastName != "" && p.Email != "" &&
		p.Phone != "" && p.Address != "" && p.City != "" &&
		p.State != "" && p.ZipCode != "" && p.PasswordHash != ""
}

func (s *Session) photosComplete() bool {
	return s.Photos != nil && s.Photos.FrontPath != "" && s.Photos.BackPath != ""
}
