package services

import (
	"context"
	"fmt"
	"time"

	"festguide/internal/models"
	"festguide/internal/restdb"
)

// AdminService is the content-management side: CRUD over the managed
// collections with the admin's own access token, so the backend's row-level
// rules stay in charge of authorization.
type AdminService struct {
	db      *restdb.Client
	session identitySource
}

// NewAdminService constructs an AdminService.
func NewAdminService(db *restdb.Client, session identitySource) *AdminService {
	return &AdminService{db: db, session: session}
}

func (s *AdminService) token() restdb.CallOption {
	return restdb.WithToken(s.session.Token())
}

// save inserts row when id is empty, otherwise patches the existing row.
func (s *AdminService) save(ctx context.Context, collection, id string, row any) error {
	if id == "" {
		if err := s.db.Insert(ctx, collection, row, nil, s.token()); err != nil {
			return fmt.Errorf("create %s row: %w", collection, err)
		}
		return nil
	}
	if err := s.db.Update(ctx, collection, restdb.Query{}.Eq("id", id), row, s.token()); err != nil {
		return fmt.Errorf("update %s row: %w", collection, err)
	}
	return nil
}

func (s *AdminService) remove(ctx context.Context, collection, id string) error {
	if err := s.db.Delete(ctx, collection, restdb.Query{}.Eq("id", id), s.token()); err != nil {
		return fmt.Errorf("delete %s row: %w", collection, err)
	}
	return nil
}

// ListSections returns every section, active or not, in display order.
func (s *AdminService) ListSections(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	err := s.db.FetchMany(ctx, "festival_sections", restdb.Query{}.Order("sort_order"), &sections, s.token())
	return sections, err
}

// SaveSection creates or updates a section.
func (s *AdminService) SaveSection(ctx context.Context, id string, section map[string]any) error {
	return s.save(ctx, "festival_sections", id, section)
}

// DeleteSection removes a section.
func (s *AdminService) DeleteSection(ctx context.Context, id string) error {
	return s.remove(ctx, "festival_sections", id)
}

// ListEvents returns every event in display order.
func (s *AdminService) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := s.db.FetchMany(ctx, "events", restdb.Query{}.Order("sort_order"), &events, s.token())
	return events, err
}

// SaveEvent creates or updates an event.
func (s *AdminService) SaveEvent(ctx context.Context, id string, event map[string]any) error {
	return s.save(ctx, "events", id, event)
}

// DeleteEvent removes an event.
func (s *AdminService) DeleteEvent(ctx context.Context, id string) error {
	return s.remove(ctx, "events", id)
}

// ListMapAreas returns every venue map area.
func (s *AdminService) ListMapAreas(ctx context.Context) ([]models.MapArea, error) {
	var areas []models.MapArea
	err := s.db.FetchMany(ctx, "map_areas", restdb.Query{}, &areas, s.token())
	return areas, err
}

// SaveMapArea creates or updates a map area.
func (s *AdminService) SaveMapArea(ctx context.Context, id string, area map[string]any) error {
	return s.save(ctx, "map_areas", id, area)
}

// DeleteMapArea removes a map area.
func (s *AdminService) DeleteMapArea(ctx context.Context, id string) error {
	return s.remove(ctx, "map_areas", id)
}

// ListBanners returns every sponsor banner in display order.
func (s *AdminService) ListBanners(ctx context.Context) ([]models.SponsorBanner, error) {
	var banners []models.SponsorBanner
	err := s.db.FetchMany(ctx, "sponsor_banners", restdb.Query{}.Order("sort_order"), &banners, s.token())
	return banners, err
}

// SaveBanner creates or updates a sponsor banner.
func (s *AdminService) SaveBanner(ctx context.Context, id string, banner map[string]any) error {
	return s.save(ctx, "sponsor_banners", id, banner)
}

// DeleteBanner removes a sponsor banner.
func (s *AdminService) DeleteBanner(ctx context.Context, id string) error {
	return s.remove(ctx, "sponsor_banners", id)
}

// UpdateSetting writes one app_settings value, stamping updated_at.
func (s *AdminService) UpdateSetting(ctx context.Context, key, value string) error {
	patch := map[string]string{
		"value":      value,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.db.Update(ctx, "app_settings", restdb.Query{}.Eq("key", key), patch, s.token()); err != nil {
		return fmt.Errorf("update setting %s: %w", key, err)
	}
	return nil
}

// UserListing pairs the registered profiles with their role assignments.
type UserListing struct {
	Profiles []models.Profile  `json:"profiles"`
	Roles    map[string]string `json:"roles"`
}

// ListUsers returns the registered users, newest first, with their roles.
func (s *AdminService) ListUsers(ctx context.Context) (*UserListing, error) {
	var profiles []models.Profile
	q := restdb.Query{}.Select("*").OrderDesc("created_at")
	if err := s.db.FetchMany(ctx, "profiles", q, &profiles, s.token()); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	var assignments []models.RoleAssignment
	rq := restdb.Query{}.Select("user_id", "role")
	if err := s.db.FetchMany(ctx, "user_roles", rq, &assignments, s.token()); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	roles := make(map[string]string, len(assignments))
	for _, a := range assignments {
		roles[a.UserID] = a.Role
	}
	return &UserListing{Profiles: profiles, Roles: roles}, nil
}

// SetRole changes a user's role assignment between "user" and "admin".
func (s *AdminService) SetRole(ctx context.Context, userID, role string) error {
	if role != "admin" && role != "user" {
		return fmt.Errorf("unknown role %q", role)
	}
	patch := map[string]string{"role": role}
	if err := s.db.Update(ctx, "user_roles", restdb.Query{}.Eq("user_id", userID), patch, s.token()); err != nil {
		return fmt.Errorf("set role for %s: %w", userID, err)
	}
	return nil
}
