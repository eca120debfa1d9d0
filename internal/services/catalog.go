package services

import (
	"context"
	"fmt"

	"festguide/internal/models"
	"festguide/internal/restdb"
)

// CatalogService serves the read-only programme content the guide's pages
// are built from: sections, events, venue map areas, sponsor banners and the
// app settings key/value rows. All of it is public data read with the
// anonymous credential.
type CatalogService struct {
	db *restdb.Client
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *restdb.Client) *CatalogService {
	return &CatalogService{db: db}
}

// ActiveSections returns the visible sections in display order.
func (s *CatalogService) ActiveSections(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	q := restdb.Query{}.Is("is_active", "true").Order("sort_order")
	if err := s.db.FetchMany(ctx, "festival_sections", q, &sections); err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}
	return sections, nil
}

// SectionWithEvents returns one section and its active events in display
// order. found is false when the section does not exist.
func (s *CatalogService) SectionWithEvents(ctx context.Context, id string) (section models.Section, events []models.Event, found bool, err error) {
	found, err = s.db.FetchOne(ctx, "festival_sections", restdb.Query{}.Eq("id", id), &section)
	if err != nil {
		return section, nil, false, fmt.Errorf("load section: %w", err)
	}
	if !found {
		return section, nil, false, nil
	}

	q := restdb.Query{}.
		Eq("section_id", id).
		Is("is_active", "true").
		Order("sort_order")
	if err := s.db.FetchMany(ctx, "events", q, &events); err != nil {
		return section, nil, true, fmt.Errorf("load section events: %w", err)
	}
	return section, events, true, nil
}

// SectionEventCounts returns how many active events each section holds.
func (s *CatalogService) SectionEventCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		SectionID string `json:"section_id"`
	}
	q := restdb.Query{}.Select("section_id").Is("is_active", "true")
	if err := s.db.FetchMany(ctx, "events", q, &rows); err != nil {
		return nil, fmt.Errorf("count section events: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.SectionID]++
	}
	return counts, nil
}

// EventsByIDs returns the rows for the given event ids, used to flesh out
// the personal programme from the favorites set.
func (s *CatalogService) EventsByIDs(ctx context.Context, ids []string) ([]models.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var events []models.Event
	if err := s.db.FetchMany(ctx, "events", restdb.Query{}.In("id", ids), &events); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return events, nil
}

// ActiveMapAreas returns the visible venue map points of interest.
func (s *CatalogService) ActiveMapAreas(ctx context.Context) ([]models.MapArea, error) {
	var areas []models.MapArea
	q := restdb.Query{}.Is("is_active", "true")
	if err := s.db.FetchMany(ctx, "map_areas", q, &areas); err != nil {
		return nil, fmt.Errorf("load map areas: %w", err)
	}
	return areas, nil
}

// ActiveBanners returns the visible sponsor banners in display order.
func (s *CatalogService) ActiveBanners(ctx context.Context) ([]models.SponsorBanner, error) {
	var banners []models.SponsorBanner
	q := restdb.Query{}.Is("is_active", "true").Order("sort_order")
	if err := s.db.FetchMany(ctx, "sponsor_banners", q, &banners); err != nil {
		return nil, fmt.Errorf("load banners: %w", err)
	}
	return banners, nil
}

// Settings returns the app_settings rows as a key/value map.
func (s *CatalogService) Settings(ctx context.Context) (map[string]string, error) {
	var rows []models.AppSetting
	if err := s.db.FetchMany(ctx, "app_settings", restdb.Query{}, &rows); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}
