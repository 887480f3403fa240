// Package rtlplay implements the provider adapter for the secondary
// national broadcaster's streaming service. Its public storefront API
// exposes browse and search; live streams sit behind a login this
// adapter does not perform, so stream resolution always reports that
// authentication is required.
package rtlplay

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/auviostream/auviostream/internal/httpclient"
	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/normalize"
	"github.com/auviostream/auviostream/internal/observability"
	"github.com/auviostream/auviostream/internal/provider"
)

// Slug is the platform slug this adapter registers under.
const Slug = "rtlplay"

// storefrontUserAgent identifies us as the mobile app; the storefront
// rejects browser user agents.
const storefrontUserAgent = "RTL_PLAY/22.251009"

// Config holds the storefront API endpoint.
type Config struct {
	APIBase   string
	UserAgent string
}

// DefaultConfig returns the production endpoint.
func DefaultConfig() Config {
	return Config{
		APIBase:   "https://lfvp-api.dpgmedia.net",
		UserAgent: storefrontUserAgent,
	}
}

// Adapter is the secondary broadcaster integration.
type Adapter struct {
	cfg    Config
	client *httpclient.Client
	logger *slog.Logger
}

var (
	_ provider.ContentLister      = (*Adapter)(nil)
	_ provider.Searcher           = (*Adapter)(nil)
	_ provider.LiveStreamResolver = (*Adapter)(nil)
)

// New creates the adapter.
func New(cfg Config, client *httpclient.Client, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		cfg:    cfg,
		client: client,
		logger: observability.WithPlatform(logger, Slug),
	}
}

// Platform describes this adapter.
func (a *Adapter) Platform() models.Platform {
	return models.Platform{
		Slug:         Slug,
		Name:         "RTL Play",
		Category:     models.CategoryNational,
		RequiresAuth: true,
		AuthType:     models.AuthTypeOAuth,
		Active:       true,
	}
}

func (a *Adapter) headers() map[string]string {
	return map[string]string{
		"User-Agent": a.cfg.UserAgent,
		"Accept":     "*/*",
	}
}

// storefrontRow is one row of the storefront home page.
type storefrontRow struct {
	ID      any                `json:"id"`
	RowType string             `json:"rowType"`
	Title   string             `json:"title"`
	Teasers []normalize.Teaser `json:"teasers"`
}

func (r storefrontRow) idString() string {
	return fmt.Sprintf("%v", r.ID)
}

// swimlaneRowTypes are the storefront row types that hold browsable
// content; banners and promos are skipped.
var swimlaneRowTypes = map[string]bool{
	"SWIMLANE_DEFAULT":   true,
	"SWIMLANE_PORTRAIT":  true,
	"SWIMLANE_LANDSCAPE": true,
}

// Categories lists the storefront swimlanes with their teasers.
func (a *Adapter) Categories(ctx context.Context) ([]models.Category, error) {
	params := url.Values{
		"itemsPerSwimlane":        {"20"},
		"defaultImageOrientation": {"landscape"},
		"hideBannerRow":           {"true"},
	}

	var resp struct {
		Rows []storefrontRow `json:"rows"`
	}
	storeURL := a.cfg.APIBase + "/RTL_PLAY/storefronts/accueil?" + params.Encode()
	if err := a.client.GetJSON(ctx, storeURL, &resp, a.headers()); err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, Slug, err)
	}

	categories := make([]models.Category, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if !swimlaneRowTypes[row.RowType] {
			continue
		}
		category := models.Category{
			ID:           row.idString(),
			PlatformSlug: Slug,
			Title:        strings.TrimSpace(row.Title),
			Items:        make([]models.ContentItem, 0, len(row.Teasers)),
		}
		for _, teaser := range row.Teasers {
			category.Items = append(category.Items, normalize.FromTeaser(Slug, teaser))
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// CategoryContent fetches the full teaser list of one swimlane.
func (a *Adapter) CategoryContent(ctx context.Context, categoryID string) ([]models.ContentItem, error) {
	var resp struct {
		Row struct {
			Teasers []normalize.Teaser `json:"teasers"`
		} `json:"row"`
	}
	detailURL := a.cfg.APIBase + "/RTL_PLAY/storefronts/accueil/detail/" + url.PathEscape(categoryID)
	if err := a.client.GetJSON(ctx, detailURL, &resp, a.headers()); err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, Slug, err)
	}

	items := make([]models.ContentItem, 0, len(resp.Row.Teasers))
	for _, teaser := range resp.Row.Teasers {
		items = append(items, normalize.FromTeaser(Slug, teaser))
	}
	return items, nil
}

// Search queries the storefront search endpoint. Only exact-match result
// groups count; fuzzy suggestion groups are noise. Failures degrade to
// an empty result.
func (a *Adapter) Search(ctx context.Context, query string) []models.ContentItem {
	var resp struct {
		Results []struct {
			Type    string             `json:"type"`
			Teasers []normalize.Teaser `json:"teasers"`
		} `json:"results"`
	}
	searchURL := a.cfg.APIBase + "/RTL_PLAY/search?query=" + url.QueryEscape(query)
	if err := a.client.GetJSON(ctx, searchURL, &resp, a.headers()); err != nil {
		a.logger.Warn("search failed", slog.String("error", err.Error()))
		return nil
	}

	var items []models.ContentItem
	for _, group := range resp.Results {
		if group.Type != "exact" {
			continue
		}
		for _, teaser := range group.Teasers {
			items = append(items, normalize.FromTeaser(Slug, teaser))
		}
	}
	return items
}

// liveChannels is the static channel table; the storefront has no public
// channel listing endpoint.
var liveChannels = []struct {
	id   string
	name string
	logo string
}{
	{"tvi", "RTL-TVI", "/logos/rtl-tvi.png"},
	{"club", "Club RTL", "/logos/club-rtl.png"},
	{"plug", "Plug RTL", "/logos/plug-rtl.png"},
	{"rtl_info", "RTL Info", "/logos/rtl-info.png"},
	{"rtl_sport", "RTL Sport", "/logos/rtl-sport.png"},
}

// LiveChannels returns the static channel table.
func (a *Adapter) LiveChannels(ctx context.Context) ([]models.ContentItem, error) {
	items := make([]models.ContentItem, 0, len(liveChannels))
	for _, ch := range liveChannels {
		items = append(items, normalize.LiveChannel(Slug, ch.id, ch.name, ch.logo))
	}
	return items, nil
}

// ResolveLiveStream always fails: the live streams sit behind the
// broadcaster's own subscriber login.
func (a *Adapter) ResolveLiveStream(ctx context.Context, channelID string) (*models.StreamDescriptor, error) {
	return nil, models.NewStreamError(models.StreamAuthenticationRequired, Slug,
		fmt.Errorf("live channel %s requires a subscriber login", channelID))
}
