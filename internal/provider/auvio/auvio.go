// Package auvio implements the provider adapter for the primary national
// broadcaster. It speaks three upstream APIs: the BFF that serves the
// web frontend (pages, search), the partner catalog API (programs, live
// planning, EPG) and the entitlement service that issues playable stream
// locators.
package auvio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/auviostream/auviostream/internal/auth"
	"github.com/auviostream/auviostream/internal/httpclient"
	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/normalize"
	"github.com/auviostream/auviostream/internal/observability"
	"github.com/auviostream/auviostream/internal/playback"
	"github.com/auviostream/auviostream/internal/provider"
)

// Slug is the platform slug this adapter registers under.
const Slug = "auvio"

// maxHomeCategories caps how many home rows get their content preloaded.
const maxHomeCategories = 10

// Config holds the upstream endpoints. Defaults target production; tests
// point them at a local server.
type Config struct {
	PagesURL       string
	SearchURL      string
	PartnerURL     string
	EntitlementURL string
	PartnerKey     string
	UserAgent      string
}

// DefaultConfig returns the production endpoints.
func DefaultConfig() Config {
	return Config{
		PagesURL:       "https://bff-service.rtbf.be/auvio/v1.23/pages",
		SearchURL:      "https://bff-service.rtbf.be/auvio/v1.23/search",
		PartnerURL:     "https://www.rtbf.be/api/partner",
		EntitlementURL: "https://exposure.api.redbee.live/v2/customer/RTBF/businessunit/Auvio",
		PartnerKey:     "82ed2c5b7df0a9334dfbda21eccd8427",
		UserAgent:      "Chrome-web-3.0",
	}
}

// Adapter is the primary broadcaster integration.
type Adapter struct {
	cfg      Config
	client   *httpclient.Client
	auth     *auth.Manager
	resolver *playback.Resolver
	logger   *slog.Logger
}

var (
	_ provider.ContentLister      = (*Adapter)(nil)
	_ provider.Searcher           = (*Adapter)(nil)
	_ provider.LiveStreamResolver = (*Adapter)(nil)
	_ provider.PlaybackResolver   = (*Adapter)(nil)
)

// New creates the adapter.
func New(cfg Config, client *httpclient.Client, authManager *auth.Manager, resolver *playback.Resolver, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		cfg:      cfg,
		client:   client,
		auth:     authManager,
		resolver: resolver,
		logger:   observability.WithPlatform(logger, Slug),
	}
}

// Platform describes this adapter.
func (a *Adapter) Platform() models.Platform {
	return models.Platform{
		Slug:         Slug,
		Name:         "RTBF Auvio",
		Category:     models.CategoryNational,
		RequiresAuth: true,
		AuthType:     models.AuthTypeGigya,
		Active:       true,
	}
}

// pageResponse is the BFF envelope for page and content-path requests.
type pageResponse struct {
	Data struct {
		Widgets []widget               `json:"widgets"`
		Content []normalize.AuvioMedia `json:"content"`
	} `json:"data"`
}

type widget struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// categoryEntry is one row in the CATEGORY_LIST widget.
type categoryEntry struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	ContentPath string      `json:"contentPath"`
}

// excludedCategories are editorial rows with no browsable content behind
// them.
var excludedCategories = map[string]bool{
	"Catégories": true,
	"Sooner, plus de 1.700 films à découvrir": true,
}

// Categories fetches the home page and returns its category rows, each
// enriched with its content. Enrichment fans out concurrently; a row
// whose content fetch fails is returned empty rather than failing the
// whole page.
func (a *Adapter) Categories(ctx context.Context) ([]models.Category, error) {
	var page pageResponse
	homeURL := a.cfg.PagesURL + "/home?" + a.userAgentParam()
	if err := a.client.GetJSON(ctx, homeURL, &page, nil); err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, Slug, err)
	}

	var entries []categoryEntry
	for _, w := range page.Data.Widgets {
		if w.Type != "CATEGORY_LIST" {
			continue
		}
		if err := json.Unmarshal(w.Content, &entries); err != nil {
			return nil, models.NewStreamError(models.StreamUpstreamError, Slug,
				fmt.Errorf("decoding category list: %w", err))
		}
		break
	}

	filtered := make([]categoryEntry, 0, len(entries))
	for _, e := range entries {
		if excludedCategories[e.Title] {
			continue
		}
		filtered = append(filtered, e)
	}
	if len(filtered) > maxHomeCategories {
		filtered = filtered[:maxHomeCategories]
	}

	categories := make([]models.Category, len(filtered))
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range filtered {
		categories[i] = models.Category{
			ID:           entry.ID.String(),
			PlatformSlug: Slug,
			Title:        entry.Title,
			Path:         entry.ContentPath,
		}
		if entry.ContentPath == "" {
			continue
		}
		g.Go(func() error {
			items, err := a.CategoryContent(gctx, entry.ContentPath)
			if err != nil {
				a.logger.Warn("category enrichment failed",
					slog.String("category", entry.Title),
					slog.String("error", err.Error()),
				)
				return nil
			}
			categories[i].Items = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return categories, nil
}

// CategoryContent fetches the items behind a content path. The BFF hands
// out absolute content paths, so the id doubles as the URL.
func (a *Adapter) CategoryContent(ctx context.Context, contentPath string) ([]models.ContentItem, error) {
	var page pageResponse
	if err := a.client.GetJSON(ctx, contentPath+"?"+a.userAgentParam(), &page, nil); err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, Slug, err)
	}

	items := make([]models.ContentItem, 0, len(page.Data.Content))
	for _, raw := range page.Data.Content {
		items = append(items, normalize.FromAuvioMedia(raw))
	}
	return items, nil
}

// searchResponse is the BFF search envelope.
type searchResponse struct {
	Data struct {
		Results []normalize.AuvioMedia `json:"results"`
	} `json:"data"`
}

// Search queries the BFF search endpoint, which requires both the API
// access token and the entitlement session token. Any failure, including
// a missing session, degrades to an empty result.
func (a *Adapter) Search(ctx context.Context, query string) []models.ContentItem {
	if !a.auth.EnsureAuthenticated(ctx) {
		a.logger.Warn("search skipped, not authenticated")
		return nil
	}
	session, err := a.auth.Session(ctx)
	if err != nil || session == nil {
		a.logger.Warn("search skipped, no session available")
		return nil
	}

	headers := map[string]string{
		"Authorization": "Bearer " + session.AccessToken,
		"x-rtbf-redbee": "Bearer " + session.EntitlementToken,
	}
	searchURL := a.cfg.SearchURL + "?query=" + url.QueryEscape(query)

	var resp searchResponse
	if err := a.client.GetJSON(ctx, searchURL, &resp, headers); err != nil {
		a.logger.Warn("search failed", slog.String("error", err.Error()))
		return nil
	}

	items := make([]models.ContentItem, 0, len(resp.Data.Results))
	for _, raw := range resp.Data.Results {
		switch strings.ToUpper(raw.Type) {
		case "VIDEO", "MEDIA", "LIVE", "PROGRAM":
		default:
			continue
		}
		if strings.EqualFold(raw.Type, "PROGRAM") && raw.ResourceType == "" {
			raw.ResourceType = "PROGRAM"
		}
		items = append(items, normalize.FromAuvioMedia(raw))
	}
	return items
}

// LiveChannels returns the live planning list from the partner API.
func (a *Adapter) LiveChannels(ctx context.Context) ([]models.ContentItem, error) {
	params := url.Values{
		"target_site": {"media"},
		"origin_site": {"media"},
		"category_id": {"0"},
		"start_date":  {""},
		"offset":      {"0"},
		"limit":       {"15"},
		"partner_key": {a.cfg.PartnerKey},
		"v":           {"8"},
	}

	var rows []normalize.PartnerMedia
	liveURL := a.cfg.PartnerURL + "/generic/live/planninglist?" + params.Encode()
	if err := a.client.GetJSON(ctx, liveURL, &rows, nil); err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, Slug, err)
	}

	items := make([]models.ContentItem, 0, len(rows))
	for _, raw := range rows {
		item := normalize.FromPartnerMedia(raw)
		item.Kind = models.KindLive
		if raw.ExternalID != "" {
			item.ID = raw.ExternalID
		}
		items = append(items, item)
	}
	return items, nil
}

// ResolveLiveStream resolves a live channel. Live channels play through
// the same entitlement endpoint as on-demand assets.
func (a *Adapter) ResolveLiveStream(ctx context.Context, channelID string) (*models.StreamDescriptor, error) {
	return a.ResolvePlayback(ctx, channelID)
}

// entitlementResponse is the play endpoint's success payload.
type entitlementResponse struct {
	Formats []models.RawFormat `json:"formats"`
}

// ResolvePlayback asks the entitlement service for the playable formats
// of an asset and runs format selection on the answer.
func (a *Adapter) ResolvePlayback(ctx context.Context, assetID string) (*models.StreamDescriptor, error) {
	if !a.auth.EnsureAuthenticated(ctx) {
		return nil, models.NewStreamError(models.StreamAuthenticationRequired, Slug, nil)
	}
	session, err := a.auth.Session(ctx)
	if err != nil || session == nil {
		return nil, models.NewStreamError(models.StreamAuthenticationRequired, Slug, err)
	}

	params := url.Values{
		"supportedFormats": {"dash,hls,mss,mp3,aac"},
		"supportedDrms":    {"widevine"},
	}
	playURL := fmt.Sprintf("%s/entitlement/%s/play?%s", a.cfg.EntitlementURL, assetID, params.Encode())
	headers := map[string]string{
		"Authorization": "Bearer " + session.EntitlementToken,
		"Accept":        "application/json",
	}

	var resp entitlementResponse
	if err := a.client.GetJSON(ctx, playURL, &resp, headers); err != nil {
		return nil, playback.InterpretEntitlementError(Slug, err)
	}

	return a.resolver.Resolve(ctx, Slug, resp.Formats)
}

// ProgramVideos lists the complete videos of a program from the partner
// catalog.
func (a *Adapter) ProgramVideos(ctx context.Context, programID string) ([]models.ContentItem, error) {
	params := url.Values{
		"v":            {"8"},
		"program_id":   {programID},
		"content_type": {"complete"},
		"type":         {"video"},
		"target_site":  {"mediaz"},
		"limit":        {"100"},
		"partner_key":  {a.cfg.PartnerKey},
	}

	var rows []normalize.PartnerMedia
	listURL := a.cfg.PartnerURL + "/generic/media/objectlist?" + params.Encode()
	if err := a.client.GetJSON(ctx, listURL, &rows, nil); err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, Slug, err)
	}

	items := make([]models.ContentItem, 0, len(rows))
	for _, raw := range rows {
		item := normalize.FromPartnerMedia(raw)
		item.ProgramID = programID
		items = append(items, item)
	}
	return items, nil
}

// VideoDetails fetches one video's catalog entry. Frontend ids carry a
// suffix after an underscore that the partner API does not know about.
func (a *Adapter) VideoDetails(ctx context.Context, videoID string) (*models.ContentItem, error) {
	cleanID, _, _ := strings.Cut(videoID, "_")
	params := url.Values{
		"v":           {"8"},
		"id":          {cleanID},
		"partner_key": {a.cfg.PartnerKey},
	}

	var rows []normalize.PartnerMedia
	detailURL := a.cfg.PartnerURL + "/generic/media/objectlist?" + params.Encode()
	if err := a.client.GetJSON(ctx, detailURL, &rows, nil); err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, Slug, err)
	}
	if len(rows) == 0 {
		return nil, models.NewStreamError(models.StreamNotFound, Slug,
			fmt.Errorf("video %s not in catalog", videoID))
	}

	item := normalize.FromPartnerMedia(rows[0])
	return &item, nil
}

// epgChannel is one row of the EPG channel list.
type epgChannel struct {
	ID     json.Number         `json:"id"`
	Name   string              `json:"name"`
	Label  string              `json:"label"`
	Title  string              `json:"title"`
	Type   string              `json:"type"`
	Images *normalize.ImageSet `json:"images"`
}

func (c epgChannel) displayName() string {
	for _, name := range []string{c.Name, c.Label, c.Title} {
		if name != "" {
			return name
		}
	}
	return c.ID.String()
}

// GuideChannels lists the TV channels available in the EPG.
func (a *Adapter) GuideChannels(ctx context.Context) ([]models.GuideChannel, error) {
	params := url.Values{
		"v":           {"7"},
		"type":        {"tv"},
		"partner_key": {a.cfg.PartnerKey},
	}

	var rows []epgChannel
	listURL := a.cfg.PartnerURL + "/generic/epg/channellist?" + params.Encode()
	if err := a.client.GetJSON(ctx, listURL, &rows, nil); err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, Slug, err)
	}

	channels := make([]models.GuideChannel, 0, len(rows))
	for _, row := range rows {
		if row.Type != "tv" {
			continue
		}
		var logo string
		if row.Images != nil {
			if square, ok := row.Images.Cover["1x1"]; ok {
				logo = square["370x370"]
			}
		}
		channels = append(channels, models.GuideChannel{
			ChannelID: row.ID.String(),
			Name:      row.displayName(),
			LogoURL:   logo,
		})
	}
	return channels, nil
}

// epgProgramme is one scheduled broadcast in the programme list.
type epgProgramme struct {
	ID         json.Number         `json:"id"`
	Title      string              `json:"title"`
	StartDate  string              `json:"start_date"`
	EndDate    string              `json:"end_date"`
	ExternalID string              `json:"external_id"`
	Images     *normalize.ImageSet `json:"images"`
}

// ChannelSchedule returns one channel's broadcasts for the day containing
// the given time.
func (a *Adapter) ChannelSchedule(ctx context.Context, channelID string, day time.Time) ([]models.GuideEntry, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Millisecond)

	params := url.Values{
		"partner_key": {a.cfg.PartnerKey},
		"v":           {"8"},
		"channel_id":  {channelID},
		"start_date":  {start.Format(time.RFC3339)},
		"end_date":    {end.Format(time.RFC3339)},
	}

	var rows []epgProgramme
	scheduleURL := a.cfg.PartnerURL + "/generic/epg/programmelist?" + params.Encode()
	if err := a.client.GetJSON(ctx, scheduleURL, &rows, nil); err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, Slug, err)
	}

	entries := make([]models.GuideEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.GuideEntry{
			ChannelID: channelID,
			Title:     row.Title,
			Start:     row.StartDate,
			End:       row.EndDate,
			ContentID: row.ExternalID,
			Thumbnail: normalize.Thumbnail(row.Images, nil),
		})
	}
	return entries, nil
}

func (a *Adapter) userAgentParam() string {
	return url.Values{"userAgent": {a.cfg.UserAgent}}.Encode()
}
