// Package ln24 implements the provider adapter for the news channel.
// The channel has no API at all: the live stream is dug out of the
// player markup on its site, and the programme catalog is scraped from
// the public pages.
package ln24

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/gocolly/colly"

	"github.com/auviostream/auviostream/internal/httpclient"
	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/normalize"
	"github.com/auviostream/auviostream/internal/observability"
	"github.com/auviostream/auviostream/internal/provider"
)

// Slug is the platform slug this adapter registers under.
const Slug = "ln24"

// Config holds the site root.
type Config struct {
	RootURL string
}

// DefaultConfig returns the production site.
func DefaultConfig() Config {
	return Config{RootURL: "https://www.ln24.be"}
}

// Player markup patterns. The live page embeds a player widget whose
// configuration carries an embed URL; the embed page in turn carries the
// HLS locator.
var (
	embedURLPattern = regexp.MustCompile(`"embedUrl":\s*"([^"]+)"`)
	hlsSrcPattern   = regexp.MustCompile(`"src":\s*"([^"]*\.m3u8[^"]*)"`)
)

// Adapter is the news channel integration.
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
		Name:         "LN24",
		Category:     models.CategoryNational,
		RequiresAuth: false,
		AuthType:     models.AuthTypeNone,
		Active:       true,
	}
}

// LiveChannels returns the single news channel.
func (a *Adapter) LiveChannels(ctx context.Context) ([]models.ContentItem, error) {
	return []models.ContentItem{normalize.LiveChannel(Slug, Slug, "LN24", "")}, nil
}

// ResolveLiveStream digs the HLS locator out of the live page markup.
// Two hops: the live page names an embed URL, the embed page names the
// stream. A miss at either hop is a StreamNotFound.
func (a *Adapter) ResolveLiveStream(ctx context.Context, channelID string) (*models.StreamDescriptor, error) {
	page, err := a.client.GetBody(ctx, a.cfg.RootURL+"/live", nil)
	if err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, Slug, err)
	}

	embedMatch := embedURLPattern.FindSubmatch(page)
	if embedMatch == nil {
		return nil, models.NewStreamError(models.StreamNotFound, Slug,
			fmt.Errorf("no embed url in live page"))
	}
	embedURL := strings.ReplaceAll(string(embedMatch[1]), `\`, "")

	embedPage, err := a.client.GetBody(ctx, embedURL, nil)
	if err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, Slug, err)
	}

	srcMatch := hlsSrcPattern.FindSubmatch(embedPage)
	if srcMatch == nil {
		return nil, models.NewStreamError(models.StreamNotFound, Slug,
			fmt.Errorf("no hls source in embed page"))
	}

	return &models.StreamDescriptor{
		URL:       strings.ReplaceAll(string(srcMatch[1]), `\`, ""),
		Transport: models.TransportHLS,
	}, nil
}

// Categories returns the single programme shelf, scraped from the
// emissions page.
func (a *Adapter) Categories(ctx context.Context) ([]models.Category, error) {
	items := a.scrape(a.cfg.RootURL + "/emissions")
	return []models.Category{{
		ID:           "emissions",
		PlatformSlug: Slug,
		Title:        "Émissions",
		Items:        items,
	}}, nil
}

// CategoryContent re-scrapes the emissions page; there is only one shelf.
func (a *Adapter) CategoryContent(ctx context.Context, categoryID string) ([]models.ContentItem, error) {
	return a.scrape(a.cfg.RootURL + "/emissions"), nil
}

// Search scrapes the site search results. Failures degrade to empty.
func (a *Adapter) Search(ctx context.Context, query string) []models.ContentItem {
	return a.scrape(a.cfg.RootURL + "/recherche?ft=" + url.QueryEscape(query))
}

// scrape pulls programme tiles off a listing page. The site is a plain
// CMS: each tile is an article node with a heading, a link and usually a
// poster image.
func (a *Adapter) scrape(pageURL string) []models.ContentItem {
	var items []models.ContentItem
	seen := make(map[string]bool)

	collector := colly.NewCollector(
		colly.UserAgent("auviostream/1.0"),
		colly.AllowURLRevisit(),
	)

	collector.OnHTML("article", func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText("h2, h3"))
		href := e.ChildAttr("a[href]", "href")
		if title == "" || href == "" {
			return
		}
		id := strings.Trim(href, "/")
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		var thumbnail string
		if src := e.ChildAttr("img[src]", "src"); src != "" {
			thumbnail = e.Request.AbsoluteURL(src)
		}

		items = append(items, models.ContentItem{
			ID:           id,
			PlatformSlug: Slug,
			Title:        title,
			Description:  strings.TrimSpace(e.ChildText("p")),
			Thumbnail:    thumbnail,
			Kind:         models.KindProgram,
		})
	})

	if err := collector.Visit(pageURL); err != nil {
		a.logger.Warn("scrape failed",
			slog.String("url", pageURL),
			slog.String("error", err.Error()),
		)
		return nil
	}
	collector.Wait()

	return items
}
