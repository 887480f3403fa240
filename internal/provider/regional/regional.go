// Package regional implements provider adapters for the Walloon local
// TV stations. The stations share no common API; each one is described
// by a table row naming its site and the recipe that digs the live HLS
// stream out of it.
package regional

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/auviostream/auviostream/internal/httpclient"
	"github.com/auviostream/auviostream/internal/models"
	"github.com/auviostream/auviostream/internal/normalize"
	"github.com/auviostream/auviostream/internal/observability"
	"github.com/auviostream/auviostream/internal/provider"
)

// recipe names how a station's live stream is located.
type recipe string

const (
	// recipeDirect means the live URL is the HLS playlist itself.
	recipeDirect recipe = "direct"
	// recipeVideoTag means the live page carries a plain <video> element
	// whose <source> is the stream.
	recipeVideoTag recipe = "videotag"
	// recipeFreecaster means the live page embeds a hosted player; its
	// token leads to a JSON manifest naming the stream.
	recipeFreecaster recipe = "freecaster"
)

// Station is one local TV station's configuration.
type Station struct {
	Slug      string
	Name      string
	RootURL   string
	LiveURL   string
	Recipe    recipe
	HasReplay bool
}

// Stations is the full table of supported local stations.
var Stations = []Station{
	{Slug: "antennecentre", Name: "Antenne Centre", RootURL: "https://www.antennecentre.tv", LiveURL: "https://www.antennecentre.tv/direct", Recipe: recipeFreecaster},
	{Slug: "bouke", Name: "Bouke", RootURL: "https://www.bouke.media", LiveURL: "https://www.bouke.media/direct", Recipe: recipeFreecaster, HasReplay: true},
	{Slug: "canalzoom", Name: "Canal Zoom", RootURL: "https://www.canalzoom.be", LiveURL: "https://www.canalzoom.be/direct", Recipe: recipeFreecaster},
	{Slug: "matele", Name: "Ma Télé", RootURL: "https://www.matele.be", LiveURL: "https://live.matele.be/hls/live.m3u8", Recipe: recipeDirect},
	{Slug: "notele", Name: "No Télé", RootURL: "https://www.notele.be", LiveURL: "https://www.notele.be/it105-md5-direct.html", Recipe: recipeVideoTag},
	{Slug: "telesambre", Name: "Télé Sambre", RootURL: "https://www.telesambre.be", LiveURL: "https://www.telesambre.be/direct", Recipe: recipeFreecaster, HasReplay: true},
	{Slug: "telemb", Name: "Télé MB", RootURL: "https://www.telemb.be", LiveURL: "https://www.telemb.be/direct", Recipe: recipeFreecaster, HasReplay: true},
	{Slug: "tvlux", Name: "TV Lux", RootURL: "https://www.tvlux.be", LiveURL: "https://www.tvlux.be/live", Recipe: recipeFreecaster, HasReplay: true},
}

// defaultPlayerBase is the hosted player serving the freecaster stations.
const defaultPlayerBase = "https://tvlocales-player.freecaster.com/embed/"

var liveTokenPattern = regexp.MustCompile(`"live_token":\s*"([^"]+)"`)

// Adapter serves one local station.
type Adapter struct {
	station    Station
	playerBase string
	client     *httpclient.Client
	logger     *slog.Logger
}

var _ provider.LiveStreamResolver = (*Adapter)(nil)

// New creates an adapter for one station.
func New(station Station, client *httpclient.Client, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		station:    station,
		playerBase: defaultPlayerBase,
		client:     client,
		logger:     observability.WithPlatform(logger, station.Slug),
	}
}

// NewAll creates one adapter per station in the table.
func NewAll(client *httpclient.Client, logger *slog.Logger) []*Adapter {
	adapters := make([]*Adapter, 0, len(Stations))
	for _, station := range Stations {
		adapters = append(adapters, New(station, client, logger))
	}
	return adapters
}

// Platform describes this station.
func (a *Adapter) Platform() models.Platform {
	return models.Platform{
		Slug:     a.station.Slug,
		Name:     a.station.Name,
		Category: models.CategoryLocal,
		AuthType: models.AuthTypeNone,
		Active:   true,
	}
}

// LiveChannels returns the station's single channel.
func (a *Adapter) LiveChannels(ctx context.Context) ([]models.ContentItem, error) {
	return []models.ContentItem{
		normalize.LiveChannel(a.station.Slug, a.station.Slug, a.station.Name, ""),
	}, nil
}

// ResolveLiveStream runs the station's recipe.
func (a *Adapter) ResolveLiveStream(ctx context.Context, channelID string) (*models.StreamDescriptor, error) {
	switch a.station.Recipe {
	case recipeDirect:
		return &models.StreamDescriptor{URL: a.station.LiveURL, Transport: models.TransportHLS}, nil
	case recipeVideoTag:
		return a.resolveVideoTag(ctx)
	case recipeFreecaster:
		return a.resolveFreecaster(ctx)
	default:
		return nil, models.NewStreamError(models.StreamNotFound, a.station.Slug,
			fmt.Errorf("no recipe for station"))
	}
}

// resolveVideoTag parses the live page and returns the <source> of the
// <video id="live"> element.
func (a *Adapter) resolveVideoTag(ctx context.Context) (*models.StreamDescriptor, error) {
	page, err := a.client.GetBody(ctx, a.station.LiveURL, nil)
	if err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, a.station.Slug, err)
	}

	src, ok := findLiveVideoSource(page)
	if !ok {
		return nil, models.NewStreamError(models.StreamNotFound, a.station.Slug,
			fmt.Errorf("no live video element in page"))
	}
	return &models.StreamDescriptor{URL: src, Transport: models.TransportHLS}, nil
}

// findLiveVideoSource walks the document for a video element with id
// "live" and returns the src of its first source child, or the video's
// own src attribute.
func findLiveVideoSource(page []byte) (string, bool) {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return "", false
	}

	var walk func(n *html.Node) (string, bool)
	walk = func(n *html.Node) (string, bool) {
		if n.Type == html.ElementNode && n.Data == "video" && attr(n, "id") == "live" {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "source" {
					if src := attr(c, "src"); src != "" {
						return src, true
					}
				}
			}
			if src := attr(n, "src"); src != "" {
				return src, true
			}
			return "", false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if src, ok := walk(c); ok {
				return src, ok
			}
		}
		return "", false
	}
	return walk(doc)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// freecasterManifest is the hosted player's embed JSON.
type freecasterManifest struct {
	Video struct {
		Src []struct {
			Src string `json:"src"`
		} `json:"src"`
	} `json:"video"`
}

// resolveFreecaster extracts the player token from the live page and
// asks the hosted player for the stream manifest.
func (a *Adapter) resolveFreecaster(ctx context.Context) (*models.StreamDescriptor, error) {
	page, err := a.client.GetBody(ctx, a.station.LiveURL, nil)
	if err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, a.station.Slug, err)
	}

	match := liveTokenPattern.FindSubmatch(page)
	if match == nil {
		return nil, models.NewStreamError(models.StreamNotFound, a.station.Slug,
			fmt.Errorf("no player token in live page"))
	}

	var manifest freecasterManifest
	manifestURL := a.playerBase + string(match[1]) + ".json"
	if err := a.client.GetJSON(ctx, manifestURL, &manifest, nil); err != nil {
		return nil, models.NewStreamError(models.StreamUpstreamError, a.station.Slug, err)
	}
	if len(manifest.Video.Src) == 0 || manifest.Video.Src[0].Src == "" {
		return nil, models.NewStreamError(models.StreamNotFound, a.station.Slug,
			fmt.Errorf("empty stream manifest"))
	}

	return &models.StreamDescriptor{
		URL:       manifest.Video.Src[0].Src,
		Transport: models.TransportHLS,
	}, nil
}
