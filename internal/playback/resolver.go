// Package playback turns the raw format list returned by an entitlement
// endpoint into a single playable stream descriptor.
package playback

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/auviostream/auviostream/internal/httpclient"
	"github.com/auviostream/auviostream/internal/models"
)

// formatPriority ranks delivery formats, higher is better. Unknown
// formats rank at zero and are only ever picked as a last resort.
var formatPriority = map[string]int{
	"MSS":             1,
	"AAC":             2,
	"MP3":             3,
	"SMOOTHSTREAMING": 4,
	"HLS":             5,
	"DASH":            6,
}

// Resolver selects a playable format and prepares its DRM material.
type Resolver struct {
	client *httpclient.Client
	logger *slog.Logger
}

// NewResolver creates a resolver. The HTTP client is only used for the
// best-effort certificate prefetch.
func NewResolver(client *httpclient.Client, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{client: client, logger: logger}
}

// Resolve scans the raw formats in priority order and returns the winning
// descriptor.
//
// Entries missing a format name or a media locator are skipped outright.
// The scan normally stops at the first unprotected HLS entry, but any
// entry carrying a Widevine DRM block wins immediately, even over a
// higher-priority clear format: a protected stream with license material
// is preferred to guessing whether a clear one will play.
func (r *Resolver) Resolve(ctx context.Context, platform string, formats []models.RawFormat) (*models.StreamDescriptor, error) {
	sorted := make([]models.RawFormat, len(formats))
	copy(sorted, formats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return formatPriority[strings.ToUpper(sorted[i].Format)] > formatPriority[strings.ToUpper(sorted[j].Format)]
	})

	var selected *models.RawFormat
	var license, certificate string

	for i := range sorted {
		f := &sorted[i]
		if f.Format == "" || f.MediaLocator == "" {
			continue
		}

		selected = f

		if wv, ok := f.DRM[models.WidevineScheme]; ok && len(f.DRM) > 0 {
			license = wv.LicenseServerURL
			certificate = wv.CertificateURL
			break
		}
		if len(f.DRM) == 0 && strings.EqualFold(f.Format, "HLS") {
			break
		}
	}

	if selected == nil {
		return nil, models.NewStreamError(models.StreamNoPlayableFormat, platform, nil)
	}

	descriptor := &models.StreamDescriptor{
		URL:       selected.MediaLocator,
		Transport: transportFor(selected.Format),
	}
	if license != "" {
		descriptor.DRM = &models.DRMInfo{
			LicenseURL:     license,
			CertificateURL: certificate,
		}
		r.prefetchCertificate(ctx, certificate)
	}

	return descriptor, nil
}

// prefetchCertificate warms the DRM certificate so the player's first
// license request does not stall on it. Failure never blocks playback.
func (r *Resolver) prefetchCertificate(ctx context.Context, certURL string) {
	if certURL == "" || r.client == nil {
		return
	}
	if _, err := r.client.GetBody(ctx, certURL, nil); err != nil {
		r.logger.Warn("certificate prefetch failed, continuing without it",
			slog.String("error", err.Error()),
		)
	}
}

// transportFor maps an upstream format name onto a transport.
func transportFor(format string) models.StreamTransport {
	switch strings.ToUpper(format) {
	case "DASH", "SMOOTHSTREAMING", "MSS":
		return models.TransportDASH
	case "HLS":
		return models.TransportHLS
	case "MP3", "AAC":
		return models.TransportAudio
	default:
		return models.TransportMP4
	}
}

// entitlementError is the error payload shape of the entitlement endpoint.
type entitlementError struct {
	Message string `json:"message"`
}

// InterpretEntitlementError maps an entitlement HTTP failure onto a typed
// stream error. A 403 with a NOT_ENTITLED message means the account lacks
// the required subscription; everything else is an upstream error.
func InterpretEntitlementError(platform string, err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusForbidden {
		var payload entitlementError
		if json.Unmarshal(statusErr.Body, &payload) == nil && payload.Message == "NOT_ENTITLED" {
			return models.NewStreamError(models.StreamNotEntitled, platform, err)
		}
	}
	return models.NewStreamError(models.StreamUpstreamError, platform, err)
}
