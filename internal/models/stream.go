package models

// StreamTransport is the delivery protocol of a resolved stream.
type StreamTransport string

const (
	TransportHLS   StreamTransport = "hls"
	TransportDASH  StreamTransport = "dash"
	TransportMP4   StreamTransport = "mp4"
	TransportAudio StreamTransport = "audio"
)

// DRMInfo carries the license endpoints for a protected stream.
type DRMInfo struct {
	LicenseURL     string `json:"license_url"`
	CertificateURL string `json:"certificate_url,omitempty"`
}

// StreamDescriptor is the result of stream resolution: a playable locator
// plus optional DRM material. Descriptors are ephemeral; upstream locators
// and license URLs expire quickly, so they are resolved per playback and
// never persisted.
type StreamDescriptor struct {
	URL       string          `json:"url"`
	Transport StreamTransport `json:"transport"`
	DRM       *DRMInfo        `json:"drm,omitempty"`
}

// Protected reports whether the stream requires a DRM license.
func (s *StreamDescriptor) Protected() bool {
	return s.DRM != nil && s.DRM.LicenseURL != ""
}

// RawFormat is one playable format entry as reported by an entitlement
// endpoint, before resolution picks a winner.
type RawFormat struct {
	Format       string            `json:"format"`
	MediaLocator string            `json:"mediaLocator"`
	DRM          map[string]RawDRM `json:"drm,omitempty"`
}

// RawDRM is the per-scheme DRM block inside a RawFormat.
type RawDRM struct {
	LicenseServerURL string `json:"licenseServerUrl"`
	CertificateURL   string `json:"certificateUrl,omitempty"`
}

// WidevineScheme is the DRM scheme key used by the entitlement API.
const WidevineScheme = "com.widevine.alpha"
