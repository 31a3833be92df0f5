// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package request

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/skillgate/internal/log"
	platformnet "github.com/ManuGH/skillgate/internal/platform/net"
)

// Interface names reported in supportedInterfaces.
const (
	InterfaceAudioPlayer    = "AudioPlayer"
	InterfaceVideoApp       = "VideoApp"
	InterfaceRenderDocument = "Alexa.Presentation.APL.RenderDocument"
	// InterfaceAPL is the key newer devices report for APL support.
	InterfaceAPL = "Alexa.Presentation.APL"
)

const maxAddressBody = 64 << 10

// LocationPermission selects which device address the skill may read.
type LocationPermission string

// Location permission modes.
const (
	LocationNone                 LocationPermission = "none"
	LocationFullAddress          LocationPermission = "full_address"
	LocationCountryAndPostalCode LocationPermission = "country_and_postal_code"
)

// Address is the device address returned by the platform settings API.
// Only CountryCode and PostalCode are set in country_and_postal_code mode.
type Address struct {
	AddressLine1     string `json:"addressLine1,omitempty"`
	AddressLine2     string `json:"addressLine2,omitempty"`
	AddressLine3     string `json:"addressLine3,omitempty"`
	City             string `json:"city,omitempty"`
	StateOrRegion    string `json:"stateOrRegion,omitempty"`
	DistrictOrCounty string `json:"districtOrCounty,omitempty"`
	CountryCode      string `json:"countryCode,omitempty"`
	PostalCode       string `json:"postalCode,omitempty"`
}

// Device describes the requesting device and its capabilities.
type Device struct {
	id         string
	interfaces map[string]struct{}

	session    Session
	permission LocationPermission
	client     *http.Client

	locOnce  sync.Once
	location *Address
}

func newDevice(env *envelope, session Session, cfg Config) *Device {
	d := &Device{
		interfaces: make(map[string]struct{}),
		session:    session,
		permission: cfg.LocationPermission,
		client:     cfg.HTTPClient,
	}

	sys := env.system()
	if sys == nil {
		return d
	}

	supported := sys.SupportedInterfaces
	if sys.Device != nil {
		d.id = sys.Device.DeviceID
		if len(sys.Device.SupportedInterfaces) > 0 {
			supported = sys.Device.SupportedInterfaces
		}
	}
	for name := range supported {
		d.interfaces[name] = struct{}{}
	}
	return d
}

// ID returns the platform device id.
func (d *Device) ID() string { return d.id }

// Supports reports whether the device advertises the named interface.
func (d *Device) Supports(name string) bool {
	_, ok := d.interfaces[name]
	return ok
}

// AudioSupported reports AudioPlayer support.
func (d *Device) AudioSupported() bool { return d.Supports(InterfaceAudioPlayer) }

// VideoSupported reports VideoApp support.
func (d *Device) VideoSupported() bool { return d.Supports(InterfaceVideoApp) }

// APLSupported reports RenderDocument support.
func (d *Device) APLSupported() bool {
	return d.Supports(InterfaceRenderDocument) || d.Supports(InterfaceAPL)
}

// Location returns the device address. The lookup runs at most once per
// device and only when a location permission mode is configured. Failed or
// non-200 lookups yield nil; they are never retried.
func (d *Device) Location(ctx context.Context) *Address {
	d.locOnce.Do(func() {
		d.location = d.lookup(ctx)
	})
	return d.location
}

func (d *Device) lookup(ctx context.Context) *Address {
	var suffix string
	switch d.permission {
	case LocationFullAddress:
	case LocationCountryAndPostalCode:
		suffix = "/countryAndPostalCode"
	default:
		return nil
	}

	logger := xglog.WithComponentFromContext(ctx, "device").With().
		Str(xglog.FieldDeviceID, d.id).
		Str("mode", string(d.permission)).
		Logger()

	if d.id == "" || d.session.APIEndpoint == "" {
		locationLookups.WithLabelValues(string(d.permission), "skipped").Inc()
		logger.Debug().Str(xglog.FieldEvent, "device.location_skipped").Msg("missing device id or api endpoint")
		return nil
	}

	base, ok := platformnet.ParseDirectHTTPURL(d.session.APIEndpoint)
	if !ok {
		locationLookups.WithLabelValues(string(d.permission), "skipped").Inc()
		logger.Warn().
			Str(xglog.FieldEvent, "device.location_skipped").
			Str("endpoint", platformnet.SanitizeURL(d.session.APIEndpoint)).
			Msg("api endpoint is not a plain http(s) URL")
		return nil
	}
	base.RawQuery = ""
	endpoint := strings.TrimRight(base.String(), "/") +
		"/v1/devices/" + url.PathEscape(d.id) + "/settings/address" + suffix

	addr, err := d.fetch(ctx, endpoint)
	if err != nil {
		locationLookups.WithLabelValues(string(d.permission), "failed").Inc()
		logger.Warn().Err(err).Str(xglog.FieldEvent, "device.location_failed").Msg("device address lookup failed")
		return nil
	}
	locationLookups.WithLabelValues(string(d.permission), "ok").Inc()
	logger.Debug().Str(xglog.FieldEvent, "device.location_resolved").Msg("device address resolved")
	return addr
}

func (d *Device) fetch(ctx context.Context, endpoint string) (*Address, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build address request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.session.APIAccessToken)
	req.Header.Set("Accept", "application/json")

	client := d.client
	if client == nil {
		client = defaultLocationClient()
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxAddressBody))
		return nil, fmt.Errorf("address lookup returned status %d", resp.StatusCode)
	}

	var addr Address
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAddressBody)).Decode(&addr); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	return &addr, nil
}

// MarshalZerologObject logs the device without its address.
func (d *Device) MarshalZerologObject(e *zerolog.Event) {
	e.Str("id", d.id).
		Bool("audio", d.AudioSupported()).
		Bool("video", d.VideoSupported()).
		Bool("apl", d.APLSupported())
}
