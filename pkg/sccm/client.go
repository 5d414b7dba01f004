package sccm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/endpointlab/biosmgr/internal/env"
	"github.com/endpointlab/biosmgr/internal/settings"
)

// ErrCatalog indicates a package-catalog call failed. Any catalog object
// already created before the failure is left intact for manual cleanup.
var ErrCatalog = errors.New("package catalog call failed")

const (
	// EnvSCCMServer overrides the site server taken from settings.
	EnvSCCMServer = "SCCM_SERVER"
	// EnvSCCMSiteCode overrides the site code taken from settings.
	EnvSCCMSiteCode = "SCCM_SITE_CODE"

	defaultHTTPTimeout = 30 * time.Second
	defaultRetryMax    = 3

	packageResource = "/AdminService/wmi/SMS_Package"

	// pkgSourceFlagDirect tells the distribution points to access the
	// package source path directly instead of keeping a compressed copy.
	pkgSourceFlagDirect = 2
)

// PackageInput describes the catalog package to create.
type PackageInput struct {
	Name         string
	SourcePath   string
	Version      string
	Manufacturer string
}

// Client talks to the ConfigMgr AdminService REST endpoint.
type Client struct {
	server   string
	siteCode string

	httpClient *retryablehttp.Client

	// used for mock test
	doJSONRequestFunc func(ctx context.Context, method, url string, payload any) (*http.Response, []byte, error)
}

// NewClient constructs a catalog client for the given site server and site code.
func NewClient(server, siteCode string) (*Client, error) {
	server = strings.TrimSpace(server)
	siteCode = strings.TrimSpace(siteCode)
	if server == "" {
		return nil, errors.New("sccm: site server must not be empty")
	}
	if siteCode == "" {
		return nil, errors.New("sccm: site code must not be empty")
	}
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = defaultRetryMax
	httpClient.HTTPClient.Timeout = defaultHTTPTimeout
	httpClient.Logger = nil
	return &Client{
		server:     server,
		siteCode:   siteCode,
		httpClient: httpClient,
	}, nil
}

// NewClientFromSettings constructs a client from persisted settings, letting
// $SCCM_SERVER / $SCCM_SITE_CODE override the stored values.
func NewClientFromSettings(cfg *settings.Settings) (*Client, error) {
	if cfg == nil {
		return nil, settings.ErrSettingsMissing
	}
	server := env.String(EnvSCCMServer, cfg.SCCMServer)
	siteCode := env.String(EnvSCCMSiteCode, cfg.SCCMSiteCode)
	if server == "" || siteCode == "" {
		return nil, errors.Wrap(settings.ErrSettingsMissing, "sccm server or site code missing")
	}
	return NewClient(server, siteCode)
}

// SiteCode returns the configured ConfigMgr site code.
func (c *Client) SiteCode() string {
	return c.siteCode
}

type createPackageRequest struct {
	Name          string `json:"Name"`
	Manufacturer  string `json:"Manufacturer"`
	Version       string `json:"Version"`
	PkgSourcePath string `json:"PkgSourcePath"`
	PkgSourceFlag int    `json:"PkgSourceFlag"`
}

type createPackageResponse struct {
	PackageID string `json:"PackageID"`
}

// CreatePackage creates a distributable package in the site catalog and
// returns the opaque package identifier the site assigns.
func (c *Client) CreatePackage(ctx context.Context, in PackageInput) (string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", errors.Wrap(ErrCatalog, "package name must not be empty")
	}
	if strings.TrimSpace(in.SourcePath) == "" {
		return "", errors.Wrap(ErrCatalog, "package source path must not be empty")
	}

	payload := createPackageRequest{
		Name:          in.Name,
		Manufacturer:  in.Manufacturer,
		Version:       in.Version,
		PkgSourcePath: in.SourcePath,
		PkgSourceFlag: pkgSourceFlagDirect,
	}
	url := c.endpoint(packageResource)
	resp, body, err := c.doJSONRequest(ctx, http.MethodPost, url, payload)
	if err != nil {
		return "", errors.Wrapf(ErrCatalog, "create package request failed: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Wrapf(ErrCatalog, "create package returned status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var parsed createPackageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.Wrapf(ErrCatalog, "decode create package response failed: %v", err)
	}
	if parsed.PackageID == "" {
		return "", errors.Wrap(ErrCatalog, "create package response carries no PackageID")
	}
	log.Info().
		Str("package_id", parsed.PackageID).
		Str("site_code", c.siteCode).
		Str("name", in.Name).
		Msg("catalog package created")
	return parsed.PackageID, nil
}

func (c *Client) endpoint(resource string) string {
	server := c.server
	if !strings.Contains(server, "://") {
		server = "https://" + server
	}
	return strings.TrimRight(server, "/") + resource
}

func (c *Client) doJSONRequest(ctx context.Context, method, url string, payload any) (*http.Response, []byte, error) {
	if c.doJSONRequestFunc != nil {
		return c.doJSONRequestFunc(ctx, method, url, payload)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encode request payload: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("client-request-id", uuid.NewString())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
