package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/clientcredentials"

	appconfig "github.com/inetops/fleetwatch/internal/config"
	"github.com/inetops/fleetwatch/internal/domain"
)

// Client fetches the device list from the inventory HTTP API. When a token
// URL is configured the client authenticates with the OAuth2
// client-credentials flow; the token transport handles refresh.
type Client struct {
	httpClient *http.Client
	url        string
}

func NewClient(cfg *appconfig.InventoryConfig) *Client {
	var httpClient *http.Client
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		httpClient = cc.Client(context.Background())
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout

	return &Client{
		httpClient: httpClient,
		url:        strings.TrimRight(cfg.BaseURL, "/") + cfg.DevicesPath,
	}
}

func (c *Client) FetchDevices(ctx context.Context) ([]domain.Device, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build inventory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory request returned %s", resp.Status)
	}

	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read inventory response: %w", err)
	}

	return decodeDevices(body.Bytes())
}

// FileSource reads the device list from a local JSON dump, the development
// stand-in for the inventory API.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) FetchDevices(ctx context.Context) ([]domain.Device, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read inventory file: %w", err)
	}
	return decodeDevices(data)
}

// decodeDevices accepts both feed shapes: a bare JSON array of devices and
// the wrapped {"devices": [...]} form.
func decodeDevices(data []byte) ([]domain.Device, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var devices []domain.Device
		if err := json.Unmarshal(trimmed, &devices); err != nil {
			return nil, fmt.Errorf("decode device list: %w", err)
		}
		return devices, nil
	}

	var wrapped struct {
		Devices []domain.Device `json:"devices"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode device list: %w", err)
	}
	return wrapped.Devices, nil
}
