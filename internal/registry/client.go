package registry

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kata-shadcn/kata-registry/internal/errors"
)

// maxDocumentSize bounds a single fetched registry document.
const maxDocumentSize = 16 << 20

// ErrNotFound is wrapped by Fetch errors for documents the registry does not have.
var ErrNotFound = stderrors.New("registry document not found")

// Client fetches documents from a running registry.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client for the registry at baseURL
// (e.g. "https://kata-shadcn.dev"). A nil httpClient uses a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  httpClient,
	}
}

// ItemURL returns the URL of a component's registry item.
func (c *Client) ItemURL(name string) string {
	return c.baseURL + "/r/" + url.PathEscape(name) + ".json"
}

// Fetch downloads the document at the registry-relative path (e.g. "/r/index.json").
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	target := c.baseURL + "/" + strings.TrimPrefix(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.New("KR151").Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.New("KR151").
			WithDetail("Could not connect to registry: " + err.Error()).
			WithSuggestion("Check the registry URL and your network connection")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.New("KR151").
			WithDetail(target + " returned status 404").
			Wrap(ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("KR151").
			WithDetail(fmt.Sprintf("%s returned status %d", target, resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, errors.New("KR151").Wrap(err)
	}
	return data, nil
}

// FetchItem downloads and decodes a component's registry item.
// The raw body is returned alongside for hashing.
func (c *Client) FetchItem(ctx context.Context, name string) (*RegistryItem, []byte, error) {
	data, err := c.Fetch(ctx, "/r/"+url.PathEscape(name)+".json")
	if err != nil {
		return nil, nil, err
	}

	var it RegistryItem
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, data, errors.New("KR151").
			WithDetail("Invalid registry item " + name + ": " + err.Error())
	}
	return &it, data, nil
}
