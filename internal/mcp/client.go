package mcp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/carokun/sachathescheduler/internal/api"
)

// Client is the HTTP client for the scheduler admin API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new MCP client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListAccounts lists all accounts, most recently active first
func (c *Client) ListAccounts() ([]api.Account, error) {
	var result struct {
		Accounts []api.Account `json:"accounts"`
	}
	if err := c.get("/api/accounts", &result); err != nil {
		return nil, err
	}
	return result.Accounts, nil
}

// GetAccount gets one account
func (c *Client) GetAccount(accountID string) (*api.Account, error) {
	var acc api.Account
	if err := c.get("/api/accounts/"+url.PathEscape(accountID), &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// ListItems lists the scheduled items of an account
func (c *Client) ListItems(accountID string) ([]api.Item, error) {
	var result struct {
		Items []api.Item `json:"items"`
	}
	if err := c.get("/api/accounts/"+url.PathEscape(accountID)+"/items", &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (c *Client) get(path string, result interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
