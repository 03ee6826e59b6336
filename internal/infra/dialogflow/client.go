package dialogflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.api.ai/api"
	protocolVer    = "20150910"
)

// Client is a client for the api.ai (Dialogflow v1) query endpoint
type Client struct {
	baseURL    string
	token      string
	lang       string
	httpClient *http.Client
	debug      bool
}

// QueryResponse is the body returned by /query
type QueryResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Result    Result `json:"result"`
	Status    Status `json:"status"`
}

// Result carries the classified intent
type Result struct {
	ResolvedQuery    string         `json:"resolvedQuery"`
	Action           string         `json:"action"`
	ActionIncomplete bool           `json:"actionIncomplete"`
	Parameters       map[string]any `json:"parameters"`
	Fulfillment      Fulfillment    `json:"fulfillment"`
}

// Fulfillment is the agent's reply
type Fulfillment struct {
	Speech string `json:"speech"`
}

// Status reports success or the error of a query
type Status struct {
	Code         int    `json:"code"`
	ErrorType    string `json:"errorType"`
	ErrorDetails string `json:"errorDetails"`
}

// NewClient creates a new client with a developer access token
func NewClient(token, lang string) *Client {
	if lang == "" {
		lang = "en"
	}
	return &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		lang:       lang,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetBaseURL overrides the API base URL
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetDebug logs raw responses
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Query sends one utterance within a session. The agent keeps slot-filling
// context per sessionID.
func (c *Client) Query(ctx context.Context, sessionID, query, timezone string) (*QueryResponse, error) {
	params := url.Values{}
	params.Set("v", protocolVer)
	params.Set("lang", c.lang)
	params.Set("query", query)
	params.Set("sessionId", sessionID)
	if timezone != "" {
		params.Set("timezone", timezone)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if c.debug {
		fmt.Printf("[Dialogflow] %d %s\n", resp.StatusCode, truncate(string(body), 500))
	}

	var result QueryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("query failed (%d): %s", resp.StatusCode, truncate(string(body), 200))
		}
		return nil, &MalformedError{Err: err}
	}
	if resp.StatusCode != http.StatusOK || (result.Status.Code != 0 && result.Status.Code != http.StatusOK) {
		return nil, fmt.Errorf("query failed (%d): %s %s", resp.StatusCode, result.Status.ErrorType, result.Status.ErrorDetails)
	}
	return &result, nil
}

// MalformedError reports a successful response that could not be decoded
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return "malformed response: " + e.Err.Error()
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// truncate shortens s to n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
