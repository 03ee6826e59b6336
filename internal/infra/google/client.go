package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	oauthapi "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Scopes requested when linking an account
var Scopes = []string{
	oauthapi.UserinfoProfileScope,
	oauthapi.UserinfoEmailScope,
	calendar.CalendarScope,
}

// Profile is the Google identity behind a token
type Profile struct {
	ID    string
	Name  string
	Email string
}

// AllDayEvent is an event spanning whole days, End exclusive (YYYY-MM-DD)
type AllDayEvent struct {
	CalendarID  string
	Summary     string
	Description string
	StartDate   string
	EndDate     string
}

// Client wraps Google OAuth and the Calendar API
type Client struct {
	oauth      *oauth2.Config
	endpoint   string       // API endpoint override
	httpClient *http.Client // Base transport, nil uses http.DefaultClient
}

// NewClient creates a client from a "web" or "installed" client secret JSON document
func NewClient(clientSecretJSON []byte, redirectURL string) (*Client, error) {
	cfg, err := googleoauth.ConfigFromJSON(clientSecretJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return &Client{oauth: cfg}, nil
}

// SetEndpoint points API calls at another base URL (for tests and proxies)
func (c *Client) SetEndpoint(endpoint string, httpClient *http.Client) {
	c.endpoint = endpoint
	c.httpClient = httpClient
}

// RedirectURL returns the configured OAuth callback
func (c *Client) RedirectURL() string {
	return c.oauth.RedirectURL
}

// AuthCodeURL returns the consent page URL. Offline access with forced
// consent makes Google issue a refresh token every time.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.oauth.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

// Refresh obtains a new access token from a refresh token
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token: missing refresh token")
	}
	src := c.oauth.TokenSource(c.withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return tok, nil
}

// Profile fetches the user's Google profile
func (c *Client) Profile(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	svc, err := oauthapi.NewService(ctx, c.options(ctx, tok)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get userinfo: %w", err)
	}
	return &Profile{ID: info.Id, Name: info.Name, Email: info.Email}, nil
}

// InsertAllDayEvent creates an event on the user's calendar
func (c *Client) InsertAllDayEvent(ctx context.Context, tok *oauth2.Token, ev AllDayEvent) (*calendar.Event, error) {
	svc, err := calendar.NewService(ctx, c.options(ctx, tok)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	calendarID := ev.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	created, err := svc.Events.Insert(calendarID, &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &calendar.EventDateTime{Date: ev.StartDate},
		End:         &calendar.EventDateTime{Date: ev.EndDate},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	fmt.Printf("[Google] Event created: %s\n", created.HtmlLink)
	return created, nil
}

// options authorizes API calls with exactly tok. Refreshing is the
// caller's job so that new tokens get persisted.
func (c *Client) options(ctx context.Context, tok *oauth2.Token) []option.ClientOption {
	httpClient := oauth2.NewClient(c.withHTTPClient(ctx), oauth2.StaticTokenSource(tok))
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	return opts
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}
