package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/carokun/sachathescheduler/internal/api"
)

// Handler implements the MCP tools using the HTTP client
type Handler struct {
	client *Client
}

// NewHandler creates a new MCP handler
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// ListAccountsInput is empty - no input needed
type ListAccountsInput struct{}

// ListAccountsOutput contains all accounts
type ListAccountsOutput struct {
	Accounts []api.Account `json:"accounts"`
}

// ListAccounts returns every account with its conversation state
func (h *Handler) ListAccounts(ctx context.Context, req *mcpsdk.CallToolRequest, input ListAccountsInput) (*mcpsdk.CallToolResult, ListAccountsOutput, error) {
	accounts, err := h.client.ListAccounts()
	if err != nil {
		return nil, ListAccountsOutput{}, err
	}
	if accounts == nil {
		accounts = []api.Account{}
	}
	return nil, ListAccountsOutput{Accounts: accounts}, nil
}

// AccountInput names an account
type AccountInput struct {
	AccountID string `json:"account_id" jsonschema:"the platform user id of the account"`
}

// AccountStatusOutput describes one account
type AccountStatusOutput struct {
	Account *api.Account `json:"account"`
	Summary string       `json:"summary"`
}

// AccountStatus reports whether an account is linked and what it is waiting for
func (h *Handler) AccountStatus(ctx context.Context, req *mcpsdk.CallToolRequest, input AccountInput) (*mcpsdk.CallToolResult, AccountStatusOutput, error) {
	if input.AccountID == "" {
		return nil, AccountStatusOutput{}, fmt.Errorf("account_id is required")
	}

	acc, err := h.client.GetAccount(input.AccountID)
	if err != nil {
		return nil, AccountStatusOutput{}, err
	}
	return nil, AccountStatusOutput{Account: acc, Summary: Summarize(acc)}, nil
}

// ListItemsOutput contains scheduled items
type ListItemsOutput struct {
	Items []api.Item `json:"items"`
}

// ListItems returns the confirmed reminders and meetings of an account
func (h *Handler) ListItems(ctx context.Context, req *mcpsdk.CallToolRequest, input AccountInput) (*mcpsdk.CallToolResult, ListItemsOutput, error) {
	if input.AccountID == "" {
		return nil, ListItemsOutput{}, fmt.Errorf("account_id is required")
	}

	items, err := h.client.ListItems(input.AccountID)
	if err != nil {
		return nil, ListItemsOutput{}, err
	}
	if items == nil {
		items = []api.Item{}
	}
	return nil, ListItemsOutput{Items: items}, nil
}

// Summarize renders an account status as one sentence
func Summarize(acc *api.Account) string {
	switch acc.State {
	case "unlinked":
		return fmt.Sprintf("%s has not connected a calendar yet.", acc.ID)
	case "awaiting_confirmation":
		if acc.Pending != nil {
			return fmt.Sprintf("%s is being asked to confirm: %s", acc.ID, acc.Pending.Title)
		}
		return fmt.Sprintf("%s is being asked to confirm a request.", acc.ID)
	default:
		return fmt.Sprintf("%s is linked and idle.", acc.ID)
	}
}
