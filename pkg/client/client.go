// Package client is a Go consumer of the ReWear HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "rewear/pkg/errors"
)

// Client calls the API. It holds no credentials; authenticated calls take a *Session.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type User struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	Role           string  `json:"role,omitempty"`
	Points         int     `json:"points"`
	Location       string  `json:"location,omitempty"`
	ProfilePicture string  `json:"profile_picture,omitempty"`
	Rating         float64 `json:"rating"`
}

type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Size        string   `json:"size"`
	Condition   string   `json:"condition"`
	PointsValue int      `json:"points_value"`
	Images      []string `json:"images"`
	Tags        []string `json:"tags"`
	OwnerID     string   `json:"owner_id"`
	OwnerName   string   `json:"owner_name"`
	Available   bool     `json:"is_available"`
	Approved    bool     `json:"is_approved"`
	Views       int      `json:"views"`
	LikeCount   int      `json:"like_count"`
}

type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
}

type ItemPage struct {
	Items      []Item     `json:"items"`
	Pagination Pagination `json:"pagination"`
}

type Swap struct {
	ID            string `json:"id"`
	RequesterID   string `json:"requester_id"`
	OwnerID       string `json:"owner_id"`
	ItemID        string `json:"item_id"`
	OfferedItemID string `json:"offered_item_id,omitempty"`
	Status        string `json:"status"`
	SwapType      string `json:"swap_type"`
	PointsOffered int    `json:"points_offered"`
	Message       string `json:"message,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Location string `json:"location,omitempty"`
}

type CreateItemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Size        string   `json:"size"`
	Condition   string   `json:"condition"`
	PointsValue int      `json:"points_value"`
	Brand       string   `json:"brand,omitempty"`
	Color       string   `json:"color,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Images      []string `json:"images,omitempty"`
}

type SwapRequest struct {
	ItemID        string `json:"item_id"`
	SwapType      string `json:"swap_type"`
	PointsOffered int    `json:"points_offered,omitempty"`
	OfferedItemID string `json:"offered_item_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

// ItemQuery mirrors the listing browse parameters. Zero values are omitted.
type ItemQuery struct {
	Search    string
	Category  string
	Size      string
	Condition string
	MinPoints *int
	MaxPoints *int
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

func (q ItemQuery) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("search", q.Search)
	set("category", q.Category)
	set("size", q.Size)
	set("condition", q.Condition)
	set("sort_by", q.SortBy)
	set("sort_order", q.SortOrder)
	if q.MinPoints != nil {
		v.Set("min_points", strconv.Itoa(*q.MinPoints))
	}
	if q.MaxPoints != nil {
		v.Set("max_points", strconv.Itoa(*q.MaxPoints))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details []apperrors.FieldError `json:"details"`
	} `json:"error"`
}

type authResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Register creates an account and returns a session for it.
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*Session, error) {
	var result authResult
	if err := c.do(ctx, nil, http.MethodPost, "/api/auth/register", req, &result); err != nil {
		return nil, err
	}
	return &Session{Token: result.Token, User: result.User}, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var result authResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, nil, http.MethodPost, "/api/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &Session{Token: result.Token, User: result.User}, nil
}

// Refresh reloads the session's user, e.g. after a swap changed the balance.
func (c *Client) Refresh(ctx context.Context, session *Session) error {
	var user User
	if err := c.do(ctx, session, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return err
	}
	session.User = &user
	return nil
}

func (c *Client) ListItems(ctx context.Context, query ItemQuery) (*ItemPage, error) {
	path := "/api/items"
	if encoded := query.values().Encode(); encoded != "" {
		path += "?" + encoded
	}
	var page ItemPage
	if err := c.do(ctx, nil, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetItem(ctx context.Context, id string) (*Item, *User, error) {
	var detail struct {
		Item  *Item `json:"item"`
		Owner *User `json:"owner"`
	}
	if err := c.do(ctx, nil, http.MethodGet, "/api/items/"+url.PathEscape(id), nil, &detail); err != nil {
		return nil, nil, err
	}
	return detail.Item, detail.Owner, nil
}

func (c *Client) CreateItem(ctx context.Context, session *Session, req *CreateItemRequest) (*Item, error) {
	var item Item
	if err := c.do(ctx, session, http.MethodPost, "/api/items", req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) ToggleLike(ctx context.Context, session *Session, itemID string) (bool, int, error) {
	var result struct {
		Liked     bool `json:"liked"`
		LikeCount int  `json:"like_count"`
	}
	if err := c.do(ctx, session, http.MethodPost, "/api/items/"+url.PathEscape(itemID)+"/like", nil, &result); err != nil {
		return false, 0, err
	}
	return result.Liked, result.LikeCount, nil
}

func (c *Client) RequestSwap(ctx context.Context, session *Session, req *SwapRequest) (*Swap, error) {
	var swap Swap
	if err := c.do(ctx, session, http.MethodPost, "/api/swaps", req, &swap); err != nil {
		return nil, err
	}
	return &swap, nil
}

// ListSwaps accepts "incoming", "outgoing" or "all" as swapType; status may be empty.
func (c *Client) ListSwaps(ctx context.Context, session *Session, swapType, status string) ([]Swap, error) {
	v := url.Values{}
	if swapType != "" {
		v.Set("type", swapType)
	}
	if status != "" {
		v.Set("status", status)
	}
	path := "/api/swaps"
	if encoded := v.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var swaps []Swap
	if err := c.do(ctx, session, http.MethodGet, path, nil, &swaps); err != nil {
		return nil, err
	}
	return swaps, nil
}

func (c *Client) AcceptSwap(ctx context.Context, session *Session, id string) (*Swap, error) {
	return c.transition(ctx, session, id, "accept")
}

func (c *Client) RejectSwap(ctx context.Context, session *Session, id string) (*Swap, error) {
	return c.transition(ctx, session, id, "reject")
}

func (c *Client) CancelSwap(ctx context.Context, session *Session, id string) (*Swap, error) {
	return c.transition(ctx, session, id, "cancel")
}

func (c *Client) CompleteSwap(ctx context.Context, session *Session, id string) (*Swap, error) {
	return c.transition(ctx, session, id, "complete")
}

func (c *Client) SendMessage(ctx context.Context, session *Session, swapID, message string) error {
	body := map[string]string{"message": message}
	return c.do(ctx, session, http.MethodPost, "/api/swaps/"+url.PathEscape(swapID)+"/message", body, nil)
}

func (c *Client) RateSwap(ctx context.Context, session *Session, swapID string, rating int, comment string) error {
	body := map[string]interface{}{"rating": rating, "comment": comment}
	return c.do(ctx, session, http.MethodPost, "/api/swaps/"+url.PathEscape(swapID)+"/rate", body, nil)
}

func (c *Client) transition(ctx context.Context, session *Session, id, action string) (*Swap, error) {
	var swap Swap
	if err := c.do(ctx, session, http.MethodPut, "/api/swaps/"+url.PathEscape(id)+"/"+action, nil, &swap); err != nil {
		return nil, err
	}
	return &swap, nil
}

// do sends one request and decodes the data field of the response envelope into out.
// Failed requests return an *errors.AppError carrying the server's code and details.
func (c *Client) do(ctx context.Context, session *Session, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if session.Authenticated() {
		httpReq.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return apperrors.New(apperrors.CodeInternal, fmt.Sprintf("unexpected response: %s", resp.Status), resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		appErr := apperrors.New(apperrors.CodeInternal, resp.Status, resp.StatusCode, nil)
		if env.Error != nil {
			appErr.Code = env.Error.Code
			appErr.Message = env.Error.Message
			appErr.Details = env.Error.Details
		}
		return appErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
