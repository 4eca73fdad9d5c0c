package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client provides typed access to the microblog API for command-line tools.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:4000"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, v any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.baseURL + path
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg := extractError(resp.Body)
		return APIError{Status: resp.StatusCode, Message: msg}
	}

	if v == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func extractError(body io.Reader) string {
	if body == nil {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(payload.Error)
}

// Session is returned by register and login.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// User reflects API user payloads.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Bio       string    `json:"bio"`
	Location  string    `json:"location"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// Author is the summary embedded in posts and comments.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// Post reflects API post payloads.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment reflects API comment payloads.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterRequest holds the signup form.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Username string `json:"username,omitempty"`
	Location string `json:"location,omitempty"`
}

// ProfileUpdate carries optional profile fields.
type ProfileUpdate struct {
	FullName *string `json:"fullName,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Location *string `json:"location,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (Session, error) {
	var resp Session
	err := c.do(ctx, http.MethodPost, "/auth/register", in, "", &resp)
	return resp, err
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var resp Session
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/login", body, "", &resp)
	return resp, err
}

// Me returns the user behind token.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var resp User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, token, &resp)
	return resp, err
}

// Timeline lists all posts, newest first.
func (c *Client) Timeline(ctx context.Context) ([]Post, error) {
	var resp []Post
	err := c.do(ctx, http.MethodGet, "/posts", nil, "", &resp)
	return resp, err
}

// UserPosts lists one author's posts.
func (c *Client) UserPosts(ctx context.Context, userID string) ([]Post, error) {
	var resp []Post
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/posts", nil, "", &resp)
	return resp, err
}

// CreatePost publishes a post.
func (c *Client) CreatePost(ctx context.Context, token, content, image string) (Post, error) {
	var resp Post
	body := map[string]string{"content": content}
	if image != "" {
		body["image"] = image
	}
	err := c.do(ctx, http.MethodPost, "/posts", body, token, &resp)
	return resp, err
}

// ToggleLike likes or unlikes a post.
func (c *Client) ToggleLike(ctx context.Context, token, postID string) (Post, error) {
	var resp Post
	err := c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/like", nil, token, &resp)
	return resp, err
}

// AddComment comments on a post.
func (c *Client) AddComment(ctx context.Context, token, postID, content string) (Comment, error) {
	var resp Comment
	body := map[string]string{"content": content}
	err := c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/comments", body, token, &resp)
	return resp, err
}

// DeletePost deletes one of the caller's posts.
func (c *Client) DeletePost(ctx context.Context, token, postID string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postID), nil, token, nil)
}

// UpdateProfile edits the caller's profile.
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (User, error) {
	var resp User
	err := c.do(ctx, http.MethodPut, "/users/profile", update, token, &resp)
	return resp, err
}
