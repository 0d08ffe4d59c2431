// Package client is the Go consumer of the REST API: a typed HTTP client plus
// a state store that mirrors authentication, profile and post data.
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

	"devconnect/internal/apperr"
	"devconnect/internal/posts"
	"devconnect/internal/profiles"
	"devconnect/internal/users"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response decoded from the server's error contract.
type APIError struct {
	Status int                 `json:"-"`
	Msg    string              `json:"msg,omitempty"`
	Code   string              `json:"code,omitempty"`
	Errors []apperr.FieldError `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Msg)
	}
	if len(e.Errors) > 0 {
		msgs := make([]string, 0, len(e.Errors))
		for _, f := range e.Errors {
			msgs = append(msgs, f.Msg)
		}
		return fmt.Sprintf("%d: %s", e.Status, strings.Join(msgs, "; "))
	}
	return fmt.Sprintf("%d: %s", e.Status, http.StatusText(e.Status))
}

// Client calls the API under baseURL, sending the stored token on every request.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStorage
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the server at baseURL (without the /api prefix).
func New(baseURL string, tokens TokenStorage, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, in users.RegisterInput) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/users", in, &out)
	return out.Token, err
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, in users.LoginInput) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth", in, &out)
	return out.Token, err
}

// CurrentUser returns the user the stored token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*users.User, error) {
	var out users.User
	if err := c.do(ctx, http.MethodGet, "/auth", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) profile(ctx context.Context, method, path string, in any) (*profiles.Profile, error) {
	var out profiles.Profile
	if err := c.do(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentProfile returns the caller's profile.
func (c *Client) CurrentProfile(ctx context.Context) (*profiles.Profile, error) {
	return c.profile(ctx, http.MethodGet, "/profile/me", nil)
}

// Profiles lists all profiles.
func (c *Client) Profiles(ctx context.Context) ([]profiles.Profile, error) {
	var out []profiles.Profile
	err := c.do(ctx, http.MethodGet, "/profile", nil, &out)
	return out, err
}

// ProfileByUserID returns the profile owned by userID.
func (c *Client) ProfileByUserID(ctx context.Context, userID string) (*profiles.Profile, error) {
	return c.profile(ctx, http.MethodGet, "/profile/user/"+url.PathEscape(userID), nil)
}

// UpsertProfile creates or updates the caller's profile.
func (c *Client) UpsertProfile(ctx context.Context, in profiles.Input) (*profiles.Profile, error) {
	return c.profile(ctx, http.MethodPost, "/profile", in)
}

// AddExperience adds an experience entry.
func (c *Client) AddExperience(ctx context.Context, in profiles.ExperienceInput) (*profiles.Profile, error) {
	return c.profile(ctx, http.MethodPut, "/profile/experience", in)
}

// DeleteExperience removes an experience entry.
func (c *Client) DeleteExperience(ctx context.Context, id string) (*profiles.Profile, error) {
	return c.profile(ctx, http.MethodDelete, "/profile/experience/"+url.PathEscape(id), nil)
}

// AddEducation adds an education entry.
func (c *Client) AddEducation(ctx context.Context, in profiles.EducationInput) (*profiles.Profile, error) {
	return c.profile(ctx, http.MethodPut, "/profile/education", in)
}

// DeleteEducation removes an education entry.
func (c *Client) DeleteEducation(ctx context.Context, id string) (*profiles.Profile, error) {
	return c.profile(ctx, http.MethodDelete, "/profile/education/"+url.PathEscape(id), nil)
}

// DeleteAccount removes the caller's account, profile and posts.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/profile", nil, nil)
}

// Posts lists the feed.
func (c *Client) Posts(ctx context.Context) ([]posts.Post, error) {
	var out []posts.Post
	err := c.do(ctx, http.MethodGet, "/posts", nil, &out)
	return out, err
}

// Post returns a single post.
func (c *Client) Post(ctx context.Context, id string) (*posts.Post, error) {
	var out posts.Post
	if err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddPost publishes a post.
func (c *Client) AddPost(ctx context.Context, in posts.TextInput) (*posts.Post, error) {
	var out posts.Post
	if err := c.do(ctx, http.MethodPost, "/posts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost removes one of the caller's posts.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil)
}

// Like likes a post and returns its likes.
func (c *Client) Like(ctx context.Context, id string) ([]posts.Like, error) {
	var out []posts.Like
	err := c.do(ctx, http.MethodPut, "/posts/like/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Unlike removes the caller's like and returns the remaining likes.
func (c *Client) Unlike(ctx context.Context, id string) ([]posts.Like, error) {
	var out []posts.Like
	err := c.do(ctx, http.MethodPut, "/posts/unlike/"+url.PathEscape(id), nil, &out)
	return out, err
}

// AddComment comments on a post and returns its comments.
func (c *Client) AddComment(ctx context.Context, postID string, in posts.TextInput) ([]posts.Comment, error) {
	var out []posts.Comment
	err := c.do(ctx, http.MethodPost, "/posts/comment/"+url.PathEscape(postID), in, &out)
	return out, err
}

// RemoveComment removes one of the caller's comments and returns the rest.
func (c *Client) RemoveComment(ctx context.Context, postID, commentID string) ([]posts.Comment, error) {
	var out []posts.Comment
	path := "/posts/comment/" + url.PathEscape(postID) + "/" + url.PathEscape(commentID)
	err := c.do(ctx, http.MethodDelete, path, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Load(); token != "" {
			req.Header.Set("x-auth-token", token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil {
			apiErr.Msg = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
