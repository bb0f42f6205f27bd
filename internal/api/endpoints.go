package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"postprep-cli/internal/app"
)

func decodeJSON(body []byte, out interface{}) error {
	return json.Unmarshal(body, out)
}

func marshalJSON(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}

// Login authenticates and returns the profile from the response body. A
// response without a valid profile fails with ErrBadProfile.
func (c *Client) Login(ctx context.Context, email, password string) (app.User, error) {
	payload := marshalJSON(map[string]string{"email": email, "password": password})
	var u app.User
	if err := c.do(ctx, http.MethodPost, "/auth/login", "application/json", payload, &u); err != nil {
		return app.User{}, err
	}
	if err := u.Validate(); err != nil {
		return app.User{}, fmt.Errorf("%w: %v", ErrBadProfile, err)
	}
	return u, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	payload := marshalJSON(map[string]string{"username": username, "email": email, "password": password})
	return c.do(ctx, http.MethodPost, "/auth/register", "application/json", payload, nil)
}

// Logout invalidates the server-side session. Callers treat failures as
// log-only; the local teardown happens regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", "application/json", nil, nil)
}

// Refresh silently renews the session cookie.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refreshSession(ctx)
}

// UploadPDF sends the file at path as a multipart request and returns the
// article projection the backend created for it.
func (c *Client) UploadPDF(ctx context.Context, path string) (app.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return app.Article{}, fmt.Errorf("reading pdf: %w", err)
	}
	return c.UploadPDFData(ctx, filepath.Base(path), data)
}

func (c *Client) UploadPDFData(ctx context.Context, filename string, data []byte) (app.Article, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("pdfFile", filename)
	if err != nil {
		return app.Article{}, err
	}
	if _, err := part.Write(data); err != nil {
		return app.Article{}, err
	}
	if err := w.Close(); err != nil {
		return app.Article{}, err
	}

	var a app.Article
	if err := c.do(ctx, http.MethodPost, "/article/upload/pdf", w.FormDataContentType(), buf.Bytes(), &a); err != nil {
		return app.Article{}, err
	}
	return a, nil
}

// UploadText submits raw text as {"text": ...}.
func (c *Client) UploadText(ctx context.Context, text string) (app.Article, error) {
	payload := marshalJSON(map[string]string{"text": text})
	var a app.Article
	if err := c.do(ctx, http.MethodPost, "/article/upload/text", "application/json", payload, &a); err != nil {
		return app.Article{}, err
	}
	return a, nil
}

func (c *Client) MyArticles(ctx context.Context) ([]app.LiteArticle, error) {
	var list []app.LiteArticle
	if err := c.do(ctx, http.MethodGet, "/article/myArticles", "", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Article fetches the full projection. Detail always re-queries the backend;
// there is no client-side merge with the lite projection.
func (c *Client) Article(ctx context.Context, id string) (app.Article, error) {
	var a app.Article
	if err := c.do(ctx, http.MethodGet, "/article/"+url.PathEscape(id), "", nil, &a); err != nil {
		return app.Article{}, err
	}
	return a, nil
}

func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/article/delete/"+url.PathEscape(id), "", nil, nil)
}

func (c *Client) AdminDashboard(ctx context.Context) (app.GlobalStats, error) {
	var stats app.GlobalStats
	if err := c.do(ctx, http.MethodGet, "/admin/dashboard", "", nil, &stats); err != nil {
		return app.GlobalStats{}, err
	}
	return stats, nil
}

func (c *Client) AdminDailyStats(ctx context.Context) ([]app.ChartPoint, error) {
	var points []app.ChartPoint
	if err := c.do(ctx, http.MethodGet, "/admin/dashboard/stats/daily", "", nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) AdminUsers(ctx context.Context) ([]app.User, error) {
	var users []app.User
	if err := c.do(ctx, http.MethodGet, "/admin/users", "", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) AdminDeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), "", nil, nil)
}

func (c *Client) AdminArticles(ctx context.Context) ([]app.Article, error) {
	var list []app.Article
	if err := c.do(ctx, http.MethodGet, "/admin/articles", "", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) AdminDeleteArticle(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/articles/"+url.PathEscape(id), "", nil, nil)
}
