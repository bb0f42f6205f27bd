package api

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// persistentJar is a cookiejar.Jar that mirrors the cookies set for the API
// origin into a JSON file, so the backend's session cookie survives process
// restarts the way it does in a browser. Application code still never reads
// or writes cookie values; everything goes through the http.Client.
type persistentJar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
	path  string
	base  *url.URL
	known map[string]storedCookie
}

type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"httpOnly,omitempty"`
}

func newPersistentJar(path string, base *url.URL) (*persistentJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &persistentJar{inner: inner, path: path, base: base, known: map[string]storedCookie{}}
	j.load()
	return j, nil
}

// Cookies runs under the jar mutex: Clear swaps the inner jar out from
// under in-flight requests, so every inner access has to be serialized.
func (j *persistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
	if u.Host != j.base.Host {
		return
	}
	now := time.Now()
	for _, c := range cookies {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now)) {
			delete(j.known, c.Name)
			continue
		}
		sc := storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
		if c.MaxAge > 0 {
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		} else if !c.Expires.IsZero() {
			sc.Expires = c.Expires
		}
		j.known[c.Name] = sc
	}
	j.persist()
}

// Clear drops every stored cookie. The in-memory jar is replaced as well,
// so a logged-out client cannot keep riding a stale session cookie.
func (j *persistentJar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.known = map[string]storedCookie{}
	if inner, err := cookiejar.New(nil); err == nil {
		j.inner = inner
	}
	_ = os.Remove(j.path)
}

func (j *persistentJar) load() {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return
	}
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		_ = os.Remove(j.path)
		return
	}
	now := time.Now()
	var cookies []*http.Cookie
	for _, sc := range stored {
		if !sc.Expires.IsZero() && sc.Expires.Before(now) {
			continue
		}
		j.known[sc.Name] = sc
		cookies = append(cookies, &http.Cookie{
			Name:     sc.Name,
			Value:    sc.Value,
			Path:     sc.Path,
			Domain:   sc.Domain,
			Expires:  sc.Expires,
			Secure:   sc.Secure,
			HttpOnly: sc.HTTPOnly,
		})
	}
	if len(cookies) > 0 {
		j.inner.SetCookies(j.base, cookies)
	}
}

func (j *persistentJar) persist() {
	stored := make([]storedCookie, 0, len(j.known))
	for _, sc := range j.known {
		stored = append(stored, sc)
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return
	}
	_ = os.WriteFile(j.path, data, 0600)
}
