// Package cookiejar loads a read-only snapshot of a Firefox-style
// cookies.sqlite database into a standard http.CookieJar, the Go
// replacement for libsoup's SoupCookieJarSqlite that spec.md §6/§9 call
// for: "$XDG_CONFIG_HOME/gtuber/cookies.sqlite ... copied to a private
// temp directory on first open, opened read-only."
package cookiejar

import (
	"fmt"
	"io"
	"net/http"
	stdcookiejar "net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"golang.org/x/net/publicsuffix"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mozCookie maps one row of Firefox's moz_cookies table — the schema the
// "cookies.sqlite" filename implies, and the one real browsers and
// extraction tools in the wild actually produce.
type mozCookie struct {
	Name       string `gorm:"column:name"`
	Value      string `gorm:"column:value"`
	Host       string `gorm:"column:host"`
	Path       string `gorm:"column:path"`
	Expiry     int64  `gorm:"column:expiry"`
	IsSecure   bool   `gorm:"column:isSecure"`
	IsHTTPOnly bool   `gorm:"column:isHttpOnly"`
}

func (mozCookie) TableName() string { return "moz_cookies" }

// Jar wraps a standard http.CookieJar populated from a cookies.sqlite
// snapshot. It implements http.CookieJar by embedding one, so it can be
// passed anywhere an http.CookieJar is accepted.
type Jar struct {
	http.CookieJar
	tmpDir string
}

// Open copies the sqlite file at path into a private temp directory (so a
// concurrently-running browser never sees a writer attach to its live
// database) and loads every cookie row into an in-memory jar. The
// database connection itself is opened read-only via PRAGMA query_only,
// as defense in depth on top of the temp-copy isolation.
func Open(path string) (*Jar, error) {
	tmpDir, err := os.MkdirTemp("", "gtuber-cookiejar-*")
	if err != nil {
		return nil, fmt.Errorf("cookiejar: creating temp dir: %w", err)
	}

	tmpPath := filepath.Join(tmpDir, "cookies.sqlite")
	if err := copyFile(path, tmpPath); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("cookiejar: copying sqlite file: %w", err)
	}

	jar, err := load(tmpPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, err
	}

	return &Jar{CookieJar: jar, tmpDir: tmpDir}, nil
}

// Close removes the private temp copy of the sqlite file. Once Close
// returns, the Jar's in-memory cookies are still usable — only the
// on-disk copy is gone.
func (j *Jar) Close() error {
	if j.tmpDir == "" {
		return nil
	}
	err := os.RemoveAll(j.tmpDir)
	j.tmpDir = ""
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func load(tmpPath string) (http.CookieJar, error) {
	dsn := tmpPath + "?_pragma=query_only(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("cookiejar: opening database: %w", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	var rows []mozCookie
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("cookiejar: reading moz_cookies: %w", err)
	}

	jar, err := cookiejarNew()
	if err != nil {
		return nil, err
	}

	byHost := make(map[string][]*http.Cookie)
	now := time.Now()
	for _, row := range rows {
		if row.Expiry != 0 && time.Unix(row.Expiry, 0).Before(now) {
			continue
		}
		byHost[row.Host] = append(byHost[row.Host], &http.Cookie{
			Name:     row.Name,
			Value:    row.Value,
			Path:     row.Path,
			Secure:   row.IsSecure,
			HttpOnly: row.IsHTTPOnly,
		})
	}

	for host, cookies := range byHost {
		scheme := "https"
		u := &url.URL{Scheme: scheme, Host: trimLeadingDot(host)}
		jar.SetCookies(u, cookies)
	}

	return jar, nil
}

func trimLeadingDot(host string) string {
	if len(host) > 0 && host[0] == '.' {
		return host[1:]
	}
	return host
}

// cookiejarNew builds the standard library's cookiejar.Jar with the public
// suffix list, the pairing the net/http/cookiejar docs themselves
// recommend for correct cross-subdomain cookie scoping.
func cookiejarNew() (http.CookieJar, error) {
	return stdcookiejar.New(&stdcookiejar.Options{PublicSuffixList: publicsuffix.List})
}
