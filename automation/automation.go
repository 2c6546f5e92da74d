// Package automation drives a headless browser to capture the company
// website for kiosks that cannot frame it.
package automation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/singleflight"

	"totem/logger"
)

var ErrNoURL = errors.New("URL del sito non configurato")

// CaptureFunc renders url and returns a PNG.
type CaptureFunc func(ctx context.Context, url string) ([]byte, error)

// Viewport of the captured page, matching the kiosk screen.
const (
	viewportWidth  = 1280
	viewportHeight = 900
)

// Capture launches a headless browser, loads url and takes a full-page PNG.
func Capture(ctx context.Context, url string) ([]byte, error) {
	l := launcher.New().
		Headless(true).
		Leakless(false)
	defer l.Cleanup()

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("avvio browser: %w", err)
	}
	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connessione browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("apertura pagina %s: %w", url, err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("caricamento pagina %s: %w", url, err)
	}
	img, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return img, nil
}

// Snapshotter keeps the last capture of one site for ttl.
type Snapshotter struct {
	url     string
	ttl     time.Duration
	timeout time.Duration
	capture CaptureFunc
	now     func() time.Time

	group singleflight.Group
	mu    sync.Mutex
	png   []byte
	taken time.Time
}

type Option func(*Snapshotter)

func WithCapture(fn CaptureFunc) Option { return func(s *Snapshotter) { s.capture = fn } }
func WithClock(now func() time.Time) Option {
	return func(s *Snapshotter) { s.now = now }
}

func NewSnapshotter(url string, ttl time.Duration, opts ...Option) *Snapshotter {
	s := &Snapshotter{
		url:     strings.TrimSpace(url),
		ttl:     ttl,
		timeout: 45 * time.Second,
		capture: Capture,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Snapshotter) URL() string { return s.url }

// Snapshot returns the cached capture while fresh, otherwise takes a new
// one. Concurrent callers share a single browser run.
func (s *Snapshotter) Snapshot(ctx context.Context, force bool) ([]byte, time.Time, error) {
	if s.url == "" {
		return nil, time.Time{}, ErrNoURL
	}
	s.mu.Lock()
	if !force && s.png != nil && s.now().Sub(s.taken) < s.ttl {
		png, taken := s.png, s.taken
		s.mu.Unlock()
		return png, taken, nil
	}
	s.mu.Unlock()

	_, err, _ := s.group.Do("snapshot", func() (any, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		start := s.now()
		png, err := s.capture(cctx, s.url)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.png, s.taken = png, s.now()
		s.mu.Unlock()
		logger.Info("website captured", "url", s.url, "bytes", len(png), "took", s.now().Sub(start))
		return nil, nil
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.png, s.taken, nil
}

// Framable reports whether the site allows being shown in a frame, reading
// X-Frame-Options and the frame-ancestors directive of its CSP.
func Framable(ctx context.Context, client *http.Client, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	xfo := strings.ToLower(strings.TrimSpace(resp.Header.Get("X-Frame-Options")))
	if xfo == "deny" || xfo == "sameorigin" {
		return false, nil
	}
	for _, directive := range strings.Split(resp.Header.Get("Content-Security-Policy"), ";") {
		fields := strings.Fields(strings.ToLower(directive))
		if len(fields) == 0 || fields[0] != "frame-ancestors" {
			continue
		}
		for _, src := range fields[1:] {
			if src == "*" {
				return true, nil
			}
		}
		return false, nil
	}
	return true, nil
}
