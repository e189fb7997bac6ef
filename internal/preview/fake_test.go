package preview

import (
	"context"
	"sync"
	"time"
)

// fakeScheduler runs callbacks only when the test advances time.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and fires due timers in order.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeLoader answers loads from a table. A non-nil gate holds every load
// until the gate is closed or the load is cancelled.
type fakeLoader struct {
	mu      sync.Mutex
	pages   map[string]Page
	errs    map[string]error
	gate    chan struct{}
	loaded  []string
	aborted []string
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{pages: make(map[string]Page), errs: make(map[string]error)}
}

func (l *fakeLoader) Load(ctx context.Context, rawURL string) (Page, error) {
	if l.gate != nil {
		select {
		case <-l.gate:
		case <-ctx.Done():
			l.mu.Lock()
			l.aborted = append(l.aborted, rawURL)
			l.mu.Unlock()
			return Page{}, ctx.Err()
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = append(l.loaded, rawURL)
	if err, ok := l.errs[rawURL]; ok {
		return Page{}, err
	}
	if p, ok := l.pages[rawURL]; ok {
		return p, nil
	}
	return Page{URL: rawURL, Title: "page"}, nil
}

func (l *fakeLoader) abortedURLs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.aborted...)
}
