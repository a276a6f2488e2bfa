package theme

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lowtaperfadecord/lowtaperfadecord/internal/fetch"
)

const remoteURL = "https://themes.example/lowtaperfadecord.theme.css"

// fakeFetcher serves fixed content and records every destination written.
type fakeFetcher struct {
	content string
	err     error
	// failDest fails only downloads to this destination.
	failDest string
	dests    []string
}

func (f *fakeFetcher) FetchToFile(_ context.Context, url, dest string, opts fetch.Options) error {
	if !opts.RetryOnNetworkError {
		return errors.New("expected retry on network error")
	}
	if f.err != nil {
		return f.err
	}
	if f.failDest != "" && dest == f.failDest {
		return &fetch.NetworkError{URL: url, Err: errors.New("connection reset")}
	}
	f.dests = append(f.dests, dest)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(f.content), 0644)
}

func setup(t *testing.T, local *string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "themes", DefaultName)
	if local != nil {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(*local), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return path
}

func strPtr(s string) *string { return &s }

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func assertNoTmp(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected %s.tmp to be removed, stat err = %v", path, err)
	}
}

func TestSync_MissingDownloadsAndEnables(t *testing.T) {
	path := setup(t, nil)
	fetcher := &fakeFetcher{content: "new"}
	client := &fakeClient{themes: []string{"a.css"}}

	s := New(Config{LocalPath: path, RemoteURL: remoteURL}, fetcher, client, nil)
	res := s.Sync(context.Background())

	if res.Action != ActionDownloaded || res.Err != nil {
		t.Fatalf("result = %+v", res)
	}
	if got := readFile(t, path); got != "new" {
		t.Fatalf("local = %q", got)
	}
	if !reflect.DeepEqual(client.themes, []string{DefaultName, "a.css"}) {
		t.Fatalf("themes = %v", client.themes)
	}
	if !res.Enabled {
		t.Fatal("expected Enabled")
	}
}

func TestSync_MissingDownloadsInDevMode(t *testing.T) {
	path := setup(t, nil)
	fetcher := &fakeFetcher{content: "new"}

	s := New(Config{LocalPath: path, RemoteURL: remoteURL, DevMode: true}, fetcher, nil, nil)
	if res := s.Sync(context.Background()); res.Action != ActionDownloaded {
		t.Fatalf("Action = %s", res.Action)
	}
	if got := readFile(t, path); got != "new" {
		t.Fatalf("local = %q", got)
	}
}

func TestSync_EqualHashesNoWrite(t *testing.T) {
	path := setup(t, strPtr("same"))
	fetcher := &fakeFetcher{content: "same"}
	client := &fakeClient{}

	s := New(Config{LocalPath: path, RemoteURL: remoteURL}, fetcher, client, nil)
	res := s.Sync(context.Background())

	if res.Action != ActionUpToDate {
		t.Fatalf("Action = %s", res.Action)
	}
	if res.LocalHash != res.RemoteHash || res.LocalHash == "" {
		t.Fatalf("hashes = %q / %q", res.LocalHash, res.RemoteHash)
	}
	if !reflect.DeepEqual(fetcher.dests, []string{path + ".tmp"}) {
		t.Fatalf("writes = %v, want only the tmp file", fetcher.dests)
	}
	if client.sets != 0 {
		t.Fatal("existing theme must not be re-enabled")
	}
	assertNoTmp(t, path)
}

func TestSync_MismatchReplacesLocal(t *testing.T) {
	path := setup(t, strPtr("old"))
	fetcher := &fakeFetcher{content: "new"}

	s := New(Config{LocalPath: path, RemoteURL: remoteURL}, fetcher, nil, nil)
	res := s.Sync(context.Background())

	if res.Action != ActionUpdated {
		t.Fatalf("Action = %s (%v)", res.Action, res.Err)
	}
	if got := readFile(t, path); got != "new" {
		t.Fatalf("local = %q, want new", got)
	}
	if !reflect.DeepEqual(fetcher.dests, []string{path + ".tmp", path}) {
		t.Fatalf("writes = %v", fetcher.dests)
	}
	assertNoTmp(t, path)
}

func TestSync_DevModeKeepsLocal(t *testing.T) {
	path := setup(t, strPtr("old"))
	fetcher := &fakeFetcher{content: "new"}

	s := New(Config{LocalPath: path, RemoteURL: remoteURL, DevMode: true}, fetcher, nil, nil)
	res := s.Sync(context.Background())

	if res.Action != ActionDevSkipped {
		t.Fatalf("Action = %s", res.Action)
	}
	if got := readFile(t, path); got != "old" {
		t.Fatalf("local = %q, want old", got)
	}
	assertNoTmp(t, path)
}

func TestSync_FetchFailuresAreSwallowed(t *testing.T) {
	fetchErr := &fetch.NetworkError{URL: remoteURL, Err: errors.New("connection refused")}

	t.Run("missing stays missing", func(t *testing.T) {
		path := setup(t, nil)
		client := &fakeClient{}
		s := New(Config{LocalPath: path, RemoteURL: remoteURL}, &fakeFetcher{err: fetchErr}, client, nil)

		res := s.Sync(context.Background())
		if res.Action != ActionFailed || !errors.Is(res.Err, fetchErr) {
			t.Fatalf("result = %+v", res)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected no local theme, stat err = %v", err)
		}
		if client.sets != 0 {
			t.Fatal("theme must not be enabled after a failed download")
		}
	})

	t.Run("existing stays unchanged", func(t *testing.T) {
		path := setup(t, strPtr("old"))
		s := New(Config{LocalPath: path, RemoteURL: remoteURL}, &fakeFetcher{err: fetchErr}, nil, nil)

		res := s.Sync(context.Background())
		if res.Action != ActionFailed {
			t.Fatalf("Action = %s", res.Action)
		}
		if got := readFile(t, path); got != "old" {
			t.Fatalf("local = %q, want old", got)
		}
	})

	t.Run("mismatch re-download fails", func(t *testing.T) {
		path := setup(t, strPtr("old"))
		fetcher := &fakeFetcher{content: "new", failDest: path}
		s := New(Config{LocalPath: path, RemoteURL: remoteURL}, fetcher, nil, nil)

		res := s.Sync(context.Background())
		var netErr *fetch.NetworkError
		if res.Action != ActionFailed || !errors.As(res.Err, &netErr) {
			t.Fatalf("result = %+v", res)
		}
		if res.LocalHash == res.RemoteHash {
			t.Fatalf("expected differing hashes, got %q", res.LocalHash)
		}
		if got := readFile(t, path); got != "old" {
			t.Fatalf("local = %q, want old", got)
		}
		assertNoTmp(t, path)
	})
}

func TestSync_EnableFailureKeepsDownload(t *testing.T) {
	path := setup(t, nil)
	client := &fakeClient{readErr: errors.New("bridge timeout")}
	s := New(Config{LocalPath: path, RemoteURL: remoteURL}, &fakeFetcher{content: "new"}, client, nil)

	res := s.Sync(context.Background())
	if res.Action != ActionDownloaded || res.Err == nil || res.Enabled {
		t.Fatalf("result = %+v", res)
	}
	if res.Error == "" {
		t.Fatal("expected Error string to be populated")
	}
}

func TestSync_LastResult(t *testing.T) {
	path := setup(t, strPtr("same"))
	s := New(Config{LocalPath: path, RemoteURL: remoteURL}, &fakeFetcher{content: "same"}, nil, nil)

	if _, ok := s.Last(); ok {
		t.Fatal("expected no result before first sync")
	}
	s.Sync(context.Background())
	last, ok := s.Last()
	if !ok || last.Action != ActionUpToDate || last.FinishedAt.IsZero() {
		t.Fatalf("Last = %+v, %v", last, ok)
	}
	if s.Name() != DefaultName {
		t.Fatalf("Name = %q", s.Name())
	}
}

func TestSync_WithHTTPFetcher(t *testing.T) {
	body := "body { background: #111; }"
	var sawHeader atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawHeader.Store(r.Header.Get("Cache-Control") == "no-cache")
		w.Header().Set("Content-Type", "text/css")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	path := setup(t, strPtr("stale"))
	f := fetch.New(fetch.Config{
		RetryMax:     1,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	}, nil)
	s := New(Config{
		LocalPath: path,
		RemoteURL: srv.URL + "/" + DefaultName,
		Headers:   map[string]string{"Cache-Control": "no-cache"},
	}, f, nil, nil)

	res := s.Sync(context.Background())
	if res.Action != ActionUpdated {
		t.Fatalf("Action = %s (%v)", res.Action, res.Err)
	}
	if got := readFile(t, path); got != body {
		t.Fatalf("local = %q", got)
	}
	if !sawHeader.Load() {
		t.Fatal("expected configured headers on the request")
	}
	assertNoTmp(t, path)

	res = s.Sync(context.Background())
	if res.Action != ActionUpToDate {
		t.Fatalf("second Action = %s", res.Action)
	}
}

func TestSync_OverlappingCallsRunInTurn(t *testing.T) {
	body := "body { background: #222; }"
	var inFlight, maxInFlight atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		w.Write([]byte(body[:5]))
		w.(http.Flusher).Flush()
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(body[5:]))
	}))
	defer srv.Close()

	path := setup(t, strPtr("stale"))
	f := fetch.New(fetch.Config{
		RetryMax:     1,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	}, nil)
	s := New(Config{LocalPath: path, RemoteURL: srv.URL + "/" + DefaultName}, f, nil, nil)

	results := make([]Result, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Sync(context.Background())
		}(i)
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()

	for i, res := range results {
		if res.Action != ActionUpdated && res.Action != ActionUpToDate {
			t.Fatalf("sync %d: Action = %s (%v)", i, res.Action, res.Err)
		}
	}
	if results[0].Action == results[1].Action {
		t.Fatalf("expected one update and one up-to-date pass, got %s twice", results[0].Action)
	}
	if got := maxInFlight.Load(); got != 1 {
		t.Fatalf("max concurrent downloads = %d, want 1", got)
	}
	if got := readFile(t, path); got != body {
		t.Fatalf("local = %q", got)
	}
	assertNoTmp(t, path)
}
