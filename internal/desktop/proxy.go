package desktop

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
)

// Paths served locally alongside the proxied application.
const (
	localPrefix = "/lowtaperfadecord/"
	bridgePath  = localPrefix + "bridge.js"
	payloadPath = localPrefix + "client.js"
	themesPath  = localPrefix + "themes/"
)

//go:embed inject/bridge.js
var bridgeScript []byte

// ProxyConfig configures the application handler.
type ProxyConfig struct {
	// AppURL is the remote application. Its origin is proxied.
	AppURL string
	// PayloadFile is served as the client payload when it exists.
	PayloadFile string
	// ThemeDir holds downloaded theme files.
	ThemeDir string
	Logger   *slog.Logger
}

// NewProxy returns the handler the asset server falls back to for paths the
// embedded splash assets do not provide. Bridge, payload and theme files are
// served locally; everything else goes to the application origin, with the
// runtime and bridge scripts injected into HTML pages.
func NewProxy(cfg ProxyConfig) (http.Handler, error) {
	target, err := url.Parse(cfg.AppURL)
	if err != nil {
		return nil, fmt.Errorf("invalid app URL %q: %w", cfg.AppURL, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("invalid app URL %q: scheme must be http or https", cfg.AppURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "proxy")

	origin := &url.URL{Scheme: target.Scheme, Host: target.Host}
	inj := &injector{payloadFile: cfg.PayloadFile}

	rp := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(origin)
			r.Out.Host = origin.Host
			// The transport then negotiates gzip itself and hands back
			// decoded bodies, which injection needs.
			r.Out.Header.Del("Accept-Encoding")
			r.Out.Header.Del("Origin")
			r.Out.Header.Del("Referer")
		},
		ModifyResponse: inj.modify,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("proxy request failed", "path", r.URL.Path, "error", err)
			http.Error(w, "application unavailable", http.StatusBadGateway)
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(bridgePath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Write(bridgeScript)
	})
	mux.HandleFunc(payloadPath, func(w http.ResponseWriter, r *http.Request) {
		if cfg.PayloadFile == "" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		http.ServeFile(w, r, cfg.PayloadFile)
	})
	if cfg.ThemeDir != "" {
		mux.Handle(themesPath, http.StripPrefix(themesPath, themeFiles(cfg.ThemeDir)))
	}
	mux.Handle("/", rp)
	return mux, nil
}

// themeFiles serves CSS files from dir without directory listings.
func themeFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") || path.Ext(r.URL.Path) != ".css" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		fs.ServeHTTP(w, r)
	})
}

type injector struct {
	payloadFile string
}

// tags returns the script tags added to every application page.
func (i *injector) tags() []byte {
	var b bytes.Buffer
	b.WriteString(`<script src="/wails/ipc.js"></script>`)
	b.WriteString(`<script src="/wails/runtime.js"></script>`)
	b.WriteString(`<script src="` + bridgePath + `"></script>`)
	if i.payloadFile != "" {
		if _, err := os.Stat(i.payloadFile); err == nil {
			b.WriteString(`<script src="` + payloadPath + `"></script>`)
		}
	}
	return b.Bytes()
}

func (i *injector) modify(resp *http.Response) error {
	// The page is served from the shell's origin; the remote policy would
	// block the injected scripts.
	resp.Header.Del("Content-Security-Policy")
	resp.Header.Del("Content-Security-Policy-Report-Only")
	resp.Header.Del("X-Frame-Options")

	if resp.StatusCode != http.StatusOK || !isHTML(resp.Header.Get("Content-Type")) {
		return nil
	}
	if enc := resp.Header.Get("Content-Encoding"); enc != "" && enc != "identity" {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read page: %w", err)
	}

	body = injectHead(body, i.tags())
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/html"
}

// injectHead inserts tags at the start of <head>, or at the start of the
// document when there is no head element.
func injectHead(page, tags []byte) []byte {
	at := 0
	if idx := headTag(bytes.ToLower(page)); idx >= 0 {
		if end := bytes.IndexByte(page[idx:], '>'); end >= 0 {
			at = idx + end + 1
		}
	}

	out := make([]byte, 0, len(page)+len(tags))
	out = append(out, page[:at]...)
	out = append(out, tags...)
	out = append(out, page[at:]...)
	return out
}

// headTag returns the offset of the first <head> start tag in lower, not
// matching longer names such as <header>.
func headTag(lower []byte) int {
	offset := 0
	for {
		idx := bytes.Index(lower[offset:], []byte("<head"))
		if idx < 0 {
			return -1
		}
		idx += offset
		next := idx + len("<head")
		if next >= len(lower) {
			return idx
		}
		switch lower[next] {
		case '>', '/', ' ', '\t', '\n', '\r', '\f':
			return idx
		}
		offset = next
	}
}
