package httpserver

import (
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	echo "github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

func upstreamTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:          200,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// clientProto is the scheme the caller used to reach the gateway.
func clientProto(req *http.Request) string {
	if req.TLS != nil {
		return "https"
	}
	if xf := req.Header.Get("X-Forwarded-Proto"); xf != "" {
		return xf
	}
	return "http"
}

// stripPrefix drops prefix from both the decoded and the raw path.
func stripPrefix(u *url.URL, prefix string) {
	if prefix == "" || !strings.HasPrefix(u.Path, prefix) {
		return
	}
	u.Path = strings.TrimPrefix(u.Path, prefix)
	if strings.HasPrefix(u.RawPath, prefix) {
		u.RawPath = strings.TrimPrefix(u.RawPath, prefix)
	}
}

func setIfEmpty(h http.Header, key, value string) {
	if h.Get(key) == "" && value != "" {
		h.Set(key, value)
	}
}

// newProxy forwards to target with prefix removed. Trace context travels in
// the outgoing headers; an unreachable upstream answers 502.
func newProxy(target, prefix string) (echo.HandlerFunc, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.Transport = upstreamTransport()
	p.FlushInterval = 100 * time.Millisecond

	direct := p.Director
	p.Director = func(req *http.Request) {
		host, proto := req.Host, clientProto(req)
		direct(req)
		stripPrefix(req.URL, prefix)
		setIfEmpty(req.Header, "X-Forwarded-Proto", proto)
		setIfEmpty(req.Header, "X-Forwarded-Host", host)
		otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
	}

	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.FromContext(r.Context()).Error("upstream_failed", "target", u.Host, "path", r.URL.Path, "error", err)
		w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream unavailable"}`))
	}

	return func(c echo.Context) error {
		p.ServeHTTP(c.Response(), c.Request())
		return nil
	}, nil
}
