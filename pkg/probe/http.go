package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fprochazka/hydraping/pkg/endpoint"
)

const maxRedirects = 5

// HTTPProbe issues a GET and measures time to response headers. A single
// shared *http.Client backs every call, process-scoped per spec.md §5
// ("HTTP client resources ... are process-scoped and shared across probes
// of that kind"), same as the teacher's globalping client reuses one
// *http.Client across requests.
type HTTPProbe struct {
	client *http.Client
}

// NewHTTPProbe builds a probe with a shared client capped at maxRedirects.
func NewHTTPProbe() *HTTPProbe {
	return &HTTPProbe{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Probe issues a GET against rawURL and classifies the response per
// spec.md §4.2: Ok if status < 300, ProtocolError(status) if >= 300,
// Timeout on deadline, Unreachable on transport failure.
func (p *HTTPProbe) Probe(ctx context.Context, rawURL string, deadline time.Time) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = InternalError(endpoint.CheckHttp)
		}
	}()

	reqCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{CheckKind: endpoint.CheckHttp, Status: StatusProtocolError, Detail: err.Error()}
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Timeout(endpoint.CheckHttp)
		}
		if errors.Is(reqCtx.Err(), context.Canceled) && ctx.Err() != nil {
			return Canceled(endpoint.CheckHttp)
		}
		return Result{CheckKind: endpoint.CheckHttp, Status: StatusUnreachable, Detail: err.Error()}
	}
	rtt := time.Since(start)
	_ = resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Result{CheckKind: endpoint.CheckHttp, Status: StatusProtocolError, ProtocolCode: resp.StatusCode,
			Detail: fmt.Sprintf("HTTP %d", resp.StatusCode)}.WithLatency(rtt)
	}
	return Result{CheckKind: endpoint.CheckHttp, Status: StatusOk}.WithLatency(rtt)
}
