package requester

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/brizzai/realtor-cli/internal/metrics"
	"go.uber.org/zap"
)

// Observer sees every executed request. resp is nil when the transport failed.
type Observer interface {
	Observe(req *Request, resp *Response, duration time.Duration)
}

// MetricsObserver reports requests to a metrics Recorder
type MetricsObserver struct {
	Recorder metrics.Recorder
}

func (o MetricsObserver) Observe(req *Request, resp *Response, duration time.Duration) {
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	o.Recorder.RecordRequest(req.Route.Path, req.Method, status, duration)
}

// ContractChecker validates an exchange against the API contract
type ContractChecker interface {
	Check(req *http.Request, status int, header http.Header, body []byte) error
}

// ContractObserver logs contract violations. It never fails a call.
type ContractObserver struct {
	Checker ContractChecker
}

func (o ContractObserver) Observe(req *Request, resp *Response, _ time.Duration) {
	if resp == nil || req.HttpRequest == nil {
		return
	}
	httpReq := req.HttpRequest.Clone(req.HttpRequest.Context())
	if req.HttpRequest.GetBody != nil {
		if body, err := req.HttpRequest.GetBody(); err == nil {
			httpReq.Body = body
		}
	} else {
		httpReq.Body = io.NopCloser(bytes.NewReader(nil))
	}

	if err := o.Checker.Check(httpReq, resp.StatusCode, resp.Headers, resp.Body); err != nil {
		logger.Warn("Contract violation",
			zap.String("method", req.Method),
			zap.String("path", req.Route.Path),
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
	}
}
