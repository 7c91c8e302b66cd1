// Package contract holds the OpenAPI description of the backend and
// validates live exchanges against it.
package contract

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed openapi.yaml
var spec []byte

// Document returns the raw embedded OpenAPI document
func Document() []byte {
	return spec
}

// Load parses and validates the embedded document
func Load() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load API contract: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid API contract: %w", err)
	}
	return doc, nil
}

// RouteInfo is one operation of the contract
type RouteInfo struct {
	Method      string `json:"method" yaml:"method"`
	Path        string `json:"path" yaml:"path"`
	OperationID string `json:"operation_id" yaml:"operation_id"`
	Summary     string `json:"summary" yaml:"summary"`
}

// Routes lists the operations of doc sorted by path and method
func Routes(doc *openapi3.T) []RouteInfo {
	var out []RouteInfo
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			out = append(out, RouteInfo{
				Method:      strings.ToUpper(method),
				Path:        path,
				OperationID: op.OperationID,
				Summary:     op.Summary,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Validator checks requests and responses against the contract
type Validator struct {
	router routers.Router
}

// NewValidator builds a Validator for doc
func NewValidator(doc *openapi3.T) (*Validator, error) {
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build contract router: %w", err)
	}
	return &Validator{router: router}, nil
}

// Check validates one exchange. A nil body skips response body validation.
func (v *Validator) Check(req *http.Request, status int, header http.Header, body []byte) error {
	route, pathParams, err := v.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("%s %s is not in the contract: %w", req.Method, req.URL.Path, err)
	}

	ctx := req.Context()
	options := &openapi3filter.Options{
		AuthenticationFunc:    openapi3filter.NoopAuthenticationFunc,
		IncludeResponseStatus: true,
		ExcludeResponseBody:   body == nil,
		MultiError:            true,
	}
	requestInput := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options:    options,
	}
	if err := openapi3filter.ValidateRequest(ctx, requestInput); err != nil {
		return fmt.Errorf("request: %w", err)
	}

	responseInput := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: requestInput,
		Status:                 status,
		Header:                 header,
		Body:                   io.NopCloser(bytes.NewReader(body)),
		Options:                options,
	}
	if err := openapi3filter.ValidateResponse(ctx, responseInput); err != nil {
		return fmt.Errorf("response: %w", err)
	}
	return nil
}

func newValidator() (*Validator, error) {
	doc, err := Load()
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded API contract", zap.Int("paths", doc.Paths.Len()))
	return NewValidator(doc)
}

// Module provides the contract validator
var Module = fx.Module("contract",
	fx.Provide(newValidator),
)
