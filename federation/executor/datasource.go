package executor

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TraceHeader is the header subgraphs look for to decide whether to attach
// an FTv1 trace to their response (spec §6, supplemented feature).
const TraceHeader = "apollo-federation-include-trace"

// SubgraphRequest is one operation to send to a subgraph.
type SubgraphRequest struct {
	OperationText string
	OperationName string
	Variables     map[string]interface{}
	Header        http.Header
	CaptureTrace  bool
}

// SubgraphResponse is a subgraph's GraphQL response envelope.
type SubgraphResponse struct {
	Data       map[string]interface{} `json:"data"`
	Errors     []SubgraphError        `json:"errors"`
	Extensions map[string]interface{} `json:"extensions"`
}

// SubgraphError is one entry of a subgraph response's errors array.
type SubgraphError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path"`
	Extensions map[string]interface{} `json:"extensions"`
}

// FTv1 decodes the base64 trace payload a subgraph may attach under
// extensions.ftv1, when one is present and well formed.
func (r *SubgraphResponse) FTv1() ([]byte, bool) {
	raw, ok := r.Extensions["ftv1"].(string)
	if !ok || raw == "" {
		return nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, false
	}
	return decoded, true
}

// DataSource is the external collaborator a Fetch node addresses: anything
// that can execute one subgraph operation and return its envelope.
type DataSource interface {
	Execute(ctx context.Context, req SubgraphRequest) (*SubgraphResponse, error)
}

// HTTPDataSource sends subgraph operations as POST requests carrying a
// standard {query, variables, operationName} body, the shape every
// federation subgraph in this module speaks.
type HTTPDataSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPDataSource builds a data source whose transport is wrapped with
// otelhttp, so every subgraph round trip produces a span the way the
// gateway's own outbound client does.
func NewHTTPDataSource(url string, client *http.Client) *HTTPDataSource {
	if client == nil {
		client = &http.Client{}
	}
	if client.Transport == nil {
		client.Transport = http.DefaultTransport
	}
	client.Transport = otelhttp.NewTransport(client.Transport)
	return &HTTPDataSource{URL: url, Client: client}
}

func (ds *HTTPDataSource) Execute(ctx context.Context, req SubgraphRequest) (*SubgraphResponse, error) {
	body := map[string]interface{}{"query": req.OperationText}
	if req.OperationName != "" {
		body["operationName"] = req.OperationName
	}
	if len(req.Variables) > 0 {
		body["variables"] = req.Variables
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal subgraph request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, ds.URL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build subgraph request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.CaptureTrace {
		httpReq.Header.Set(TraceHeader, "ftv1")
	}

	httpResp, err := ds.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("subgraph request to %s: %w", ds.URL, err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read subgraph response: %w", err)
	}

	var out SubgraphResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return nil, fmt.Errorf("decode subgraph response: %w", err)
	}
	return &out, nil
}
