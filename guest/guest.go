// Package guest is linked into WASM modules that serve the wasm engine. A
// module registers one Handler from an init function and is built as a
// reactor:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o upper.wasm .
package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Request is the document the wasm engine sends to the module's evaluate export.
type Request struct {
	Locals map[string]any `json:"locals"`
	File   string         `json:"file"`
	Data   []byte         `json:"data"`
}

// Response is the document the module hands back.
type Response struct {
	Error  string `json:"error,omitempty"`
	Output []byte `json:"output"`
}

// Handler evaluates one request.
type Handler func(ctx context.Context, req Request) ([]byte, error)

var (
	mu      sync.RWMutex
	handler Handler
)

// Handle registers h as the module's evaluator, replacing any previous one.
func Handle(h Handler) {
	mu.Lock()
	defer mu.Unlock()
	handler = h
}

// dispatch decodes input, runs the registered handler and encodes the
// response. Failures are reported inside the response, never by panicking.
func dispatch(ctx context.Context, input []byte) []byte {
	mu.RLock()
	h := handler
	mu.RUnlock()

	resp := Response{}
	var req Request
	switch {
	case h == nil:
		resp.Error = "no handler registered"
	case json.Unmarshal(input, &req) != nil:
		resp.Error = fmt.Sprintf("malformed request (%d bytes)", len(input))
	default:
		out, err := safeCall(ctx, h, req)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Output = out
		}
	}

	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(Response{Error: err.Error()})
	}
	return data
}

func safeCall(ctx context.Context, h Handler, req Request) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, req)
}
