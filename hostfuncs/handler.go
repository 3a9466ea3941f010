package hostfuncs

import (
	"context"
	"encoding/json"
)

// Handler serves one host function call: the guest's JSON request in, the
// JSON response out. A returned error is reported to the guest as an
// INTERNAL_ERROR response by the runtime adapter.
type Handler func(ctx context.Context, request []byte) ([]byte, error)

// JSON adapts a typed function to a Handler. A request that does not decode
// into Req is answered with a VALIDATION_ERROR response.
func JSON[Req, Resp any](fn func(context.Context, Req) Resp) Handler {
	return func(ctx context.Context, request []byte) ([]byte, error) {
		var req Req
		if err := json.Unmarshal(request, &req); err != nil {
			return Fail(ErrBadRequest, "malformed request: %v", err), nil
		}
		data, err := json.Marshal(fn(ctx, req))
		if err != nil {
			return Fail(ErrInternal, "malformed response: %v", err), nil
		}
		return data, nil
	}
}
