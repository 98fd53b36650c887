package testutil

import (
	"net/http"

	id "visitflow/pkg/domain"
	"visitflow/pkg/requestcontext"
)

// WithAgent attaches an authenticated agent to the request context, as the auth
// middleware would. A zero pavilion means the agent is not posted anywhere.
func WithAgent(req *http.Request, agentID id.AgentID, pavilionID id.PavilionID) *http.Request {
	ctx := requestcontext.WithAgent(req.Context(), agentID, pavilionID)
	return req.WithContext(ctx)
}

// WithRequestID sets the correlation id normally assigned by the request middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
