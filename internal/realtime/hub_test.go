package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHandleTicketSocketRefusesDuringShutdown(t *testing.T) {
	h := NewHub("127.0.0.1:0", nil, nil, nil, &fakeLoader{}, zap.NewNop())
	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.cancel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/tickets/ticket-1", nil)
	h.handleTicketSocket(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
