package http

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"lifedash/internal/auth"
	"lifedash/internal/core"
	"lifedash/internal/reconcile"
	"lifedash/internal/services"
	"lifedash/internal/sheets"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"busy", fmt.Errorf("submit: %w", reconcile.ErrBusy), http.StatusConflict, "Another save is still in progress"},
		{"bad request", badRequestf("amount must be a number"), http.StatusBadRequest, "amount must be a number"},
		{"validation", fmt.Errorf("invalid transaction: %w", core.ErrEmptyCategory), http.StatusBadRequest, "Empty category"},
		{"dream not found", fmt.Errorf("DN-009: %w", services.ErrDreamNotFound), http.StatusNotFound, "Dream not found"},
		{"credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid user ID or password"},
		{"transport", fmt.Errorf("fetch finance: %w", &sheets.StoreError{Kind: sheets.KindTransport, Sheet: "Daily", Action: "fetch"}), http.StatusBadGateway, "The spreadsheet could not be reached"},
		{"logical", &sheets.StoreError{Kind: sheets.KindLogical, Sheet: "Daily", Action: "insert", Message: "Sheet locked", Err: sheets.ErrStoreFailure}, http.StatusBadGateway, "The spreadsheet rejected the request: Sheet locked"},
		{"timeout", fmt.Errorf("fetch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "The request timed out"},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError, "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := classify(tt.err)
			if status != tt.wantStatus || msg != tt.wantMsg {
				t.Errorf("classify() = %d %q, want %d %q", status, msg, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}
