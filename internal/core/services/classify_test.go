package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arcadia-labs/daysync/internal/core/domain"
)

func TestClassifyRunError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want recoveryAction
	}{
		{"nil", nil, actionComplete},
		{"rate limited", domain.ErrRateLimited, actionRateLimited},
		{"wrapped rate limited", fmt.Errorf("list page: %w", domain.ErrRateLimited), actionRateLimited},
		{"cursor invalid", domain.ErrCursorInvalid, actionCursorInvalid},
		{"credential revoked", domain.ErrCredentialRevoked, actionCredentialRevoked},
		{"credential inactive", domain.ErrCredentialInactive, actionCredentialRevoked},
		{"cancelled", context.Canceled, actionCancelled},
		{"run timeout", context.DeadlineExceeded, actionCancelled},
		{"unknown", errors.New("connection reset"), actionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyRunError(tt.err))
		})
	}
}
