package billing

import (
	"context"

	"github.com/ledgera/backend/internal/infrastructure/logger"
)

// operatorFromContext returns the identifier of the user driving the
// operation, as placed in the context by the auth middleware. Empty when
// the call comes from an unauthenticated path such as tests or CLIs.
func operatorFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(logger.UserIDKey).(string); ok {
		return userID
	}
	return ""
}
