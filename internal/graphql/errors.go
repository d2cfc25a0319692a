package graphql

import (
	"log/slog"
	"math"
	"time"

	gql "github.com/graphql-go/graphql"

	"github.com/Tomlord1122/portfolio-backend/internal/service"
	"github.com/Tomlord1122/portfolio-backend/internal/validation"
)

// Error codes reported in extensions.code.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// codedError satisfies gqlerrors.ExtendedError so the executor copies its
// extensions into the response.
type codedError struct {
	message    string
	code       string
	details    validation.Errors
	retryAfter int
}

func (e *codedError) Error() string { return e.message }

func (e *codedError) Extensions() map[string]any {
	ext := map[string]any{"code": e.code}
	if len(e.details) > 0 {
		ext["details"] = e.details
	}
	if e.retryAfter > 0 {
		ext["retryAfter"] = e.retryAfter
	}
	return ext
}

func (r *resolver) toError(p gql.ResolveParams, err error) error {
	se, ok := service.AsError(err)
	if !ok {
		r.log.Error("unhandled resolver error", slog.String("field", p.Info.FieldName), slog.Any("error", err))
		return &codedError{message: "Internal server error.", code: CodeInternal}
	}

	switch se.Kind {
	case service.KindUnauthenticated:
		return &codedError{message: se.Message, code: CodeUnauthenticated}
	case service.KindForbidden, service.KindQuotaExceeded:
		return &codedError{message: se.Message, code: CodeForbidden}
	case service.KindValidation, service.KindInvalidInput, service.KindConflict:
		return &codedError{message: se.Message, code: CodeBadUserInput, details: se.Fields}
	case service.KindNotFound:
		return &codedError{message: se.Message, code: CodeNotFound}
	case service.KindRateLimited:
		return &codedError{message: se.Message, code: CodeRateLimited, retryAfter: secondsUntil(se.ResetAt)}
	default:
		return &codedError{message: se.Message, code: CodeInternal}
	}
}

func secondsUntil(t time.Time) int {
	if t.IsZero() {
		return 0
	}
	return max(int(math.Ceil(time.Until(t).Seconds())), 1)
}
