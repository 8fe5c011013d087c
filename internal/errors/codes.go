package errors

// ErrorCode is a machine-readable six-digit identifier, XXYYZZ: category
// (XX), originating module (YY), specific case (ZZ). Stable and referenced
// by clients for localized messaging (spec §7).
type ErrorCode string

// Category 40: client request, state and authorization errors (4xx).
// Category 50: server/dependency errors (5xx).
const (
	// C2 Cart Store
	ErrCartNotFound ErrorCode = "400201" // 404

	// C3 State Machine
	ErrInvalidCartState ErrorCode = "409301" // 409

	// C6 façade preflight
	ErrTerminalNotOpened  ErrorCode = "403601" // 403
	ErrStaffNotSignedIn   ErrorCode = "403602" // 403

	// C4 Tax & Discount Engine
	ErrItemNotFound           ErrorCode = "400401" // 400
	ErrDiscountExceedsLine    ErrorCode = "400402" // 400
	ErrDiscountExceedsBalance ErrorCode = "400403" // 400
	ErrDiscountRestricted     ErrorCode = "400404" // 400

	// C5 Payment Orchestrator / BILL
	ErrOverPayment        ErrorCode = "400501" // 400
	ErrInsufficientPayment ErrorCode = "400502" // 400

	// C10 Void/Return Processor
	ErrTransactionAlreadyVoided  ErrorCode = "409101" // 409
	ErrTransactionAlreadyRefunded ErrorCode = "409102" // 409
	ErrVoidDifferentTerminal      ErrorCode = "403101" // 403
	ErrReturnDifferentStore       ErrorCode = "403102" // 403

	// C2 save / optimistic concurrency
	ErrConcurrencyRetryExhausted ErrorCode = "409201" // 409

	// Circuit breaker / dependencies
	ErrStoreUnavailable   ErrorCode = "503001" // 503
	ErrExternalServiceError ErrorCode = "502001" // 500/502

	// C1 Counter Service
	ErrCounterAllocationFailed ErrorCode = "500101" // 500

	// Auth
	ErrUnauthenticated ErrorCode = "401001" // 401

	// Catch-all
	ErrUnexpected ErrorCode = "500001" // 500
)

// IsRetryable reports whether internal machinery may retry the operation
// that produced this error. Business errors never retry internally — they
// propagate to the client (spec §7).
func (e ErrorCode) IsRetryable() bool {
	switch e {
	case ErrConcurrencyRetryExhausted, ErrStoreUnavailable, ErrExternalServiceError, ErrCounterAllocationFailed:
		return true
	default:
		return false
	}
}

// HTTPStatus maps an ErrorCode to the wire status of spec §6.1.
func (e ErrorCode) HTTPStatus() int {
	switch e {
	case ErrCartNotFound:
		return 404
	case ErrInvalidCartState, ErrConcurrencyRetryExhausted,
		ErrTransactionAlreadyVoided, ErrTransactionAlreadyRefunded:
		return 409
	case ErrTerminalNotOpened, ErrStaffNotSignedIn, ErrVoidDifferentTerminal, ErrReturnDifferentStore:
		return 403
	case ErrUnauthenticated:
		return 401
	case ErrItemNotFound, ErrDiscountExceedsLine, ErrDiscountExceedsBalance, ErrDiscountRestricted,
		ErrOverPayment, ErrInsufficientPayment:
		return 400
	case ErrStoreUnavailable:
		return 503
	case ErrExternalServiceError:
		return 502
	default:
		return 500
	}
}
