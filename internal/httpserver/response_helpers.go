package httpserver

import (
	"net/http"

	apierrors "github.com/cartflow/server/internal/errors"
)

// writeDomainError translates any error returned by C2-C10 into the wire
// envelope of spec §6.1, mapping it through DomainError when possible and
// falling back to a generic 500 for anything unmapped.
func writeDomainError(w http.ResponseWriter, operation string, err error) {
	code := apierrors.CodeOf(err)
	apierrors.WriteError(w, operation, code, err.Error())
}

// writeCartResponse sends the updated cart as the success payload for a
// cart-mutating operation (ADD_LINE_ITEM, ADD_PAYMENT, BILL, ...).
func writeCartResponse(w http.ResponseWriter, operation string, cart any) {
	apierrors.WriteSuccess(w, operation, cart)
}

// writeCreatedResponse sends a 201 payload for resource-creating operations.
func writeCreatedResponse(w http.ResponseWriter, operation string, data any) {
	apierrors.WriteCreated(w, operation, data)
}
