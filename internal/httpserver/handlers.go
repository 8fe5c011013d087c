package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/cartflow/server/internal/errors"
)

// Request DTOs for the spec §6.1 wire protocol (camelCase JSON at the
// boundary). C6's façade consumes these directly; the HTTP layer never
// mutates a cart itself.

type CreateCartRequest struct {
	StoreCode       string `json:"storeCode"`
	TerminalNo      string `json:"terminalNo"`
	TransactionType int    `json:"transactionType"`
	Staff           string `json:"staff,omitempty"`
}

type AddLineItemRequest struct {
	ItemCode  string  `json:"itemCode"`
	Quantity  float64 `json:"quantity"`
	UnitPrice *int64  `json:"unitPrice,omitempty"` // atomic units; nil uses the master price
}

type UpdateQuantityRequest struct {
	Quantity float64 `json:"quantity"`
}

type UpdatePriceRequest struct {
	UnitPrice int64  `json:"unitPrice"`
	Reason    string `json:"reason,omitempty"`
}

type AddDiscountRequest struct {
	Type   string  `json:"type"` // "amount" | "percent"
	Value  float64 `json:"value"`
	Detail string  `json:"detail,omitempty"`
}

type AddPaymentRequest struct {
	PaymentCode   string `json:"paymentCode"`
	Amount        int64  `json:"amount"`
	DepositAmount int64  `json:"depositAmount"`
	Detail        string `json:"detail,omitempty"`
}

type VoidRequest struct {
	StaffID string `json:"staffId"`
}

type ReturnRequest struct {
	StaffID string             `json:"staffId"`
	Lines   []ReturnLineRequest `json:"lines,omitempty"` // empty means full return
}

type ReturnLineRequest struct {
	LineNo   int     `json:"lineNo"`
	Quantity float64 `json:"quantity"`
}

type AckDeliveryRequest struct {
	ServiceName string `json:"serviceName"`
	Status      string `json:"status"` // "delivered" | "failed"
	Error       string `json:"error,omitempty"`
}

// terminalID reads the required terminal_id query parameter (spec §6.1:
// "{tenant}-{store}-{terminal}").
func terminalID(r *http.Request) string {
	return r.URL.Query().Get("terminal_id")
}

func lineNo(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "lineNo"))
}

func transactionNo(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "transaction_no"), 10, 64)
}

func (h *handlers) requireCartService(w http.ResponseWriter, operation string) bool {
	if h.cart == nil {
		apierrors.WriteError(w, operation, apierrors.ErrUnexpected, "cart service unavailable")
		return false
	}
	return true
}

func (h *handlers) createCart(w http.ResponseWriter, r *http.Request) {
	const op = "createCart"
	if !h.requireCartService(w, op) {
		return
	}
	var req CreateCartRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, op, apierrors.ErrUnexpected, "invalid request body")
		return
	}
	c, err := h.cart.CreateCart(r.Context(), terminalID(r), req)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCreatedResponse(w, op, c)
}

func (h *handlers) getCart(w http.ResponseWriter, r *http.Request) {
	const op = "getCart"
	if !h.requireCartService(w, op) {
		return
	}
	c, err := h.cart.GetCart(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"))
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, c)
}

func (h *handlers) cancelCart(w http.ResponseWriter, r *http.Request) {
	const op = "cancelCart"
	if !h.requireCartService(w, op) {
		return
	}
	c, err := h.cart.CancelCart(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"))
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, c)
}

func (h *handlers) addLineItem(w http.ResponseWriter, r *http.Request) {
	const op = "addLineItem"
	if !h.requireCartService(w, op) {
		return
	}
	var req AddLineItemRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, op, apierrors.ErrUnexpected, "invalid request body")
		return
	}
	c, err := h.cart.AddLineItem(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"), req)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, c)
}

func (h *handlers) cancelLine(w http.ResponseWriter, r *http.Request) {
	const op = "cancelLine"
	if !h.requireCartService(w, op) {
		return
	}
	ln, err := lineNo(r)
	if err != nil {
		apierrors.WriteError(w, op, apierrors.ErrItemNotFound, "invalid lineNo")
		return
	}
	c, err := h.cart.CancelLine(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"), ln)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, c)
}

func (h *handlers) updateQuantity(w http.ResponseWriter, r *http.Request) {
	const op = "updateQuantity"
	if !h.requireCartService(w, op) {
		return
	}
	ln, err := lineNo(r)
	if err != nil {
		apierrors.WriteError(w, op, apierrors.ErrItemNotFound, "invalid lineNo")
		return
	}
	var req UpdateQuantityRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, op, apierrors.ErrUnexpected, "invalid request body")
		return
	}
	c, err := h.cart.UpdateQuantity(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"), ln, req)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, c)
}

func (h *handlers) updatePrice(w http.ResponseWriter, r *http.Request) {
	const op = "updatePrice"
	if !h.requireCartService(w, op) {
		return
	}
	ln, err := lineNo(r)
	if err != nil {
		apierrors.WriteError(w, op, apierrors.ErrItemNotFound, "invalid lineNo")
		return
	}
	var req UpdatePriceRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, op, apierrors.ErrUnexpected, "invalid request body")
		return
	}
	c, err := h.cart.UpdatePrice(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"), ln, req)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, c)
}

func (h *handlers) addLineDiscount(w http.ResponseWriter, r *http.Request) {
	const op = "addLineDiscount"
	if !h.requireCartService(w, op) {
		return
	}
	ln, err := lineNo(r)
	if err != nil {
		apierrors.WriteError(w, op, apierrors.ErrItemNotFound, "invalid lineNo")
		return
	}
	var req AddDiscountRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, op, apierrors.ErrUnexpected, "invalid request body")
		return
	}
	c, err := h.cart.AddLineDiscount(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"), ln, req)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, c)
}

func (h *handlers) subtotal(w http.ResponseWriter, r *http.Request) {
	const op = "calcSubtotal"
	if !h.requireCartService(w, op) {
		return
	}
	c, err := h.cart.Subtotal(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"))
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, c)
}

func (h *handlers) addCartDiscount(w http.ResponseWriter, r *http.Request) {
	const op = "addCartDiscount"
	if !h.requireCartService(w, op) {
		return
	}
	var req AddDiscountRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, op, apierrors.ErrUnexpected, "invalid request body")
		return
	}
	c, err := h.cart.AddCartDiscount(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"), req)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, c)
}

func (h *handlers) addPayment(w http.ResponseWriter, r *http.Request) {
	const op = "addPayment"
	if !h.requireCartService(w, op) {
		return
	}
	var req AddPaymentRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, op, apierrors.ErrUnexpected, "invalid request body")
		return
	}
	c, err := h.cart.AddPayment(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"), req)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, c)
}

func (h *handlers) bill(w http.ResponseWriter, r *http.Request) {
	const op = "bill"
	if !h.requireCartService(w, op) {
		return
	}
	tx, err := h.cart.Bill(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"))
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, tx)
}

func (h *handlers) resumeItemEntry(w http.ResponseWriter, r *http.Request) {
	const op = "resumeItemEntry"
	if !h.requireCartService(w, op) {
		return
	}
	c, err := h.cart.ResumeItemEntry(r.Context(), terminalID(r), chi.URLParam(r, "cart_id"))
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, c)
}

func (h *handlers) queryTransactions(w http.ResponseWriter, r *http.Request) {
	const op = "queryTransactions"
	if !h.requireCartService(w, op) {
		return
	}
	txs, err := h.cart.QueryTransactions(r.Context(),
		chi.URLParam(r, "tenant_id"), chi.URLParam(r, "store_code"), chi.URLParam(r, "terminal_no"))
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, txs)
}

func (h *handlers) getTransaction(w http.ResponseWriter, r *http.Request) {
	const op = "getTransaction"
	if !h.requireCartService(w, op) {
		return
	}
	txNo, err := transactionNo(r)
	if err != nil {
		apierrors.WriteError(w, op, apierrors.ErrCartNotFound, "invalid transaction_no")
		return
	}
	tx, err := h.cart.GetTransaction(r.Context(),
		chi.URLParam(r, "tenant_id"), chi.URLParam(r, "store_code"), chi.URLParam(r, "terminal_no"), txNo)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, tx)
}

func (h *handlers) voidTransaction(w http.ResponseWriter, r *http.Request) {
	const op = "voidTransaction"
	if !h.requireCartService(w, op) {
		return
	}
	txNo, err := transactionNo(r)
	if err != nil {
		apierrors.WriteError(w, op, apierrors.ErrCartNotFound, "invalid transaction_no")
		return
	}
	var req VoidRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, op, apierrors.ErrUnexpected, "invalid request body")
		return
	}
	tx, err := h.cart.VoidTransaction(r.Context(),
		chi.URLParam(r, "tenant_id"), chi.URLParam(r, "store_code"), chi.URLParam(r, "terminal_no"), txNo, req)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, tx)
}

func (h *handlers) returnTransaction(w http.ResponseWriter, r *http.Request) {
	const op = "returnTransaction"
	if !h.requireCartService(w, op) {
		return
	}
	txNo, err := transactionNo(r)
	if err != nil {
		apierrors.WriteError(w, op, apierrors.ErrCartNotFound, "invalid transaction_no")
		return
	}
	var req ReturnRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, op, apierrors.ErrUnexpected, "invalid request body")
		return
	}
	tx, err := h.cart.ReturnTransaction(r.Context(),
		chi.URLParam(r, "tenant_id"), chi.URLParam(r, "store_code"), chi.URLParam(r, "terminal_no"), txNo, req)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeCartResponse(w, op, tx)
}

func (h *handlers) ackDelivery(w http.ResponseWriter, r *http.Request) {
	const op = "ackDelivery"
	if !h.requireCartService(w, op) {
		return
	}
	txNo, err := transactionNo(r)
	if err != nil {
		apierrors.WriteError(w, op, apierrors.ErrCartNotFound, "invalid transaction_no")
		return
	}
	var req AckDeliveryRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, op, apierrors.ErrUnexpected, "invalid request body")
		return
	}
	if err := h.cart.AckDelivery(r.Context(),
		chi.URLParam(r, "tenant_id"), chi.URLParam(r, "store_code"), chi.URLParam(r, "terminal_no"), txNo, req); err != nil {
		writeDomainError(w, op, err)
		return
	}
	apierrors.WriteSuccess(w, op, map[string]any{"acknowledged": true})
}
