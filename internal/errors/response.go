package errors

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire shape every endpoint responds with (spec §6.1).
type Envelope struct {
	Success   bool        `json:"success"`
	Code      int         `json:"code"` // HTTP status
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Operation string      `json:"operation"`
	UserError *UserError  `json:"userError,omitempty"`
}

// UserError carries the stable, localizable error identity (spec §7).
type UserError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Success builds a successful envelope.
func Success(operation string, data interface{}) Envelope {
	return Envelope{
		Success:   true,
		Code:      http.StatusOK,
		Message:   "ok",
		Data:      data,
		Operation: operation,
	}
}

// Created builds a 201 envelope.
func Created(operation string, data interface{}) Envelope {
	e := Success(operation, data)
	e.Code = http.StatusCreated
	return e
}

// NewEnvelope builds a failing envelope from an ErrorCode.
func NewEnvelope(operation string, code ErrorCode, message string) Envelope {
	status := code.HTTPStatus()
	return Envelope{
		Success:   false,
		Code:      status,
		Message:   message,
		Operation: operation,
		UserError: &UserError{Code: code, Message: message},
	}
}

// WriteJSON writes any envelope at its Code status.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

// WriteError writes a failing envelope for the given operation and code.
func WriteError(w http.ResponseWriter, operation string, code ErrorCode, message string) {
	env := NewEnvelope(operation, code, message)
	WriteJSON(w, env.Code, env)
}

// WriteSuccess writes a 200 envelope.
func WriteSuccess(w http.ResponseWriter, operation string, data interface{}) {
	env := Success(operation, data)
	WriteJSON(w, env.Code, env)
}

// WriteCreated writes a 201 envelope.
func WriteCreated(w http.ResponseWriter, operation string, data interface{}) {
	env := Created(operation, data)
	WriteJSON(w, env.Code, env)
}
