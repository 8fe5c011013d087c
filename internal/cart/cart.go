// Package cart holds the mutable working document C3-C6 operate on and the
// immutable records C7 materializes from it (spec §3).
package cart

import (
	"time"

	"github.com/cartflow/server/internal/money"
)

// Status is the cart's lifecycle state, gated exclusively by C3 (spec §4.3).
type Status string

const (
	StatusInitial       Status = "Initial"
	StatusIdle          Status = "Idle"
	StatusEnteringItem  Status = "EnteringItem"
	StatusPaying        Status = "Paying"
	StatusCompleted     Status = "Completed"
	StatusCancelled     Status = "Cancelled"
)

// TransactionType is the integer code recorded on a cart/transaction.
type TransactionType int

const (
	TransactionTypeSale       TransactionType = 101
	TransactionTypeReturn     TransactionType = 102
	TransactionTypeVoidSale   TransactionType = -101
	TransactionTypeCancelSale TransactionType = 201
	TransactionTypeCancelReturn TransactionType = 202
)

// Cart is the mutable working document for one in-progress POS transaction.
type Cart struct {
	CartID          string          `json:"cartId"`
	TenantID        string          `json:"tenantId"`
	StoreCode       string          `json:"storeCode"`
	TerminalNo      string          `json:"terminalNo"`
	Status          Status          `json:"status"`
	TransactionType TransactionType `json:"transactionType"`
	BusinessDate    string          `json:"businessDate"` // YYYYMMDD
	User            string          `json:"user,omitempty"`
	Staff           string          `json:"staff,omitempty"`

	LineItems         []LineItem `json:"lineItems"`
	SubtotalDiscounts []Discount `json:"subtotalDiscounts,omitempty"`
	Payments          []Payment  `json:"payments,omitempty"`
	Taxes             []TaxLine  `json:"taxes,omitempty"`

	SubtotalAmount      money.Money `json:"subtotalAmount"`
	TotalAmount         money.Money `json:"totalAmount"`
	TotalDiscountAmount money.Money `json:"totalDiscountAmount"`
	DepositAmount       money.Money `json:"depositAmount"`
	ChangeAmount        money.Money `json:"changeAmount"`
	BalanceAmount       money.Money `json:"balanceAmount"`

	Masters Masters `json:"masters"`

	ETag      string    `json:"etag"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TerminalID is the (tenant, store, terminal) composite key used throughout
// C1/C2/C9 for per-terminal scoping.
func (c *Cart) TerminalID() string {
	return c.TenantID + "-" + c.StoreCode + "-" + c.TerminalNo
}

// IsTerminal reports whether the cart has reached an immutable end state.
func (c *Cart) IsTerminal() bool {
	return c.Status == StatusCompleted || c.Status == StatusCancelled
}

// LineItem is one scanned/entered item on the cart.
type LineItem struct {
	LineNo               int         `json:"lineNo"`
	ItemCode             string      `json:"itemCode"`
	Description          string      `json:"description"`
	UnitPrice            money.Money `json:"unitPrice"`
	UnitPriceOriginal    money.Money `json:"unitPriceOriginal"`
	IsUnitPriceChanged   bool        `json:"isUnitPriceChanged"`
	Quantity             float64     `json:"quantity"`
	Amount               money.Money `json:"amount"`
	Discounts            []Discount  `json:"discounts,omitempty"`
	TaxAmount            money.Money `json:"taxAmount"`
	IsCancelled          bool        `json:"isCancelled"`
	IsDiscountRestricted bool        `json:"isDiscountRestricted"`
	// ReturnedQuantity tracks how much of Quantity has been reversed by
	// void/return transactions referencing this line (§9 OPEN QUESTION
	// DECISIONS: partial-return idempotency tracked per-line, cumulative).
	ReturnedQuantity float64 `json:"returnedQuantity,omitempty"`
}

// IsFullyReturned reports whether every unit of the line has been reversed.
func (li *LineItem) IsFullyReturned() bool {
	return li.ReturnedQuantity >= li.Quantity
}

// DiscountType distinguishes a flat amount from a percentage discount.
type DiscountType string

const (
	DiscountTypeAmount  DiscountType = "amount"
	DiscountTypePercent DiscountType = "percent"
)

// Discount is a line- or cart-level markdown.
type Discount struct {
	Type          DiscountType `json:"type"`
	Value         float64      `json:"value"` // cents for amount, basis points for percent
	Detail        string       `json:"detail,omitempty"`
	AmountApplied money.Money  `json:"amountApplied"`
}

// Payment is one tender applied to the cart.
type Payment struct {
	PaymentNo     int         `json:"paymentNo"`
	PaymentCode   string      `json:"paymentCode"`
	Amount        money.Money `json:"amount"`
	DepositAmount money.Money `json:"depositAmount"`
	Detail        string      `json:"detail,omitempty"`
	IsRefunded    bool        `json:"isRefunded"`
}

// TaxType classifies how a tax line's rate is applied to its target amount.
type TaxType string

const (
	TaxTypeExclusive TaxType = "exclusive"
	TaxTypeInclusive TaxType = "inclusive"
	TaxTypeExempt    TaxType = "exempt"
)

// TaxLine is one computed tax group on the cart.
type TaxLine struct {
	TaxCode        string      `json:"taxCode"`
	TaxName        string      `json:"taxName"`
	TaxType        TaxType     `json:"taxType"`
	RateBasis      int64       `json:"rateBasisPoints"`
	TargetAmount   money.Money `json:"targetAmount"`
	TargetQuantity float64     `json:"targetQuantity"`
	TaxAmount      money.Money `json:"taxAmount"`
}

// Masters is the read-only item/tax/settings snapshot embedded into the cart
// at load time so later recalculation is self-contained (spec §3).
type Masters struct {
	Items map[string]ItemMaster `json:"items"`
	Taxes map[string]TaxMaster  `json:"taxes"`
}

// ItemMaster is the snapshot of one item's catalog facts.
type ItemMaster struct {
	ItemCode             string      `json:"itemCode"`
	Description          string      `json:"description"`
	UnitPrice            money.Money `json:"unitPrice"`
	TaxCode              string      `json:"taxCode"`
	IsDiscountRestricted bool        `json:"isDiscountRestricted"`
}

// TaxMaster is the snapshot of one tax code's rate and rounding policy.
type TaxMaster struct {
	TaxCode      string            `json:"taxCode"`
	TaxName      string            `json:"taxName"`
	TaxType      TaxType           `json:"taxType"`
	RateBasis    int64             `json:"rateBasisPoints"`
	RoundingMode money.RoundingMode `json:"-"`
}
