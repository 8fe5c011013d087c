package cart

import (
	"strconv"
	"time"
)

// Transaction is the immutable copy of a Cart materialized by C7 at BILL
// (spec §3 "log_tran"). It is append-only: no field is ever updated after
// insert except via the sibling TransactionStatus record.
type Transaction struct {
	TransactionNo    int64     `json:"transactionNo"`
	ReceiptNo        int64     `json:"receiptNo"`
	GenerateDateTime time.Time `json:"generateDateTime"`
	ReceiptText      string    `json:"receiptText"`
	JournalText      string    `json:"journalText"`

	Cart Cart `json:"cart"`

	// ReferenceTransactionNo links a void/return transaction back to the
	// original sale it reverses; zero for an original sale.
	ReferenceTransactionNo int64 `json:"referenceTransactionNo,omitempty"`
}

// Key identifies the transaction for idempotent re-delivery of the BILL
// event (spec §4.1: "cart_id + transaction_no").
func (t *Transaction) Key() string {
	return t.Cart.CartID + ":" + strconv.FormatInt(t.TransactionNo, 10)
}

// TransactionStatus tracks after-the-fact void/return flags for a completed
// transaction (spec §3).
type TransactionStatus struct {
	TransactionNo string `json:"transactionNo"`

	IsVoided        bool      `json:"isVoided"`
	VoidTransactionNo int64   `json:"voidTransactionNo,omitempty"`
	VoidDateTime    time.Time `json:"voidDateTime,omitempty"`
	VoidStaffID     string    `json:"voidStaffId,omitempty"`

	IsReturned        bool      `json:"isReturned"`
	ReturnTransactionNo int64   `json:"returnTransactionNo,omitempty"`
	ReturnDateTime    time.Time `json:"returnDateTime,omitempty"`
	ReturnStaffID     string    `json:"returnStaffId,omitempty"`
}
