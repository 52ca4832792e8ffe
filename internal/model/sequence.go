package model

// Sequence name constants
const (
	SeqInvoice = "invoice"
	SeqTicket  = "ticket"
)

// SequenceBase is the value counters restart from; the first number
// handed out is base+1 (INV-1001).
const SequenceBase int64 = 1000

// NumberSequence backs the monotonic invoice/ticket counters. Rows are
// incremented under a row lock so two concurrent issuances can never
// receive the same number, and numbers survive deletion of the
// documents that used them.
type NumberSequence struct {
	Name  string `gorm:"type:varchar(30);primaryKey" json:"name"`
	Value int64  `gorm:"not null" json:"value"`
}
