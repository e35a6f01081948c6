package store

import "gorm.io/gorm"

// Stores bundles the per-aggregate stores bound to one database handle.
type Stores struct {
	Attractions AttractionStore
	Visits      VisitStore
	Tickets     TicketStore
}

// TxRunner executes a function with stores bound to a single transaction.
// Any error returned by fn rolls the whole batch back.
type TxRunner interface {
	InTransaction(fn func(tx Stores) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTransaction(fn func(tx Stores) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Attractions: NewAttractionStore(tx),
			Visits:      NewVisitStore(tx),
			Tickets:     NewTicketStore(tx),
		})
	})
}
