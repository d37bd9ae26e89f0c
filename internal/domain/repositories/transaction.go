package repositories

import "context"

// TxFn is the unit of work passed to ExecTx. It must use the ctx it is
// given so repository calls join the transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs a TxFn atomically: every write made through the
// supplied context commits together or not at all.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
