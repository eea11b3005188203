package repositories

import "context"

// TxFn runs with a context carrying the transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs multi-record writes (cascade deletes, subtree
// moves) atomically. A call made inside an open transaction joins it.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
