package domain

import "context"

// Journal persists ledger history so a process can rebuild its store on
// startup. Appends must be idempotent for an already-journaled record.
type Journal interface {
	AppendAccount(ctx context.Context, account Account) error
	AppendTransfer(ctx context.Context, record TransferRecord) error
	Load(ctx context.Context) ([]Account, []TransferRecord, error)
	Close() error
}
