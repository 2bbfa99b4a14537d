// Package services implements the wallet balance operations on top of the
// SQLite storage layer. Every mutation that touches a balance runs inside a
// single database transaction together with the row it belongs to.
package services

import (
	"fintrack/internal/notify"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

// Services bundles every service sharing one repository.
type Services struct {
	Users        *UserService
	Wallets      *WalletService
	Categories   *CategoryService
	Transactions *TransactionService
	Transfers    *TransferService
	Recurring    *RecurringService
	Budgets      *BudgetService
	Monitor      *BudgetMonitor
	Processor    *RecurringProcessor
}

// New wires the services. jobs runs background budget checks; when nil they
// run inline.
func New(repo *storage.SQLiteRepository, dispatcher *notify.Dispatcher, jobs worker.Submitter) *Services {
	monitor := NewBudgetMonitor(repo, dispatcher, jobs)
	transactions := NewTransactionService(repo, monitor)
	return &Services{
		Users:        NewUserService(repo),
		Wallets:      NewWalletService(repo),
		Categories:   NewCategoryService(repo),
		Transactions: transactions,
		Transfers:    NewTransferService(repo),
		Recurring:    NewRecurringService(repo),
		Budgets:      NewBudgetService(repo, monitor),
		Monitor:      monitor,
		Processor:    NewRecurringProcessor(repo, transactions, dispatcher),
	}
}
