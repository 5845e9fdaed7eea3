package viewmodel

import (
	"farm-coop-api-server/internal/models"
	"farm-coop-api-server/internal/store"
)

// TransactionViewModel is read-only: entries are appended as a side effect of
// order operations and never edited afterwards.
type TransactionViewModel struct {
	*listVM[models.TransactionData]
}

func NewTransactionViewModel(s store.Store) *TransactionViewModel {
	return &TransactionViewModel{
		listVM: newListVM(s, "transactions", transactionValid, transactionSearchFields),
	}
}

func transactionValid(t models.TransactionData) bool { return t.TransactionID != "" }

func transactionSearchFields(t models.TransactionData) []string {
	return []string{t.TransactionID, t.Description, t.Status, t.OrderID}
}

func (vm *TransactionViewModel) FetchTransactions(keywords string) {
	vm.fetch(transactionsRoot, false, Keywords(keywords), nil)
}
