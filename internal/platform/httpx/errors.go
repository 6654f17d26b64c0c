package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

var kindStatus = map[shared.Kind]struct {
	status int
	title  string
}{
	shared.KindUnbalancedEntry:  {http.StatusUnprocessableEntity, "Unbalanced Entry"},
	shared.KindEmptyEntry:       {http.StatusUnprocessableEntity, "Empty Entry"},
	shared.KindInvalidAmount:    {http.StatusUnprocessableEntity, "Invalid Amount"},
	shared.KindUnknownLedger:    {http.StatusUnprocessableEntity, "Unknown Ledger"},
	shared.KindInvalidReference: {http.StatusConflict, "Invalid Reference"},
	shared.KindNotFound:         {http.StatusNotFound, "Not Found"},
	shared.KindInvalidRange:     {http.StatusBadRequest, "Invalid Range"},
	shared.KindInvalidInput:     {http.StatusBadRequest, "Validation Failed"},
}

// RespondError maps ledger errors to RFC7807 responses. Unclassified errors
// become a 500 without leaking their message.
func RespondError(w http.ResponseWriter, err error) {
	kind := shared.KindOf(err)
	mapped, ok := kindStatus[kind]
	if !ok {
		WriteProblem(w, ProblemDetail{Title: "Internal Error", Status: http.StatusInternalServerError, Code: string(shared.KindInternal)})
		return
	}
	WriteProblem(w, ProblemDetail{
		Title:  mapped.title,
		Status: mapped.status,
		Detail: err.Error(),
		Code:   string(kind),
		Meta:   errorMeta(err),
	})
}

func errorMeta(err error) map[string]any {
	meta := map[string]any{}
	var unbalanced *shared.UnbalancedEntryError
	if errors.As(err, &unbalanced) {
		meta["debit_total"] = unbalanced.Debit.StringFixed(2)
		meta["credit_total"] = unbalanced.Credit.StringFixed(2)
	}
	var item *shared.ItemError
	if errors.As(err, &item) {
		meta["item_index"] = item.Index
		meta["ledger_id"] = item.LedgerID
	}
	var ref *shared.ReferenceError
	if errors.As(err, &ref) {
		meta["entity"] = ref.Entity
		if ref.ID != 0 {
			meta["entity_id"] = ref.ID
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
