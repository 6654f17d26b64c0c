package reports

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row ...string) error {
	if s == nil || s.csv == nil {
		return errors.New("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.flush()
	}
	return nil
}

func (s *csvStreamer) flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func columnCells(c Columns) []string {
	return []string{
		money(c.OpeningDebit), money(c.OpeningCredit),
		money(c.PeriodDebit), money(c.PeriodCredit),
		money(c.ClosingDebit), money(c.ClosingCredit),
	}
}

// WriteTrialBalanceCSV writes a flat trial balance: one row per ledger, a
// subtotal row per ledger group and parent group, and the grand total.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalance) error {
	s := newCSVStreamer(w)
	if err := s.writeRow("# trial balance", tb.StartDate.String(), tb.EndDate.String()); err != nil {
		return err
	}
	header := []string{"level", "parent_group", "ledger_group", "ledger_id", "ledger",
		"opening_debit", "opening_credit", "period_debit", "period_credit", "closing_debit", "closing_credit"}
	if err := s.writeRow(header...); err != nil {
		return err
	}
	for _, parent := range tb.ParentGroups {
		for _, group := range parent.Groups {
			for _, ledger := range group.Ledgers {
				row := append([]string{"ledger", parent.Name, group.Name, strconv.FormatInt(ledger.LedgerID, 10), ledger.Name}, columnCells(ledger.Columns)...)
				if err := s.writeRow(row...); err != nil {
					return err
				}
			}
			row := append([]string{"ledger_group", parent.Name, group.Name, "", ""}, columnCells(group.Totals)...)
			if err := s.writeRow(row...); err != nil {
				return err
			}
		}
		row := append([]string{"parent_group", parent.Name, "", "", ""}, columnCells(parent.Totals)...)
		if err := s.writeRow(row...); err != nil {
			return err
		}
	}
	row := append([]string{"total", "", "", "", ""}, columnCells(tb.Totals)...)
	if err := s.writeRow(row...); err != nil {
		return err
	}
	if err := s.writeRow("is_balanced", strconv.FormatBool(tb.IsBalanced)); err != nil {
		return err
	}
	return s.flush()
}

// WriteLedgerReportCSV writes a ledger statement with opening and closing rows.
func WriteLedgerReportCSV(w io.Writer, r LedgerReport) error {
	s := newCSVStreamer(w)
	if err := s.writeRow("# ledger", strconv.FormatInt(r.Ledger.LedgerID, 10), r.Ledger.LedgerName,
		r.Ledger.StartDate.String(), r.Ledger.EndDate.String()); err != nil {
		return err
	}
	if err := s.writeRow("transaction_id", "transaction_date", "reference", "transaction_type", "debit", "credit", "running_balance"); err != nil {
		return err
	}
	if err := s.writeRow("", r.Ledger.StartDate.String(), "Opening balance", "", "", "", money(r.OpeningBalance)); err != nil {
		return err
	}
	for _, e := range r.Entries {
		debit, credit := "", ""
		if e.EntryType == shared.EntryDebit {
			debit = money(e.Amount)
		} else {
			credit = money(e.Amount)
		}
		if err := s.writeRow(strconv.FormatInt(e.TransactionID, 10), e.Date.String(), e.Reference, string(e.Type),
			debit, credit, money(e.RunningBalance)); err != nil {
			return err
		}
	}
	if err := s.writeRow("", r.Ledger.EndDate.String(), "Totals", "", money(r.TotalDebit), money(r.TotalCredit), money(r.ClosingBalance)); err != nil {
		return err
	}
	return s.flush()
}
