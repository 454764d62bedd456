// Package ofx converts OFX/QFX bank statements into expense candidates
// ready for submission.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/tallyhq/tally/internal/model"
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML-style OFX files sometimes drop the closing angle bracket on a
	// tag that ends the line.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes common formatting issues in OFX files before handing
// them to ofxgo.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseExpenses parses an OFX/QFX statement and returns the debit
// transactions as pending expense candidates. Credits (deposits, refunds)
// are skipped: only money going out is an expense.
func (p *Parser) ParseExpenses(ctx context.Context, reader io.Reader) ([]model.Expense, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var expenses []model.Expense
	var bankStmts, ccStmts, skippedCredits int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		for _, tx := range stmt.BankTranList.Transactions {
			expense, isDebit := p.convertTransaction(tx, string(stmt.BankAcctFrom.AcctID))
			if !isDebit {
				skippedCredits++
				continue
			}
			expenses = append(expenses, expense)
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		for _, tx := range stmt.BankTranList.Transactions {
			expense, isDebit := p.convertTransaction(tx, string(stmt.CCAcctFrom.AcctID))
			if !isDebit {
				skippedCredits++
				continue
			}
			expenses = append(expenses, expense)
		}
	}

	slog.Info("parsed OFX statement",
		"expenses", len(expenses),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts,
		"skipped_credits", skippedCredits)

	return expenses, nil
}

// convertTransaction maps one OFX transaction to an expense candidate. The
// second return value is false for credits, which are not expenses.
func (p *Parser) convertTransaction(tx ofxgo.Transaction, accountID string) (model.Expense, bool) {
	// OFX amounts are negative for debits.
	amount := decimal.NewFromBigRat(&tx.TrnAmt.Rat, 2)
	if amount.IsPositive() || amount.IsZero() {
		return model.Expense{}, false
	}

	expense := model.Expense{
		Date:        tx.DtPosted.Time,
		Description: p.describe(tx),
		Department:  accountID,
		Status:      model.ExpensePending,
		// FITIDs are unique per account, so a re-imported statement maps
		// to the same client refs and the backend deduplicates.
		ClientRef: fmt.Sprintf("ofx-%s-%s", accountID, tx.FiTID),
		Amount:    amount.Neg(),
	}

	switch fmt.Sprintf("%v", tx.TrnType) {
	case "FEE", "SRVCHG":
		expense.Category = "Bank Fees"
	case "ATM", "CASH":
		expense.Category = "Cash & ATM"
	default:
		expense.Category = "Uncategorized"
	}

	return expense, true
}

// describe picks the most useful description: the payee name when present,
// otherwise the transaction name, falling back to the memo for generic
// names.
func (p *Parser) describe(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	for _, prefix := range []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
	} {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	return name
}

// isGenericDescription reports whether a transaction name carries no
// merchant information.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "DEBIT", "CREDIT", "POS", "PURCHASE", "PAYMENT", "WITHDRAWAL", "CHECK":
		return true
	}
	return false
}
