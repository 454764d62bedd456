package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250415120000
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>PHP
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>9876543210
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250401000000
<DTEND>20250415000000
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250402120000
<TRNAMT>-1899.00
<FITID>FIT-001
<NAME>POS PURCHASE PLDT INTERNET
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250405120000
<TRNAMT>5000.00
<FITID>FIT-002
<NAME>SALARY DEPOSIT
</STMTTRN>
<STMTTRN>
<TRNTYPE>FEE
<DTPOSTED>20250410120000
<TRNAMT>-150.00
<FITID>FIT-003
<NAME>MONTHLY SERVICE FEE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>2951.00
<DTASOF>20250415120000
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseExpenses(t *testing.T) {
	parser := NewParser()

	expenses, err := parser.ParseExpenses(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, expenses, 2, "credits are not expenses")

	first := expenses[0]
	assert.Equal(t, "PLDT INTERNET", first.Description, "POS prefix stripped")
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("1899.00")), "amount positive, got %s", first.Amount)
	assert.Equal(t, "ofx-9876543210-FIT-001", first.ClientRef)
	assert.Equal(t, "9876543210", first.Department)

	fee := expenses[1]
	assert.Equal(t, "Bank Fees", fee.Category)
	assert.True(t, fee.Amount.Equal(decimal.RequireFromString("150.00")))
}

func TestParseExpenses_DedupStableClientRefs(t *testing.T) {
	parser := NewParser()
	ctx := context.Background()

	once, err := parser.ParseExpenses(ctx, strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	twice, err := parser.ParseExpenses(ctx, strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	require.Equal(t, len(once), len(twice))
	for i := range once {
		assert.Equal(t, once[i].ClientRef, twice[i].ClientRef,
			"re-importing the same statement must produce identical refs")
	}
}

func TestParseExpenses_InvalidFile(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseExpenses(context.Background(), strings.NewReader("not an ofx file"))
	require.Error(t, err)
}

func TestIsGenericDescription(t *testing.T) {
	assert.True(t, isGenericDescription("DEBIT"))
	assert.True(t, isGenericDescription("  payment "))
	assert.True(t, isGenericDescription(""))
	assert.False(t, isGenericDescription("PLDT INTERNET"))
}
