package accounts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

func TestNewService(t *testing.T) {
	chart := DefaultChart()
	svc := NewService(chart)

	assert.Len(t, svc.All(), len(chart.Accounts))
}

func TestGetExists(t *testing.T) {
	svc := NewService(DefaultChart())

	acct, ok := svc.Get("BANK-CHQ")
	assert.True(t, ok)
	assert.Equal(t, "Business Cheque Account", acct.Name)
	assert.Equal(t, model.AccountTypeAsset, acct.Type)
	assert.Equal(t, "BANK", acct.ParentCode)

	_, ok = svc.Get("NOPE")
	assert.False(t, ok)

	assert.True(t, svc.Exists("MEMO"))
	assert.False(t, svc.Exists("NOPE"))
}

func TestByType(t *testing.T) {
	svc := NewService(DefaultChart())

	for _, a := range svc.ByType(model.AccountTypeExpense) {
		assert.Equal(t, model.AccountTypeExpense, a.Type)
	}
	income := svc.ByType(model.AccountTypeIncome)
	assert.Len(t, income, 4, "INC plus three children")
}

func TestTypeOfAndRequire(t *testing.T) {
	svc := NewService(DefaultChart())

	typ, err := svc.TypeOf("GST-PAID")
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeLiability, typ)

	require.NoError(t, svc.Require("BANK", "EXP-UNCLASSIFIED", "INC-UNCLASSIFIED", "MEMO"))

	err = svc.Require("BANK", "EXP-NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.Contains(t, err.Error(), "EXP-NOPE")
}
