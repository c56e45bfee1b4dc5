package extract

import (
	"testing"

	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePayer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.Payer
	}{
		{name: "owner keyword with accent", text: "Repasse ao Proprietário", want: model.PayerOwner},
		{name: "owner tax", text: "IPVA 2026 ABC1234", want: model.PayerOwner},
		{name: "operator keyword", text: "Multa cobrada do motorista", want: model.PayerOperator},
		{name: "operator keyword with accent", text: "Débito locatário", want: model.PayerOperator},
		{name: "owner keywords checked first", text: "Motorista pagou IPVA do investidor", want: model.PayerOwner},
		{name: "no keyword", text: "Lavagem", want: model.PayerUnknown},
		{name: "empty", text: "", want: model.PayerUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePayer(tt.text))
		})
	}
}

func TestPayersForView(t *testing.T) {
	assert.ElementsMatch(t, []model.Payer{model.PayerOwner, model.PayerOperator, model.PayerUnknown}, PayersForView(ViewAll))
	assert.ElementsMatch(t, []model.Payer{model.PayerOperator, model.PayerUnknown}, PayersForView(ViewOperator))
	assert.ElementsMatch(t, []model.Payer{model.PayerOwner}, PayersForView(ViewOwner))

	assert.True(t, ViewOperator.Includes(model.PayerUnknown))
	assert.False(t, ViewOwner.Includes(model.PayerUnknown))

	// Callers cannot mutate the table through the returned slice.
	payers := PayersForView(ViewOwner)
	payers[0] = model.PayerOperator
	assert.Equal(t, []model.Payer{model.PayerOwner}, PayersForView(ViewOwner))
}

func TestParseView(t *testing.T) {
	v, err := ParseView(" Operator ")
	require.NoError(t, err)
	assert.Equal(t, ViewOperator, v)

	v, err = ParseView("")
	require.NoError(t, err)
	assert.Equal(t, ViewAll, v)

	_, err = ParseView("investor")
	assert.ErrorIs(t, err, common.ErrInvalidView)
}
