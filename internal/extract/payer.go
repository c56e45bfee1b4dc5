package extract

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/model"
)

// PayerKeyword maps a keyword to the party it implies.
type PayerKeyword struct {
	Keyword string
	Payer   model.Payer
}

// PayerKeywords is checked in order, owner-side keywords first. Keywords are
// written without accents; text is folded before comparison.
var PayerKeywords = []PayerKeyword{
	{Keyword: "proprietario", Payer: model.PayerOwner},
	{Keyword: "investidor", Payer: model.PayerOwner},
	{Keyword: "owner", Payer: model.PayerOwner},
	{Keyword: "investor", Payer: model.PayerOwner},
	{Keyword: "ipva", Payer: model.PayerOwner},
	{Keyword: "licenciamento", Payer: model.PayerOwner},
	{Keyword: "motorista", Payer: model.PayerOperator},
	{Keyword: "condutor", Payer: model.PayerOperator},
	{Keyword: "locatario", Payer: model.PayerOperator},
	{Keyword: "driver", Payer: model.PayerOperator},
	{Keyword: "operator", Payer: model.PayerOperator},
	{Keyword: "operacao", Payer: model.PayerOperator},
}

// DerivePayer classifies which party bears the cost described by text.
func DerivePayer(text string) model.Payer {
	folded := fold(text)
	if folded == "" {
		return model.PayerUnknown
	}
	for _, kw := range PayerKeywords {
		if strings.Contains(folded, kw.Keyword) {
			return kw.Payer
		}
	}
	return model.PayerUnknown
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// View is a requested reporting perspective.
type View string

// View constants.
const (
	ViewAll      View = "all"
	ViewOperator View = "operator"
	ViewOwner    View = "owner"
)

// ParseView validates a view name; empty means all.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewAll, nil
	case ViewAll, ViewOperator, ViewOwner:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidView, s)
}

var viewPayers = map[View][]model.Payer{
	ViewAll:      {model.PayerOwner, model.PayerOperator, model.PayerUnknown},
	ViewOperator: {model.PayerOperator, model.PayerUnknown},
	ViewOwner:    {model.PayerOwner},
}

// PayersForView returns the derived payers included in a view. Unattributed
// cost is charged to the operator.
func PayersForView(v View) []model.Payer {
	payers, ok := viewPayers[v]
	if !ok {
		payers = viewPayers[ViewAll]
	}
	return append([]model.Payer(nil), payers...)
}

// Includes reports whether payer is part of view v.
func (v View) Includes(payer model.Payer) bool {
	for _, p := range PayersForView(v) {
		if p == payer {
			return true
		}
	}
	return false
}
