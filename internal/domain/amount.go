package domain

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// weiPerEther = 10^18. Decimal exato, nunca float64.
var weiPerEther = decimal.New(1, 18)

// ParseEtherAmount converte um valor decimal em ether (ex: "1.5") para wei
// como inteiro de precisão arbitrária. Rejeita zero, negativos, lixo e
// qualquer valor com precisão menor que 1 wei.
func ParseEtherAmount(raw string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	wei := d.Mul(weiPerEther)
	if !wei.IsInteger() {
		return nil, ErrInvalidAmount
	}

	return wei.BigInt(), nil
}

// FormatWeiAsEther faz o caminho inverso, para respostas HTTP e logs.
func FormatWeiAsEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	// Expoente -18 em vez de Div: conversão exata, sem arredondamento.
	return decimal.NewFromBigInt(wei, -18).String()
}
