package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress valida e converte um endereço para a forma checksummed
// (EIP-55). Aceita entrada toda minúscula, toda maiúscula ou já checksummed;
// caixa mista com checksum errado é rejeitada. A operação é idempotente:
// normalizar um endereço já normalizado devolve o mesmo valor.
func NormalizeAddress(raw string) (string, error) {
	if !strings.HasPrefix(raw, "0x") || !common.IsHexAddress(raw) {
		return "", ErrInvalidAddress
	}

	checksummed := common.HexToAddress(raw).Hex()
	if raw == checksummed {
		return checksummed, nil
	}

	// Sem informação de checksum na entrada (caixa uniforme), normalizamos.
	hexPart := raw[2:]
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return checksummed, nil
	}

	// Caixa mista que não bate com o checksum EIP-55: provável erro de digitação.
	return "", ErrInvalidAddress
}
