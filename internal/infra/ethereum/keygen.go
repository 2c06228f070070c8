package ethereum

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// KeyGenerator cria pares de chave secp256k1 novos e deriva o endereço
// checksummed. A chave sai como hex em []byte para que o chamador consiga
// zerar a memória depois de cifrar.
type KeyGenerator struct{}

func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{}
}

func (g *KeyGenerator) Generate() ([]byte, string, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate private key: %w", err)
	}

	raw := crypto.FromECDSA(privateKey)
	privateKeyHex := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(privateKeyHex, raw)
	for i := range raw {
		raw[i] = 0
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
	return privateKeyHex, address, nil
}
