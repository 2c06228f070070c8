package domain

import "time"

// Network identifica em qual rede Ethereum a carteira opera.
type Network string

const (
	NetworkTestnet Network = "testnet"
	NetworkMainnet Network = "mainnet"
)

// ParseNetwork valida a string vinda de fora (HTTP, fila, banco).
func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case NetworkTestnet, NetworkMainnet:
		return Network(s), nil
	}
	return "", ErrInvalidNetwork
}

// Wallet representa uma carteira custodiada.
// Clean Architecture: esta entidade não sabe o que é JSON nem SQL.
// A chave privada nunca aparece aqui em claro, apenas o envelope cifrado.
type Wallet struct {
	ID                  int64
	Address             string // Sempre na forma checksummed (EIP-55)
	PrivateKeyEncrypted string // Envelope iv:salt:tag:ciphertext (hex)
	Network             Network
	OwnerID             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
