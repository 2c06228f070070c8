package ethereum

import (
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

// Registry implementa gateway.LedgerRegistry com um gateway singleton por
// rede, construídos uma única vez no bootstrap. Uma rede sem gateway (nó
// fora do ar na subida, por exemplo) simplesmente não resolve.
type Registry struct {
	gateways map[domain.Network]*Gateway
}

func NewRegistry() *Registry {
	return &Registry{gateways: make(map[domain.Network]*Gateway)}
}

func (r *Registry) Register(network domain.Network, gw *Gateway) {
	r.gateways[network] = gw
}

func (r *Registry) Ledger(network domain.Network) (gateway.Ledger, error) {
	gw, ok := r.gateways[network]
	if !ok {
		return nil, fmt.Errorf("network %q is not configured", network)
	}
	return gw, nil
}
