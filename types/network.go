package types

// Network identifies a supported blockchain.
type Network string

const (
	NetworkEthereum  Network = "ethereum"
	NetworkBSC       Network = "bsc"
	NetworkPolygon   Network = "polygon"
	NetworkAvalanche Network = "avalanche"
	NetworkArbitrum  Network = "arbitrum"
	NetworkSolana    Network = "solana"
)

// AllNetworks lists every network the engine ships adapters for.
func AllNetworks() []Network {
	return []Network{
		NetworkEthereum,
		NetworkBSC,
		NetworkPolygon,
		NetworkAvalanche,
		NetworkArbitrum,
		NetworkSolana,
	}
}

// IsEVM reports whether the network uses Ethereum-style addresses and
// transaction hashes.
func (n Network) IsEVM() bool {
	switch n {
	case NetworkEthereum, NetworkBSC, NetworkPolygon, NetworkAvalanche, NetworkArbitrum:
		return true
	}
	return false
}

// IsSolana reports whether the network uses base58 Solana encoding.
func (n Network) IsSolana() bool {
	return n == NetworkSolana
}

func (n Network) String() string {
	return string(n)
}
