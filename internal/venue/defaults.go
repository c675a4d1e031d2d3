package venue

// Chain names used by the built-in venue set.
const (
	ChainPolygon  = "polygon"
	ChainEthereum = "ethereum"
	ChainArbitrum = "arbitrum"
	ChainOptimism = "optimism"
	ChainBSC      = "bsc"
)

// Default returns a registry seeded with the built-in venue set: the major
// Polygon and Ethereum venues plus a handful of cross-chain ones. Callers
// patch or replace it through configuration.
func Default() *Registry {
	return NewRegistry(defaultVenues()...)
}

func defaultVenues() []Venue {
	return []Venue{
		{Name: "Uniswap V3", Identifier: "uniswap_v3", Chain: ChainPolygon, Enabled: true, Priority: 10, RouterAddress: "0xE592427A0AEce92De3Edee1F18E0157C05861564", AvgLatencyMS: 100},
		{Name: "QuickSwap", Identifier: "quickswap", Chain: ChainPolygon, Enabled: true, Priority: 9, RouterAddress: "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff", AvgLatencyMS: 100},
		{Name: "SushiSwap", Identifier: "sushiswap", Chain: ChainPolygon, Enabled: true, Priority: 9, RouterAddress: "0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506", AvgLatencyMS: 100},
		{Name: "Balancer V2", Identifier: "balancer_v2", Chain: ChainPolygon, Enabled: true, Priority: 10, RouterAddress: "0xBA12222222228d8Ba445958a75a0704d566BF2C8", SupportsFlashloan: true, AvgLatencyMS: 100},
		{Name: "Curve Finance", Identifier: "curve", Chain: ChainPolygon, Enabled: true, Priority: 9, AvgLatencyMS: 100},
		{Name: "DODO", Identifier: "dodo", Chain: ChainPolygon, Enabled: true, Priority: 8, SupportsFlashloan: true, AvgLatencyMS: 100},
		{Name: "1inch", Identifier: "oneinch", Chain: ChainPolygon, Enabled: true, Priority: 8, AvgLatencyMS: 100},
		{Name: "Kyber Network", Identifier: "kyber", Chain: ChainPolygon, Enabled: true, Priority: 7, AvgLatencyMS: 100},
		{Name: "Dfyn", Identifier: "dfyn", Chain: ChainPolygon, Enabled: true, Priority: 7, AvgLatencyMS: 100},
		{Name: "ApeSwap", Identifier: "apeswap", Chain: ChainPolygon, Enabled: true, Priority: 7, AvgLatencyMS: 100},
		{Name: "PolyDEX", Identifier: "polydex", Chain: ChainPolygon, Enabled: true, Priority: 6, AvgLatencyMS: 100},
		{Name: "WaultSwap", Identifier: "waultswap", Chain: ChainPolygon, Enabled: true, Priority: 6, AvgLatencyMS: 100},
		{Name: "Firebird Finance", Identifier: "firebird", Chain: ChainPolygon, Enabled: true, Priority: 6, AvgLatencyMS: 100},
		{Name: "Jetswap", Identifier: "jetswap", Chain: ChainPolygon, Enabled: true, Priority: 5, AvgLatencyMS: 100},
		{Name: "Polycat Finance", Identifier: "polycat", Chain: ChainPolygon, Enabled: true, Priority: 5, AvgLatencyMS: 100},
		{Name: "PolyCrystal", Identifier: "polycrystal", Chain: ChainPolygon, Enabled: true, Priority: 5, AvgLatencyMS: 100},
		{Name: "DinoSwap", Identifier: "dinoswap", Chain: ChainPolygon, Enabled: true, Priority: 5, AvgLatencyMS: 100},
		{Name: "Gravity Finance", Identifier: "gravity", Chain: ChainPolygon, Enabled: true, Priority: 5, AvgLatencyMS: 100},
		{Name: "Elk Finance", Identifier: "elk", Chain: ChainPolygon, Enabled: true, Priority: 4, AvgLatencyMS: 100},
		{Name: "ComethSwap", Identifier: "comethswap", Chain: ChainPolygon, Enabled: true, Priority: 4, AvgLatencyMS: 100},

		{Name: "Uniswap V3 (ETH)", Identifier: "uniswap_v3_eth", Chain: ChainEthereum, Enabled: true, Priority: 10, RouterAddress: "0xE592427A0AEce92De3Edee1F18E0157C05861564", AvgLatencyMS: 100},
		{Name: "Uniswap V2 (ETH)", Identifier: "uniswap_v2_eth", Chain: ChainEthereum, Enabled: true, Priority: 9, RouterAddress: "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D", AvgLatencyMS: 100},
		{Name: "SushiSwap (ETH)", Identifier: "sushiswap_eth", Chain: ChainEthereum, Enabled: true, Priority: 9, RouterAddress: "0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F", AvgLatencyMS: 100},
		{Name: "Balancer V2 (ETH)", Identifier: "balancer_v2_eth", Chain: ChainEthereum, Enabled: true, Priority: 10, RouterAddress: "0xBA12222222228d8Ba445958a75a0704d566BF2C8", SupportsFlashloan: true, AvgLatencyMS: 100},
		{Name: "Curve (ETH)", Identifier: "curve_eth", Chain: ChainEthereum, Enabled: true, Priority: 9, AvgLatencyMS: 100},
		{Name: "DODO (ETH)", Identifier: "dodo_eth", Chain: ChainEthereum, Enabled: true, Priority: 8, SupportsFlashloan: true, AvgLatencyMS: 100},
		{Name: "1inch (ETH)", Identifier: "oneinch_eth", Chain: ChainEthereum, Enabled: true, Priority: 8, AvgLatencyMS: 100},
		{Name: "Bancor V3", Identifier: "bancor_v3", Chain: ChainEthereum, Enabled: true, Priority: 7, AvgLatencyMS: 100},
		{Name: "Kyber (ETH)", Identifier: "kyber_eth", Chain: ChainEthereum, Enabled: true, Priority: 7, AvgLatencyMS: 100},
		{Name: "Shibaswap", Identifier: "shibaswap", Chain: ChainEthereum, Enabled: true, Priority: 6, AvgLatencyMS: 100},

		{Name: "PancakeSwap V3", Identifier: "pancake_v3", Chain: ChainBSC, Enabled: true, Priority: 8, AvgLatencyMS: 100},
		{Name: "Camelot DEX", Identifier: "camelot", Chain: ChainArbitrum, Enabled: true, Priority: 7, AvgLatencyMS: 100},
		{Name: "Velodrome", Identifier: "velodrome", Chain: ChainOptimism, Enabled: true, Priority: 7, AvgLatencyMS: 100},
		{Name: "TraderJoe", Identifier: "traderjoe", Chain: ChainArbitrum, Enabled: true, Priority: 6, AvgLatencyMS: 100},
		{Name: "Zyberswap", Identifier: "zyberswap", Chain: ChainArbitrum, Enabled: true, Priority: 6, AvgLatencyMS: 100},
	}
}
