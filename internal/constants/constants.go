package constants

import "time"

// Redis keys
const (
	RedisKeyQuotePrefix     = "quote:"
	RedisKeyRecentSnapshots = "pools:recent"
)

// Redis Pub/Sub channels
const (
	PubSubChannelSnapshots = "pools:snapshots"
)

// Limits
const (
	MaxRecentSnapshots = 100
	MaxPoolsPerRequest = 50
)

// Timeouts
const (
	SnapshotSinkTimeout = 5 * time.Second
)

// Meteora program addresses
var ProgramAddresses = map[string]string{
	"DynamicAMM": "Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB",
	"DLMM":       "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo",
}

// Token mint addresses to symbols
var TokenSymbols = map[string]string{
	"So11111111111111111111111111111111111111112":  "SOL",
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "USDT",
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So":  "mSOL",
	"7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs": "ETH",
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": "BONK",
	"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN":  "JUP",
}

// TokenLabel maps a mint to its symbol, or a shortened mint when unknown.
func TokenLabel(mint string) string {
	if symbol, ok := TokenSymbols[mint]; ok {
		return symbol
	}
	if len(mint) > 8 {
		return mint[:4] + "..." + mint[len(mint)-4:]
	}
	return mint
}
