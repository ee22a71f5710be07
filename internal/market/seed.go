package market

import "crypto-tracker/internal/models"

// DefaultSeed is the table every session starts from.
func DefaultSeed() []Entry {
	return []Entry{
		seed("BTC", 43250.50, 2.5, "23.4B", "845B"),
		seed("ETH", 2650.25, -1.2, "12.8B", "318B"),
		seed("BNB", 310.75, 3.8, "1.2B", "47B"),
		seed("SOL", 98.40, 5.2, "2.1B", "42B"),
		seed("ADA", 0.485, -0.8, "520M", "17B"),
		seed("XRP", 0.52, 1.5, "1.8B", "28B"),
		seed("DOT", 7.25, 2.1, "180M", "9B"),
		seed("AVAX", 36.80, 4.3, "320M", "14B"),
		seed("LINK", 14.90, -2.1, "420M", "8B"),
		seed("MATIC", 0.85, 6.7, "310M", "8B"),
	}
}

func seed(symbol string, price, change float64, volume, marketCap string) Entry {
	return Entry{
		Symbol: symbol,
		Record: models.MarketRecord{
			Price:     price,
			Change:    change,
			Volume:    models.MustMagnitude(volume),
			MarketCap: models.MustMagnitude(marketCap),
		},
	}
}
