package engine

// Config holds the trade prices and evaluation limits.
type Config struct {
	RawRate      int // price of one raw material from a neighbor (default 2)
	GoodsRate    int // price of one manufactured good (default 2)
	DiscountRate int // price once a discount applies (default 1)
	Workers      int // concurrent evaluations in EvaluateHand (default 4)
}

func DefaultConfig() Config {
	return Config{
		RawRate:      2,
		GoodsRate:    2,
		DiscountRate: 1,
		Workers:      4,
	}
}
