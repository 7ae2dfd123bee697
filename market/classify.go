package market

// Session tells whether the aggressor came from the feed (regular) or had to be
// inferred against the order book (after hours, or simply unknown to the feed).
type Session int

const (
	SessionRegular Session = iota
	SessionAfterHours
)

func (s Session) String() string {
	if s == SessionAfterHours {
		return "after-hours"
	}
	return "regular"
}

type Aggressor int

const (
	AggressorUnknown Aggressor = iota
	AggressorBuyer
	AggressorSeller
)

func (a Aggressor) String() string {
	switch a {
	case AggressorBuyer:
		return "buyer"
	case AggressorSeller:
		return "seller"
	}
	return "unknown"
}

// Bucket is one of the five flattened volume buckets used in reports.
type Bucket int

const (
	BucketBuy Bucket = iota
	BucketSell
	BucketAfterHourBuy
	BucketAfterHourSell
	BucketAfterHourUnknown
)

type Classification struct {
	Session   Session
	Aggressor Aggressor
}

func (c Classification) Bucket() Bucket {
	if c.Session == SessionRegular {
		if c.Aggressor == AggressorSeller {
			return BucketSell
		}
		return BucketBuy
	}
	switch c.Aggressor {
	case AggressorBuyer:
		return BucketAfterHourBuy
	case AggressorSeller:
		return BucketAfterHourSell
	}
	return BucketAfterHourUnknown
}

// Classify resolves the aggressor of a trade. Trades the feed marked bu/sd keep
// that side. Anything else is compared against the reference book: at or above
// the best ask is a buyer, at or below the best bid is a seller, strictly inside
// the spread is unknown. The ask test runs first, so on a crossed book a price
// satisfying both lands on the buy side.
func Classify(t Trade, book OrderBook) Classification {
	switch t.Side {
	case SideBuy:
		return Classification{SessionRegular, AggressorBuyer}
	case SideSell:
		return Classification{SessionRegular, AggressorSeller}
	}
	c := Classification{Session: SessionAfterHours}
	switch {
	case t.Price.GreaterThanOrEqual(book.Ask1.Price):
		c.Aggressor = AggressorBuyer
	case t.Price.LessThanOrEqual(book.Bid1.Price):
		c.Aggressor = AggressorSeller
	}
	return c
}
