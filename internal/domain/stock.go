package domain

// Category classifies a tracked stock.
type Category string

const (
	CategoryGrowth   Category = "Growth"
	CategoryDividend Category = "Dividend"
)

// String returns the string representation of Category.
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is a valid value.
func (c Category) IsValid() bool {
	return c == CategoryGrowth || c == CategoryDividend
}

// DCF holds per-share valuation ranges as "low-high" strings.
type DCF struct {
	Conservative string `json:"conservative" validate:"required,dcfrange"`
	Base         string `json:"base" validate:"required,dcfrange"`
	Aggressive   string `json:"aggressive" validate:"required,dcfrange"`
}

// SourceDetails carries auxiliary provenance for an entry. It is
// informational only: never part of identity or merge precedence.
type SourceDetails struct {
	ChannelID      string   `json:"channelId"`
	FirstMentioned string   `json:"firstMentioned"`
	Videos         []string `json:"videos"`
	IsBought       bool     `json:"isBought"`
	AddedOn        string   `json:"addedOn"`
}

// StockEntry is one row of the registry: a (ticker, source) combination
// with its valuation fields. Corresponds to one element of stocks.json
// and one row of the stock_entries table in PostgreSQL.
type StockEntry struct {
	Category        Category       `json:"category" validate:"required,oneof=Growth Dividend"`
	Ticker          string         `json:"ticker" validate:"required"`
	Name            string         `json:"name"`
	Price           float64        `json:"price"`
	InitialPrice    *float64       `json:"initialPrice"`              // write-once, preserved across merges
	RecommendedDate string         `json:"recommendedDate,omitempty"` // immutable once set
	DCF             DCF            `json:"dcf"`
	FCFQuality      int            `json:"fcfQuality" validate:"min=1,max=5"`
	ROICStrength    int            `json:"roicStrength" validate:"min=1,max=5"`
	RevenueDurable  int            `json:"revenueDurability" validate:"min=1,max=5"`
	BalanceSheet    int            `json:"balanceSheetStrength" validate:"min=1,max=5"`
	InsiderActivity int            `json:"insiderActivity" validate:"min=1,max=5"`
	ValueRank       int            `json:"valueRank" validate:"min=1,max=5"`
	ExpectedReturn  int            `json:"expectedReturn" validate:"min=1,max=5"`
	LastUpdated     string         `json:"lastUpdated"`
	Source          string         `json:"source"`
	SourceDetails   *SourceDetails `json:"sourceDetails,omitempty"`
}

// Key returns the entry's identity key.
func (e *StockEntry) Key() Key {
	return NewKey(e.Ticker, e.Source)
}

// HasInitialPrice reports whether initialPrice holds a usable number.
func (e *StockEntry) HasInitialPrice() bool {
	return e.InitialPrice != nil && *e.InitialPrice > 0
}
