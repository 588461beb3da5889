package models

// PrizeInventoryRecord tracks the stock of one named prize within one spin
// range. Remaining only ever decreases, one unit per winning spin, and never
// below zero.
type PrizeInventoryRecord struct {
	Name       string `bson:"name" json:"name"`
	RangeStart int    `bson:"rangeStart" json:"rangeStart"`
	RangeEnd   int    `bson:"rangeEnd" json:"rangeEnd"`
	TotalCount int    `bson:"totalCount" json:"totalCount"`
	Remaining  int    `bson:"remaining" json:"remaining"`
}

// InventoryDelta is an intended decrement of one prize record, produced by the
// allocation engine and applied by the store inside the redemption transaction.
type InventoryDelta struct {
	PrizeName  string
	RangeStart int
	Decrement  int
}
