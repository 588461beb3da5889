package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outcome labels stored on redeemed tickets and returned to spinners.
const (
	// OutcomeTryAgain is the no-win outcome label.
	OutcomeTryAgain = "Try Again"
	// OutcomeGrandPrizeContestant marks entry into the grand-prize draw pool.
	OutcomeGrandPrizeContestant = "Grand Prize Contestant"
)

// Ticket represents one printed ticket code and its single spin. A ticket is
// created unredeemed; redemption fills in the spin fields exactly once.
type Ticket struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code                   string             `bson:"code" json:"code"`
	Redeemed               bool               `bson:"redeemed" json:"redeemed"`
	Outcome                string             `bson:"outcome,omitempty" json:"outcome,omitempty"`
	SpinNumber             int                `bson:"spinNumber,omitempty" json:"spinNumber,omitempty"`
	IsGrandPrizeContestant bool               `bson:"isGrandPrizeContestant" json:"isGrandPrizeContestant"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}
