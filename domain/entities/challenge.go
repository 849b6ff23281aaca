package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChallengeStatus represents the lifecycle status of a challenge
type ChallengeStatus string

const (
	ChallengeStatusNegotiating  ChallengeStatus = "negotiating"
	ChallengeStatusCounterOffer ChallengeStatus = "counter_offer"
	ChallengeStatusAccepted     ChallengeStatus = "accepted"
	ChallengeStatusCompleted    ChallengeStatus = "completed"
	ChallengeStatusVoided       ChallengeStatus = "voided"
	ChallengeStatusDeclined     ChallengeStatus = "declined"
)

// IsTerminal returns true once no further mutation is allowed
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeStatusCompleted || s == ChallengeStatusVoided || s == ChallengeStatusDeclined
}

// IsNegotiating returns true while the challenge is awaiting a response
func (s ChallengeStatus) IsNegotiating() bool {
	return s == ChallengeStatusNegotiating || s == ChallengeStatusCounterOffer
}

// TurnState records whose action a challenge is waiting on
type TurnState string

const (
	TurnAwaitingChallenger TurnState = "awaiting_challenger"
	TurnAwaitingChallenged TurnState = "awaiting_challenged"
	TurnAccepted           TurnState = "accepted"
	TurnClosed             TurnState = "closed"
)

// ResultStatus tracks result reporting progress on an accepted challenge
type ResultStatus string

const (
	ResultStatusAwaitingFirstReport  ResultStatus = "awaiting_first_report"
	ResultStatusAwaitingSecondReport ResultStatus = "awaiting_second_report"
	ResultStatusDisputedRetry        ResultStatus = "disputed_retry"
	ResultStatusAgreed               ResultStatus = "agreed"
	ResultStatusDisputedVoid         ResultStatus = "disputed_void"
)

// MaxDisputes is the number of mismatched report pairs that voids a challenge
const MaxDisputes = 2

// Challenge represents a two-party wager from first offer to settlement
type Challenge struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	ChallengerID     uuid.UUID       `db:"challenger_id" json:"challengerId"`
	ChallengedID     uuid.UUID       `db:"challenged_id" json:"challengedId"`
	GameType         GameType        `db:"game_type" json:"gameType"`
	StakeAmount      decimal.Decimal `db:"stake_amount" json:"stakeAmount"`
	ChallengerOdds   int             `db:"challenger_odds" json:"challengerOdds"`
	ChallengedOdds   *int            `db:"challenged_odds" json:"challengedOdds,omitempty"`
	Status           ChallengeStatus `db:"status" json:"status"`
	Turn             TurnState       `db:"turn" json:"turn"`
	ChallengerEscrow decimal.Decimal `db:"challenger_escrow" json:"challengerEscrow"`
	ChallengerResult *uuid.UUID      `db:"challenger_result" json:"challengerResult,omitempty"`
	ChallengedResult *uuid.UUID      `db:"challenged_result" json:"challengedResult,omitempty"`
	ResultStatus     *ResultStatus   `db:"result_status" json:"resultStatus,omitempty"`
	DisputeCount     int             `db:"dispute_count" json:"disputeCount"`
	FinalWinnerID    *uuid.UUID      `db:"final_winner_id" json:"finalWinnerId,omitempty"`
	Version          int             `db:"version" json:"version"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
	AcceptedAt       *time.Time      `db:"accepted_at" json:"acceptedAt,omitempty"`
	CompletedAt      *time.Time      `db:"completed_at" json:"completedAt,omitempty"`
}

// IsParticipant returns true if the user is one of the two parties
func (c *Challenge) IsParticipant(userID uuid.UUID) bool {
	return c.ChallengerID == userID || c.ChallengedID == userID
}

// GetOpponent returns the other party, or uuid.Nil for a non-participant
func (c *Challenge) GetOpponent(userID uuid.UUID) uuid.UUID {
	switch userID {
	case c.ChallengerID:
		return c.ChallengedID
	case c.ChallengedID:
		return c.ChallengerID
	}
	return uuid.Nil
}

// IsTerminal returns true once the challenge is completed, voided or declined
func (c *Challenge) IsTerminal() bool {
	return c.Status.IsTerminal()
}

// CurrentResponderID returns the party whose response is awaited during negotiation
func (c *Challenge) CurrentResponderID() (uuid.UUID, bool) {
	switch c.Turn {
	case TurnAwaitingChallenger:
		return c.ChallengerID, true
	case TurnAwaitingChallenged:
		return c.ChallengedID, true
	}
	return uuid.Nil, false
}

// IsResponder returns true if it is the user's turn to negotiate
func (c *Challenge) IsResponder(userID uuid.UUID) bool {
	responder, ok := c.CurrentResponderID()
	return ok && responder == userID
}

// TurnAfter returns the turn that hands the negotiation to the actor's opponent
func (c *Challenge) TurnAfter(actorID uuid.UUID) TurnState {
	if actorID == c.ChallengerID {
		return TurnAwaitingChallenged
	}
	return TurnAwaitingChallenger
}

// OddsFor returns the quoted odds for one party
func (c *Challenge) OddsFor(userID uuid.UUID) (int, bool) {
	switch userID {
	case c.ChallengerID:
		return c.ChallengerOdds, true
	case c.ChallengedID:
		if c.ChallengedOdds == nil {
			return 0, false
		}
		return *c.ChallengedOdds, true
	}
	return 0, false
}

// ReportOf returns the winner a party reported, if any
func (c *Challenge) ReportOf(userID uuid.UUID) *uuid.UUID {
	switch userID {
	case c.ChallengerID:
		return c.ChallengerResult
	case c.ChallengedID:
		return c.ChallengedResult
	}
	return nil
}

// SetReport stores a party's reported winner
func (c *Challenge) SetReport(userID, winnerID uuid.UUID) {
	w := winnerID
	switch userID {
	case c.ChallengerID:
		c.ChallengerResult = &w
	case c.ChallengedID:
		c.ChallengedResult = &w
	}
}

// ClearReports removes both reported results
func (c *Challenge) ClearReports() {
	c.ChallengerResult = nil
	c.ChallengedResult = nil
}

// BothReported returns true when each party has submitted a result
func (c *Challenge) BothReported() bool {
	return c.ChallengerResult != nil && c.ChallengedResult != nil
}

// AgreedWinner returns the winner both parties reported, or false on a mismatch
func (c *Challenge) AgreedWinner() (uuid.UUID, bool) {
	if !c.BothReported() || *c.ChallengerResult != *c.ChallengedResult {
		return uuid.Nil, false
	}
	return *c.ChallengerResult, true
}

// SetResultStatus sets the result status
func (c *Challenge) SetResultStatus(rs ResultStatus) {
	c.ResultStatus = &rs
}

// ResultStatusValue returns the result status or an empty value when unset
func (c *Challenge) ResultStatusValue() ResultStatus {
	if c.ResultStatus == nil {
		return ""
	}
	return *c.ResultStatus
}
