package services

import "errors"

// Validation errors: rejected synchronously with no state change, safe to
// retry with corrected input.
var (
	ErrBadAmount         = errors.New("bid amount must be positive")
	ErrBelowFloor        = errors.New("bid is below the player's floor price")
	ErrDuplicateAmount   = errors.New("team already has an active bid at this amount in this round")
	ErrTooManyBids       = errors.New("team has reached the bid limit for this round")
	ErrExtensionTooShort = errors.New("extension is below the configured minimum")
	ErrRaiseTooLow       = errors.New("raise must exceed the tied amount")
	ErrCategoryMismatch  = errors.New("player does not belong to the round's category")
)

// Conflict errors: rejected synchronously; the caller should refresh state
// before retrying.
var (
	ErrRoundNotOpen        = errors.New("round is not open")
	ErrRoundClosed         = errors.New("round is closed to bid mutation")
	ErrInsufficientBudget  = errors.New("insufficient budget remaining")
	ErrOverdraft           = errors.New("debit would overdraw the budget")
	ErrNoActiveBid         = errors.New("no active bid to withdraw")
	ErrCategoryRoundOpen   = errors.New("category already has an open round")
	ErrNotParticipant      = errors.New("team is not a participant in this tiebreaker")
	ErrAlreadyRaised       = errors.New("participant already submitted their one raise")
	ErrAlreadyConceded     = errors.New("participant already conceded")
	ErrTiebreakerNotActive = errors.New("tiebreaker is not active")
	ErrPlayerNotAvailable  = errors.New("player is not available for bidding")
	ErrEmailTaken          = errors.New("a team with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

var validationErrors = []error{
	ErrBadAmount, ErrBelowFloor, ErrDuplicateAmount, ErrTooManyBids,
	ErrExtensionTooShort, ErrRaiseTooLow, ErrCategoryMismatch,
}

var conflictErrors = []error{
	ErrRoundNotOpen, ErrRoundClosed, ErrInsufficientBudget, ErrOverdraft,
	ErrNoActiveBid, ErrCategoryRoundOpen, ErrNotParticipant, ErrAlreadyRaised,
	ErrAlreadyConceded, ErrTiebreakerNotActive, ErrPlayerNotAvailable,
	ErrEmailTaken,
}

// IsValidation reports whether err belongs to the validation taxonomy
func IsValidation(err error) bool {
	return matchesAny(err, validationErrors)
}

// IsConflict reports whether err belongs to the conflict taxonomy
func IsConflict(err error) bool {
	return matchesAny(err, conflictErrors)
}

func matchesAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
