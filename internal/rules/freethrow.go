package rules

// FreeThrowSequence tracks one in-progress multi-attempt award.  It is
// ephemeral: it exists between foul award and sequence completion and
// is never persisted, because it is reconstructible from the award's
// Attempts and OneAndOne alone.  It deliberately carries no rules
// knowledge beyond the one-and-one short circuit.
type FreeThrowSequence struct {
	PlayerID       uint64 `json:"player_id"`
	TotalAttempts  int    `json:"total_attempts"`
	CurrentAttempt int    `json:"current_attempt"` // 1-based, the attempt about to be shot
	OneAndOne      bool   `json:"one_and_one"`
	Results        []bool `json:"results"`
}

// AttemptOutcome is what the sequencer reports after each attempt.
// ReboundLive is set when the sequence ends on a miss, meaning the
// ball is live and a rebound prompt should follow.
type AttemptOutcome struct {
	Done        bool
	ReboundLive bool
}

// NewFreeThrowSequence builds a sequence for the given shooter from a
// foul award.  Awards without free throws yield nil.
func NewFreeThrowSequence(playerID uint64, award Award) *FreeThrowSequence {
	if award.Attempts <= 0 {
		return nil
	}
	return &FreeThrowSequence{
		PlayerID:       playerID,
		TotalAttempts:  award.Attempts,
		CurrentAttempt: 1,
		OneAndOne:      award.OneAndOne,
		Results:        make([]bool, 0, award.Attempts),
	}
}

// Done reports whether every attempt the sequence will take has been
// recorded.
func (s *FreeThrowSequence) Done() bool {
	if len(s.Results) == s.TotalAttempts {
		return true
	}
	// A missed front end of a one-and-one ends the sequence early.
	return s.OneAndOne && len(s.Results) == 1 && !s.Results[0]
}

// ReportAttempt records the result of the current attempt and advances
// the sequence.  A missed first attempt of a one-and-one terminates
// immediately with a live rebound; otherwise the sequence runs until
// TotalAttempts and reports a live rebound when the final attempt
// missed.  Reporting on a finished sequence is a no-op that keeps
// signalling Done.
func (s *FreeThrowSequence) ReportAttempt(made bool) AttemptOutcome {
	if s.Done() {
		return AttemptOutcome{Done: true}
	}
	s.Results = append(s.Results, made)
	if s.OneAndOne && s.CurrentAttempt == 1 && !made {
		return AttemptOutcome{Done: true, ReboundLive: true}
	}
	if s.CurrentAttempt < s.TotalAttempts {
		s.CurrentAttempt++
		return AttemptOutcome{}
	}
	return AttemptOutcome{Done: true, ReboundLive: !made}
}
