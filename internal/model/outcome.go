package model

import (
	"database/sql/driver"
	"fmt"
)

// Outcome is the verdict on one answer submission.
type Outcome uint8

const (
	// OutcomePending marks a ledger entry that has not been judged yet.
	OutcomePending Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
	OutcomeDuplicate
	OutcomeNoAttemptsLeft
	OutcomeAlreadySolved
)

var outcomeNames = [...]string{
	OutcomePending:        "pending",
	OutcomeCorrect:        "correct",
	OutcomeIncorrect:      "incorrect",
	OutcomeDuplicate:      "duplicate",
	OutcomeNoAttemptsLeft: "no_attempts",
	OutcomeAlreadySolved:  "solved",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

func ParseOutcome(s string) (Outcome, error) {
	for i, name := range outcomeNames {
		if name == s {
			return Outcome(i), nil
		}
	}
	return OutcomePending, fmt.Errorf("unknown outcome %q", s)
}

// Recorded reports whether a submission with this outcome is written to the
// attempt ledger. Rejections before evaluation leave no entry.
func (o Outcome) Recorded() bool {
	switch o {
	case OutcomeCorrect, OutcomeIncorrect:
		return true
	case OutcomePending, OutcomeDuplicate, OutcomeNoAttemptsLeft, OutcomeAlreadySolved:
		return false
	}
	return false
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

func (o Outcome) Value() (driver.Value, error) {
	return o.String(), nil
}

func (o *Outcome) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return o.UnmarshalText([]byte(v))
	case []byte:
		return o.UnmarshalText(v)
	case nil:
		*o = OutcomePending
		return nil
	}
	return fmt.Errorf("cannot scan %T into Outcome", src)
}
