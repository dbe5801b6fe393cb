// Package legacy keeps the original single-group balance check alive for
// callers that predate structured encounter documents. It is a thin shim
// over the shared calculator and owns no tables or policy of its own.
package legacy

import (
	"github.com/panverse/rules-agent/internal/balance"
	"github.com/panverse/rules-agent/internal/models"
	"github.com/panverse/rules-agent/internal/rules"
)

// Checker answers the old-style question "is N monsters of this challenge
// rating fair for this party" using the active rule snapshot's tables.
type Checker struct {
	store *rules.Store
}

func NewChecker(store *rules.Store) *Checker {
	return &Checker{store: store}
}

// CheckEncounterBalance assesses one homogeneous monster group against the
// party. All table lookups and scoring go through the shared calculator, so
// the answer always matches a full encounter validation of the same data.
func (c *Checker) CheckEncounterBalance(partyLevel, partySize int, challengeRating string, count int) (balance.Assessment, error) {
	def, err := c.store.Current().Get(models.CategoryEncounter)
	if err != nil {
		return balance.Assessment{}, err
	}
	if def.Balance == nil {
		return balance.Assessment{}, models.ConfigErrorf("encounter rules carry no balance tables")
	}
	return balance.Calculate(def.Balance, partyLevel, partySize, []balance.MonsterGroup{
		{ChallengeRating: challengeRating, Count: count},
	})
}
