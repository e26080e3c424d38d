package services

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"dailyrewards/internal/models"

	"github.com/mroth/weightedrand/v2"
)

// ServiceRandomizer resolves a slot's pool to a concrete reward. The draw is
// weighted but seeded from (user_id, day), so re-evaluating after a crashed
// or retried request yields the identical reward every time. The user must
// never see two different "revealed" rewards for the same day.
type ServiceRandomizer struct{}

func NewServiceRandomizer() *ServiceRandomizer {
	return &ServiceRandomizer{}
}

func (service *ServiceRandomizer) Resolve(userID int64, day time.Time, pool models.RewardPool) (models.RewardDefinition, error) {
	if len(pool.Options) == 0 {
		return models.RewardDefinition{}, ErrEmptyRewardPool
	}

	choices := make([]weightedrand.Choice[int, int], 0, len(pool.Options))
	for i, option := range pool.Options {
		choices = append(choices, weightedrand.NewChoice(i, option.Weight))
	}

	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return models.RewardDefinition{}, err
	}

	hash := fnv.New64a()
	fmt.Fprintf(hash, "%d:%s", userID, DateUTC(day).Format("2006-01-02"))
	source := rand.New(rand.NewSource(int64(hash.Sum64())))

	reward := pool.Options[chooser.PickSource(source)]
	reward.Weight = 0
	return reward, nil
}
