package roster

import "math/rand"

// traits is the pool personality sets are sampled from.
var traits = []string{
	"friendly", "caring", "lazy", "toxic", "daring", "introspective",
	"compassionate", "curious", "diplomatic", "ambitious", "cautious",
	"cheerful", "gloomy", "generous", "greedy", "honest", "deceitful",
	"brave", "cowardly", "patient", "impulsive", "humble", "arrogant",
	"loyal", "treacherous", "optimistic", "pessimistic", "disciplined",
	"reckless", "gentle", "ruthless", "sociable", "reclusive",
}

// polarOpposites maps each trait to the trait it cannot share a
// personality set with. Entries are symmetric.
var polarOpposites = map[string]string{
	"friendly":    "toxic",
	"toxic":       "friendly",
	"caring":      "ruthless",
	"ruthless":    "caring",
	"lazy":        "ambitious",
	"ambitious":   "lazy",
	"daring":      "cowardly",
	"cowardly":    "daring",
	"cheerful":    "gloomy",
	"gloomy":      "cheerful",
	"generous":    "greedy",
	"greedy":      "generous",
	"honest":      "deceitful",
	"deceitful":   "honest",
	"brave":       "cautious",
	"cautious":    "brave",
	"patient":     "impulsive",
	"impulsive":   "patient",
	"humble":      "arrogant",
	"arrogant":    "humble",
	"loyal":       "treacherous",
	"treacherous": "loyal",
	"optimistic":  "pessimistic",
	"pessimistic": "optimistic",
	"disciplined": "reckless",
	"reckless":    "disciplined",
	"sociable":    "reclusive",
	"reclusive":   "sociable",
}

const personalitySetSize = 5

// SamplePersonalities returns personalitySetSize distinct traits such
// that no two are polar opposites.
func SamplePersonalities(rng *rand.Rand) []string {
	shuffled := make([]string, len(traits))
	copy(shuffled, traits)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	picked := make([]string, 0, personalitySetSize)
	taken := make(map[string]bool, personalitySetSize)
	for _, trait := range shuffled {
		if taken[polarOpposites[trait]] {
			continue
		}
		picked = append(picked, trait)
		taken[trait] = true
		if len(picked) == personalitySetSize {
			break
		}
	}
	return picked
}
