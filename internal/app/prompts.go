package app

import (
	"math/rand"
	"slices"
)

// Theme is a named prompt pool
type Theme struct {
	ID      string
	Name    string
	Prompts []string
}

// Themes are the built-in prompt pools
var Themes = map[string]Theme{
	"classic": {
		ID:   "classic",
		Name: "Classic Party",
		Prompts: []string{
			// Debates
			"Is a hotdog a sandwich? Defend your answer.",
			"What is the correct way to hang toilet paper?",
			"Does pineapple belong on pizza?",
			"Is cereal a soup? Explain.",
			"What is the worst font in existence?",
			"Cats vs Dogs: Who would win in a legal battle?",
			"Is it okay to wear socks with sandals?",
			"How many five-year-olds could you fight at once?",

			// Scenarios
			"What is the worst thing to bring to a funeral?",
			"Invent a useless superpower.",
			"What is the title of your autobiography?",
			"Describe the smell of a locker room in 3 words.",
			"What is the worst possible first date location?",
			"If you were a ghost, who would you haunt first?",
			"What is the weirdest thing you can buy for $1?",
			"Name a new Ben & Jerry's flavor that would taste terrible.",
			"What is the worst advice you've ever received?",

			// Personal
			"What is your red flag?",
			"What is a conspiracy theory you actually believe?",
			"What is the most embarrassing fashion trend you participated in?",
			"What is your 'Roman Empire' (thing you think about daily)?",
			"Explain the internet to a pilgrim.",
			"What is the pettiest reason you broke up with someone?",
			"What is the adult equivalent of 'The floor is lava'?",

			// Weird
			"If animals could talk, which one would be the rudest?",
			"What object in this room would be the best weapon in a zombie apocalypse?",
			"What is the meaning of life (wrong answers only)?",
			"If you could delete one state/country, which one?",
			"What is the worst thing to whisper in an elevator?",
			"Create a new holiday. What do we celebrate?",
			"What is the worst pizza topping imaginable?",
		},
	},
	"viral": {
		ID:   "viral",
		Name: "Chronically Online",
		Prompts: []string{
			"What's a major red flag in a bio?",
			"Write a clickbait title for a mundane activity.",
			"Why did you get cancelled?",
			"Explain why this image goes hard.",
			"Best reply to a hater?",
			"What's the tea today?",
			"Roast the person below you.",
		},
	},
	"academia": {
		ID:   "academia",
		Name: "Academia",
		Prompts: []string{
			"Describe the feeling of ennui.",
			"What secret is the library hiding?",
			"A title for your forbidden memoir.",
			"Why was the manuscript burned?",
			"Whisper a truth to the void.",
			"What haunts this manor?",
			"The last words of a forgotten king.",
		},
	},
	"cyberpunk": {
		ID:   "cyberpunk",
		Name: "Cyberpunk",
		Prompts: []string{
			"Hack the mainframe. Password is:",
			"Your last thought before the upload completes.",
			"Why is the AI smiling?",
			"Error 404: ___ not found.",
			"A message to the resistance.",
			"What defines 'real'?",
			"Protocol Omega initiated. Reason:",
		},
	},
}

// autofillTexts stand in for players who never submitted
var autofillTexts = []string{"Time out!", "Glitch in the matrix...", "..."}

// PickPrompt returns a random prompt from pool that is not in used, along
// with the updated used set. Once every prompt has been used the set is
// emptied and the pick starts over.
func PickPrompt(rng *rand.Rand, pool, used []string) (string, []string) {
	if len(pool) == 0 {
		return "", used
	}

	available := make([]string, 0, len(pool))
	for _, p := range pool {
		if !slices.Contains(used, p) {
			available = append(available, p)
		}
	}
	if len(available) == 0 {
		used = []string{}
		available = pool
	}

	prompt := available[rng.Intn(len(available))]
	return prompt, append(used, prompt)
}
