package domain

// Emote is an entry of the reaction registry
type Emote struct {
	ID      string `json:"id"`
	Char    string `json:"char"`
	Premium bool   `json:"premium"`
	Locked  bool   `json:"locked"`
}

// Emotes is the fixed reaction registry
var Emotes = map[string]Emote{
	"heart":     {ID: "heart", Char: "❤️"},
	"laugh":     {ID: "laugh", Char: "😂"},
	"fire":      {ID: "fire", Char: "🔥"},
	"ghost":     {ID: "ghost", Char: "👻"},
	"ai":        {ID: "ai", Char: "🤖"},
	"thumbs_up": {ID: "thumbs_up", Char: "👍"},
	"clap":      {ID: "clap", Char: "👏"},
	"cry":       {ID: "cry", Char: "😭"},
	"rage":      {ID: "rage", Char: "😡"},
	"surprise":  {ID: "surprise", Char: "😮"},
	"party":     {ID: "party", Char: "🎉"},
	"skull":     {ID: "skull", Char: "💀"},
	"alien":     {ID: "alien", Char: "👽"},
	"rocket":    {ID: "rocket", Char: "🚀"},

	"human":      {ID: "human", Char: "👤", Premium: true, Locked: true},
	"custom_gif": {ID: "custom_gif", Char: "GIF", Premium: true, Locked: true},
}

// EmoteUsable reports whether id names a registered, unlocked emote
func EmoteUsable(id string) bool {
	e, ok := Emotes[id]
	return ok && !e.Locked
}

// AvatarNames labels the avatar slots
var AvatarNames = [AvatarSlots]string{
	"Beats", "Gentleman", "Baby", "Classy",
	"Cool", "King", "Dapper", "Wizard",
	"Nature", "Cozy", "Sheriff", "Chef",
}

// ValidAvatar reports whether id is an existing avatar slot
func ValidAvatar(id int) bool {
	return id >= 0 && id < AvatarSlots
}
