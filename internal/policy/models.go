package policy

// Settings is a user's family-monitoring configuration.
// A missing row (nil *Settings) means the user is unrestricted.
//
// Settings are read fresh on every evaluation; guardians can change them
// between calls, so nothing here may be cached.
type Settings struct {
	UserID           string `json:"user_id" db:"user_id"`
	Tier             Tier   `json:"tier" db:"tier"`
	AllowVideo       bool   `json:"allow_video" db:"allow_video"`
	AllowScreenShare bool   `json:"allow_screen_share" db:"allow_screen_share"`
}

type Tier string

const (
	TierOpen     Tier = "open"
	TierModerate Tier = "moderate"
	// TierStrict forces voice-only regardless of the per-capability flags.
	TierStrict Tier = "strict"
)

// Request is what the participant asked for.
type Request struct {
	Video       bool
	ScreenShare bool
}

// Capabilities is the effective grant. Audio is always true: a participant
// admitted to a room can always speak.
type Capabilities struct {
	Audio       bool `json:"audio"`
	Video       bool `json:"video"`
	ScreenShare bool `json:"screen_share"`
}
