package domain

// TTSSettings controls how announcement text is synthesized.
type TTSSettings struct {
	Language       string            `json:"language"`
	Accent         string            `json:"accent"` // translate TLD, e.g. "co.uk"
	Speed          float64           `json:"speed"`  // 0.5 .. 2.0, <0.8 synthesizes slow
	WarningWindow  int               `json:"warning_time"`
	NumberToWords  bool              `json:"number_to_words"`
	Pronunciations map[string]string `json:"custom_pronunciations,omitempty"`
}

// Slow reports whether the configured speed calls for the backend's slow
// synthesis mode. The translate endpoint only has two speeds, so anything
// below 0.8 maps to slow and everything else to normal.
func (t TTSSettings) Slow() bool {
	return t.Speed < 0.8
}

// Settings is the per-destination announcement configuration.
type Settings struct {
	Volume float64     `json:"volume"` // 0.0 .. 1.0
	TTS    TTSSettings `json:"tts_settings"`
}

// Clamp bounds enforced on settings values.
const (
	MinSpeed         = 0.5
	MaxSpeed         = 2.0
	MaxWarningWindow = 60
	DefaultWarning   = 30
)

// DefaultSettings returns the settings a fresh destination starts with.
func DefaultSettings() Settings {
	return Settings{
		Volume: 1.0,
		TTS: TTSSettings{
			Language:      "en",
			Accent:        "us",
			Speed:         1.0,
			WarningWindow: DefaultWarning,
			NumberToWords: true,
		},
	}
}

// voicePairs maps valid language+accent combinations to display names.
// The accent is the translate service TLD, so not every cross product is
// meaningful.
var voicePairs = map[string]map[string]string{
	"en": {
		"com.au": "English (Australia)",
		"co.uk":  "English (United Kingdom)",
		"us":     "English (United States)",
		"ca":     "English (Canada)",
		"co.in":  "English (India)",
		"ie":     "English (Ireland)",
		"co.za":  "English (South Africa)",
		"com.ng": "English (Nigeria)",
	},
	"fr": {
		"ca": "French (Canada)",
		"fr": "French (France)",
	},
	"zh-CN": {"com": "Mandarin (China Mainland)"},
	"zh-TW": {"com": "Mandarin (Taiwan)"},
	"pt": {
		"com.br": "Portuguese (Brazil)",
		"pt":     "Portuguese (Portugal)",
	},
	"es": {
		"com.mx": "Spanish (Mexico)",
		"es":     "Spanish (Spain)",
		"us":     "Spanish (United States)",
	},
}

// ValidVoicePair reports whether the language+accent combination is supported
// and returns its display name.
func ValidVoicePair(language, accent string) (string, bool) {
	accents, ok := voicePairs[language]
	if !ok {
		return "", false
	}
	name, ok := accents[accent]
	return name, ok
}

// VoiceLanguages returns the supported language codes, unsorted.
func VoiceLanguages() []string {
	out := make([]string, 0, len(voicePairs))
	for lang := range voicePairs {
		out = append(out, lang)
	}
	return out
}
