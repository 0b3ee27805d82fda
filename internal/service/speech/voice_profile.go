package speech

import "strings"

// premadeVoices maps ElevenLabs premade voice names to their voice ids, so the
// configuration may name a voice instead of quoting its id.
var premadeVoices = map[string]string{
	"rachel": "21m00Tcm4TlvDq8ikWAM",
	"domi":   "AZnzlk1XvdvUeBnXmlld",
	"bella":  "EXAVITQu4vr4xnSDxMaL",
	"antoni": "ErXwobaYiN019PkySvjV",
	"elli":   "MF3mGyEYCl7XYWbV9V6O",
	"josh":   "TxGEqnHWrfWFTfGW9XjX",
	"arnold": "VR6AewLTigWG4xSOukaG",
	"adam":   "pNInz6obpgDQGcFmaJgB",
	"sam":    "yoZ06aMxZJJ28mfd3POQ",
}

// NormalizeVoiceAlias resolves a premade voice name to its id. Anything else is
// assumed to already be a voice id and is returned trimmed.
func NormalizeVoiceAlias(alias string) string {
	trimmed := strings.TrimSpace(alias)
	if id, ok := premadeVoices[strings.ToLower(trimmed)]; ok {
		return id
	}
	return trimmed
}
