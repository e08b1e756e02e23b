package safety

import "strings"

// Tier is a crisis severity tier. Higher values are more severe.
type Tier int

const (
	TierGreen Tier = iota
	TierYellow
	TierOrange
	TierRed
)

func (t Tier) String() string {
	switch t {
	case TierRed:
		return "red"
	case TierOrange:
		return "orange"
	case TierYellow:
		return "yellow"
	default:
		return "green"
	}
}

// redKeywords are explicit suicide/self-harm phrases, Indonesian and English.
var redKeywords = []string{
	"ingin mati", "bunuh diri", "mengakhiri hidup", "tidak ingin hidup lagi",
	"suicide", "kill myself", "end my life", "want to die",
	"menyerah total", "tak sanggup bertahan", "lebih baik mati", "life is pointless",
	"ingin mengakhiri semuanya", "tidak mau hidup", "hidup tak berarti", "mati saja",
	"tidak ada gunanya hidup", "suicidal thoughts", "death wish", "better off dead",
	"no reason to live", "can't go on anymore",
	"melukai diri", "menyakiti diri", "cutting", "self harm",
	"memotong", "menyilet", "hurt myself", "mencederai tubuh",
	"self-injury", "merusak diri", "menyayat", "menggores kulit",
	"membakar diri", "menyiksa diri", "melukai tubuh sendiri", "self-mutilation",
	"burning myself", "hitting myself", "harming my body",
}

// orangeKeywords signal hopelessness without an explicit plan.
var orangeKeywords = []string{
	"tidak tahan lagi", "putus asa", "hopeless", "tidak ada harapan",
	"lelah hidup", "tired of living", "give up", "kehilangan arah",
	"merasa hampa", "meaningless", "tidak berguna", "hidup terasa berat",
	"tidak ada jalan keluar", "semua sia-sia", "tertekan berat",
	"tidak berdaya", "overwhelmed", "no way out", "life is too hard",
	"can't see a future", "everything is pointless",
}

// yellowKeywords are ordinary distress markers worth monitoring.
var yellowKeywords = []string{
	"sedih", "terpuruk", "depresi", "depressed",
	"cemas", "anxious", "khawatir", "takut", "nervous",
	"stres", "stressed", "kesepian", "lonely",
	"marah", "kesal", "frustrated", "bingung", "confused",
	"menangis", "tidak bisa tidur", "can't sleep", "gelisah",
}

// Classify scans text for the embedded crisis keywords and returns the
// highest-priority tier with a match, or TierGreen when nothing matches.
// Matching is case-insensitive substring matching; the keyword lists are
// fixed at build time. Paraphrased distress that avoids every keyword is a
// known false negative of this heuristic.
func Classify(text string) Tier {
	lowered := strings.ToLower(text)

	for _, kw := range redKeywords {
		if strings.Contains(lowered, kw) {
			return TierRed
		}
	}
	for _, kw := range orangeKeywords {
		if strings.Contains(lowered, kw) {
			return TierOrange
		}
	}
	for _, kw := range yellowKeywords {
		if strings.Contains(lowered, kw) {
			return TierYellow
		}
	}
	return TierGreen
}
