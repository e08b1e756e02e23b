package safety

// Resources is the static emergency contact and referral list returned by
// the crisis-resources endpoint and attached to degraded responses.
type Resources struct {
	EmergencyContacts     map[string]string `json:"emergency_contacts"`
	ProfessionalResources map[string]string `json:"professional_resources"`
	OnlineResources       []string          `json:"online_resources"`
}

// CrisisResources returns the fixed Indonesian crisis resource list.
func CrisisResources() Resources {
	return Resources{
		EmergencyContacts: map[string]string{
			"suicide_prevention":   "119",
			"medical_emergency":    "118",
			"police":               "110",
			"mental_health_crisis": "500-454",
			"women_crisis":         "021-7270005",
			"child_protection":     "129",
		},
		ProfessionalResources: map[string]string{
			"psychiatrist":     "Dokter Spesialis Jiwa",
			"psychologist":     "Psikolog Klinis",
			"counselor":        "Konselor Berlisensi",
			"community_health": "Puskesmas",
		},
		OnlineResources: []string{
			"https://www.sehatjiwa.id",
			"https://www.halodoc.com (Konsultasi Online)",
			"https://www.alodokter.com (Psikologi Online)",
		},
	}
}

// EscalationNotice returns the emergency footer appended to RED and ORANGE
// responses. Lower tiers get no footer.
func EscalationNotice(tier Tier) string {
	switch tier {
	case TierRed:
		return "\n\n⚠️ PENTING - BANTUAN DARURAT:\n" +
			"🚨 Hubungi segera: 119 (Pencegahan Bunuh Diri)\n" +
			"🏥 Atau: 118 (Gawat Darurat)\n" +
			"👮 Jika dalam bahaya: 110 (Polisi)\n\n" +
			"💙 Anda tidak sendirian. Bantuan tersedia 24/7."
	case TierOrange:
		return "\n\n⚠️ PENTING - BANTUAN DARURAT:\n" +
			"📞 Hubungi: 500-454 (Crisis Mental Health)\n" +
			"🆘 Atau: 119 (Pencegahan Bunuh Diri)\n\n" +
			"💙 Anda tidak sendirian. Bantuan tersedia 24/7."
	default:
		return ""
	}
}
