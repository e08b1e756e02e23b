package audio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitShortTextStaysWhole(t *testing.T) {
	chunks := splitIntoChunks("teks pendek saja", 100, 16)
	require.Equal(t, []string{"teks pendek saja"}, chunks)
}

func TestSplitAtSentenceBoundaries(t *testing.T) {
	text := "Kalimat pertama. Kalimat kedua! Kalimat ketiga?"
	chunks := splitIntoChunks(text, 20, 16)

	require.Equal(t, []string{"Kalimat pertama.", "Kalimat kedua!", "Kalimat ketiga?"}, chunks)
}

func TestSplitPacksSentencesUpToMax(t *testing.T) {
	text := "Satu. Dua. Tiga. Empat. Lima. Enam. Tujuh. Delapan. Sembilan. Sepuluh. Sebelas. Dua belas."
	chunks := splitIntoChunks(text, 30, 16)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		require.LessOrEqual(t, len(c), 30)
	}
	require.Equal(t, text, strings.Join(chunks, " "))
}

func TestSplitLongSentenceStaysWhole(t *testing.T) {
	long := "kalimat yang sangat panjang tanpa tanda baca sama sekali dan terus berjalan"
	chunks := splitIntoChunks(long+". Pendek.", 30, 16)

	require.Equal(t, long+".", chunks[0])
}

func TestSplitRespectsMaxChunks(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("Kalimat cukup panjang nomor sekian. ")
	}
	chunks := splitIntoChunks(sb.String(), 40, 8)
	require.LessOrEqual(t, len(chunks), 8)
}
