package tts

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/matchcaller/matchcaller/internal/domain"
)

var onesWords = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven",
	"eight", "nine", "ten", "eleven", "twelve", "thirteen", "fourteen",
	"fifteen", "sixteen", "seventeen", "eighteen", "nineteen",
}

var tensWords = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy",
	"eighty", "ninety",
}

// numberToWords spells out 0..99. Numbers outside that range are returned
// as digits; the speech backend reads those acceptably on its own.
func numberToWords(n int) string {
	switch {
	case n < 0 || n > 99:
		return strconv.Itoa(n)
	case n < 20:
		return onesWords[n]
	case n%10 == 0:
		return tensWords[n/10]
	default:
		return tensWords[n/10] + "-" + onesWords[n%10]
	}
}

// Prepare rewrites announcement text for cleaner speech: applies the
// destination's custom pronunciations, then optionally spells out small
// numbers so the voice doesn't rattle off digits.
func Prepare(text string, settings domain.TTSSettings) string {
	for from, to := range settings.Pronunciations {
		if from == "" {
			continue
		}
		text = strings.ReplaceAll(text, from, to)
	}

	if !settings.NumberToWords {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	i := 0
	for i < len(text) {
		if !unicode.IsDigit(rune(text[i])) {
			b.WriteByte(text[i])
			i++
			continue
		}
		j := i
		for j < len(text) && unicode.IsDigit(rune(text[j])) {
			j++
		}
		n, err := strconv.Atoi(text[i:j])
		if err != nil {
			b.WriteString(text[i:j])
		} else {
			b.WriteString(numberToWords(n))
		}
		i = j
	}
	return b.String()
}
