// Package advice turns ratios into plain-language advice and cleans advice
// text from any source so it reads simply: no symbols, no jargon, no emoji.
package advice

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	leadingLabelPattern = regexp.MustCompile(`(?i)^\s*(?:good|great|nice|win|fix|fix it|problem|issue|warning|watch out|goal|tip|pro tip|action|next|next step|step \d+|advice|note|headline|summary)\s*(?:\([^)]*\))?\s*:\s*`)
	leadingBulletPattern = regexp.MustCompile(`^\s*(?:[-*•·▪►]+|\d{1,2}[.)])\s+`)

	unitPattern = regexp.MustCompile(`(?i)([\d%])\s*/\s*(wk|wks|week|weeks|mo|mos|mth|month|months|yr|yrs|year|years|day|days)\b`)
	unitWords   = map[string]string{
		"wk": "week", "wks": "week", "week": "week", "weeks": "week",
		"mo": "month", "mos": "month", "mth": "month", "month": "month", "months": "month",
		"yr": "year", "yrs": "year", "year": "year", "years": "year",
		"day": "day", "days": "day",
	}

	symbolReplacer = strings.NewReplacer(
		"<=", " at or below ",
		">=", " at or above ",
		"≤", " at or below ",
		"≥", " at or above ",
		"~", " about ",
		"≈", " about ",
		"%", " percent ",
		"％", " percent ",
		"/", " per ",
		"／", " per ",
	)

	punctuationReplacer = strings.NewReplacer(
		"(", " ", ")", " ", ":", " ",
		"（", " ", "）", " ", "：", " ",
		"*", "", "`", "", "_", " ",
	)

	jargonRules = []struct {
		pattern *regexp.Regexp
		repl    string
	}{
		{regexp.MustCompile(`(?i)\bdebt[- ]to[- ]income(?:\s+ratio)?\b`), "debt load"},
		{regexp.MustCompile(`(?i)\bdtis?\b`), "debt load"},
		{regexp.MustCompile(`(?i)\bemergency\s+runway\b`), "cash cushion"},
		{regexp.MustCompile(`(?i)\brunways\b`), "cash cushions"},
		{regexp.MustCompile(`(?i)\brunway\b`), "cash cushion"},
		{regexp.MustCompile(`(?i)\bratios\b`), "shares"},
		{regexp.MustCompile(`(?i)\bratio\b`), "share"},
	}

	number = `(\d[\d,]*(?:\.\d+)?)`

	grammarRules = []struct {
		pattern *regexp.Regexp
		repl    string
	}{
		{regexp.MustCompile(`(?i)\b(?:you\s+)?spend(?:ing)?\s+share\s+(?:is\s+|of\s+)?(?:about\s+)?` + number + `\s+percent\b`), "you spend $1 percent of your money"},
		{regexp.MustCompile(`(?i)\b(?:you\s+)?budget\s+share\s+(?:is\s+|of\s+)?(?:about\s+)?` + number + `\s+percent\b`), "you spend $1 percent of your money"},
		{regexp.MustCompile(`(?i)\b(?:you\s+)?invest(?:ing|ment)?\s+(?:share|rate)\s+(?:is\s+|of\s+)?(?:about\s+)?` + number + `\s+percent\b`), "you invest $1 percent of your income"},
		{regexp.MustCompile(`(?i)\b(?:your\s+)?savings?\s+(?:share|rate)\s+(?:is\s+|of\s+)?(?:about\s+)?` + number + `\s+percent\b`), "you save $1 percent of your income"},
		{regexp.MustCompile(`(?i)\b(?:your\s+)?debt\s+load\s+(?:is\s+|of\s+)?(?:about\s+)?` + number + `\s+percent\b`), "your debt equals $1 percent of a month of pay"},
		{regexp.MustCompile(`(?i)\b(?:your\s+)?cash\s+cushion\s+(?:is\s+|of\s+)?(?:about\s+)?` + number + `\s+months?\b`), "your savings cover $1 months"},
		{regexp.MustCompile(`(?i)\bper(?:\s+per)+\b`), "per"},
		{regexp.MustCompile(`(?i)\babout(?:\s+about)+\b`), "about"},
		{regexp.MustCompile(`(?i)\bthe(?:\s+the)+\b`), "the"},
	}

	whitespacePattern     = regexp.MustCompile(`\s+`)
	spaceBeforePunct      = regexp.MustCompile(`\s+([.,!?;])`)
	doubledPercentPattern = regexp.MustCompile(`(?i)\bpercent(?:\s+percent)+\b`)
	repeatedPunctPattern  = regexp.MustCompile(`([.!?])[.!?,;]+`)
)

// SanitizeLine rewrites one advice or headline string into the plain style:
//  1. strip emoji and zero-width characters
//  2. drop echoed labels and bullets, then parentheses and colons
//  3. spell out symbols such as <=, ~, % and /
//  4. swap jargon for plain words
//  5. collapse whitespace and doubled "percent"
//  6. repair known awkward phrasings
//  7. capitalize and end with punctuation
//
// Repeated tokens collapse as whole runs, so a second pass is a no-op and
// SanitizeLine(SanitizeLine(x)) equals SanitizeLine(x). The loop only
// confirms the fixed point.
func SanitizeLine(raw string) string {
	out := sanitizeOnce(raw)
	for {
		next := sanitizeOnce(out)
		if next == out {
			return out
		}
		out = next
	}
}

func sanitizeOnce(s string) string {
	s = stripInvisible(s)
	s = stripLeadingLabels(s)
	s = punctuationReplacer.Replace(s)
	s = expandSymbols(s)
	s = replaceJargon(s)
	s = collapse(s)
	s = repairGrammar(s)
	s = collapse(s)
	return finishSentence(s)
}

// stripInvisible removes emoji, pictographs, variation selectors and format
// characters. Control characters become spaces.
func stripInvisible(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == utf8.RuneError:
			continue
		case isEmoji(r):
			continue
		case unicode.Is(unicode.Cf, r):
			continue
		case unicode.IsControl(r), unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // mahjong through symbols and pictographs extended-A
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // arrows and stars
		return true
	case r >= 0x2300 && r <= 0x23FF: // watch, hourglass, media keys
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r >= 0xE0000 && r <= 0xE007F: // tags
		return true
	case r == 0x20E3, r == 0x3030, r == 0x303D, r == 0x3297, r == 0x3299, r == 0x2122, r == 0x2139, r == 0x00A9, r == 0x00AE:
		return true
	}
	return false
}

func stripLeadingLabels(s string) string {
	for {
		next := leadingBulletPattern.ReplaceAllString(s, "")
		next = leadingLabelPattern.ReplaceAllString(next, "")
		if next == s {
			return s
		}
		s = next
	}
}

func expandSymbols(s string) string {
	s = unitPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := unitPattern.FindStringSubmatch(match)
		return parts[1] + " per " + unitWords[strings.ToLower(parts[2])]
	})
	return symbolReplacer.Replace(s)
}

func replaceJargon(s string) string {
	for _, rule := range jargonRules {
		s = rule.pattern.ReplaceAllString(s, rule.repl)
	}
	return s
}

func repairGrammar(s string) string {
	for _, rule := range grammarRules {
		s = rule.pattern.ReplaceAllString(s, rule.repl)
	}
	return s
}

func collapse(s string) string {
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = doubledPercentPattern.ReplaceAllString(s, "percent")
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	s = repeatedPunctPattern.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// finishSentence capitalizes the first letter and guarantees the line ends
// with . ! or ?
func finishSentence(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), ",;-– ")
	if s == "" {
		return ""
	}

	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
		if unicode.IsDigit(r) {
			break
		}
	}
	s = string(runes)

	switch runes[len(runes)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}

// Shorten cuts s to at most maxLen runes at the last whole word and ends it
// with a period. Strings that already fit are returned unchanged.
func Shorten(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	// leave room for the closing period; a cut that lands on a word end
	// keeps that word
	cut := runes[:maxLen-1]
	if !unicode.IsSpace(runes[maxLen-1]) {
		if idx := lastSpace(cut); idx > 0 {
			cut = cut[:idx]
		}
	}

	out := strings.TrimRight(string(cut), " ,;:-–.!?")
	if out == "" {
		return ""
	}
	return out + "."
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}

// UniqueList drops blank entries and case-insensitive duplicates, keeping the
// first occurrence with its original casing.
func UniqueList(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, item := range list {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
