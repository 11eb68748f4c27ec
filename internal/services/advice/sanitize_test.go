package advice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain sentence gets a period", "keep going", "Keep going."},
		{"emoji and zero width removed", "🚀 Save more​ money 💰", "Save more money."},
		{"parentheses and colons", "Cut costs (like takeout): now", "Cut costs like takeout now."},
		{"percent sign", "Invest 10% of pay", "Invest 10 percent of pay."},
		{"comparison operators", "Keep spending <= 80% and savings >= 3 months", "Keep spending at or below 80 percent and savings at or above 3 months."},
		{"approximate", "Save ~$200", "Save about $200."},
		{"numeric units", "Move $50/wk, then $200/mo and $2,400/yr", "Move $50 per week, then $200 per month and $2,400 per year."},
		{"generic slash", "income/expenses", "Income per expenses."},
		{"jargon", "Your DTI is fine but your runway is short", "Your debt load is fine but your cash cushion is short."},
		{"leading label", "Good: you saved $300", "You saved $300."},
		{"label with note", "Goal (next week): add $25", "Add $25."},
		{"stacked labels and bullets", "- Fix: Tip: pay $100", "Pay $100."},
		{"numbered bullet", "2) Pay $40 to the card", "Pay $40 to the card."},
		{"doubled percent", "Save 5%%", "Save 5 percent."},
		{"spend share repair", "Spend ratio: 50%", "You spend 50 percent of your money."},
		{"cash cushion repair", "runway 2.5 months, build it", "Your savings cover 2.5 months, build it."},
		{"debt load repair", "DTI 40%", "Your debt equals 40 percent of a month of pay."},
		{"keeps existing terminal punctuation", "wow, nice!", "Wow, nice!"},
		{"trailing comma becomes period", "save more,", "Save more."},
		{"repeated punctuation", "Great!!!", "Great!"},
		{"whitespace collapse", "  too\t\tmany   spaces  ", "Too many spaces."},
		{"empty", "   ", ""},
		{"emoji only", "🎉🎉", ""},
		{"starts with number", "3 months saved", "3 months saved."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeLine(tt.input))
		})
	}
}

var sanitizeCorpus = []string{
	"🔥 Budget ratio: 92% (too high!) -> aim for <= 80%/mo",
	"Goal (next week): move ~$50/wk into savings 💸",
	"DTI ≥ 1.2 :( pay $300/month",
	"Spend share is 50 % % of income",
	"runways/ratios/DTIs",
	"Fix:Fix: (((colons))):::",
	"  • 1. Keep it up  ",
	"你好 (test)： 50％／月",
	"Tip: 5 . save",
	"✅ Good: runway ~ 4 mo",
	"Money with odd spaces",
	"end with semicolon;",
	"",
}

// repeatedTokenInputs builds long runs of the tokens that expand into
// repeated words.
func repeatedTokenInputs() []string {
	var inputs []string
	for _, n := range []int{2, 3, 7, 32, 65} {
		inputs = append(inputs,
			strings.Repeat("/", n),
			"save "+strings.Repeat("~", n)+" 5",
			strings.Repeat("the ", n)+"plan",
			strings.Repeat("%", n)+" saved",
			"pay "+strings.Repeat("／ ", n)+"month",
			strings.Repeat("~/", n)+"$20",
			strings.Repeat("The THE ", n)+"end",
		)
	}
	return inputs
}

func TestSanitizeLine_Idempotent(t *testing.T) {
	inputs := append(append([]string{}, sanitizeCorpus...), repeatedTokenInputs()...)
	for _, input := range inputs {
		once := SanitizeLine(input)
		twice := SanitizeLine(once)
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestSanitizeLine_RunsCollapseInOnePass(t *testing.T) {
	for _, input := range repeatedTokenInputs() {
		first := sanitizeOnce(input)
		assert.Equal(t, first, sanitizeOnce(first), "input %q", input)
	}
}

func TestSanitizeLine_CollapsesRuns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"slashes", strings.Repeat("/", 32), "Per."},
		{"tildes", "save " + strings.Repeat("~", 32) + " 5", "Save about 5."},
		{"articles", strings.Repeat("the ", 40) + "plan", "The plan."},
		{"mixed case articles", "The THE the plan", "The plan."},
		{"percent signs", "save 5" + strings.Repeat("%", 9), "Save 5 percent."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeLine(tt.input))
		})
	}
}

func TestSanitizeLine_NoBannedCharacters(t *testing.T) {
	inputs := append(append([]string{}, sanitizeCorpus...), repeatedTokenInputs()...)
	for _, input := range inputs {
		out := SanitizeLine(input)
		for _, banned := range []string{"%", "/", "(", ")", ":", "％", "／"} {
			assert.NotContains(t, out, banned, "input %q", input)
		}
		for _, r := range out {
			assert.False(t, isEmoji(r), "input %q produced emoji %U", input, r)
		}
	}
}

func TestShorten(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"fits", "Save $20 today.", 40, "Save $20 today."},
		{"cuts at word", "Save twenty dollars every single week", 20, "Save twenty dollars."},
		{"cut lands on word end", "hello world foo", 12, "hello world."},
		{"cut inside word backs up", "hello world foo", 11, "hello."},
		{"drops trailing comma", "Save more, then invest", 12, "Save more."},
		{"single long word", "Supercalifragilistic", 8, "Superca."},
		{"zero length", "anything", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Shorten(tt.input, tt.maxLen)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len([]rune(got)), max(tt.maxLen, 0))
		})
	}
}

func TestUniqueList(t *testing.T) {
	got := UniqueList([]string{"Save $5.", "save $5.", "  ", "Invest $10.", "SAVE $5.", "Pay $3."})
	assert.Equal(t, []string{"Save $5.", "Invest $10.", "Pay $3."}, got)
	assert.Empty(t, UniqueList(nil))
}

func TestSanitizeLine_LongInputStaysReadable(t *testing.T) {
	input := strings.Repeat("save $5/wk ", 30)
	out := SanitizeLine(input)
	assert.NotContains(t, out, "/")
	assert.True(t, strings.HasSuffix(out, "."))
}
