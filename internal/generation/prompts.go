package generation

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"kira/internal/domain"
)

// Sampling parameters per reading kind.
const (
	Temperature = 0.7

	ReportMaxTokens        = 1000
	DailyReportMaxTokens   = 1200
	DailyInsightMaxTokens  = 1200
	GeneralReportMaxTokens = 1500
	CompatibilityMaxTokens = 1200
)

const persona = "You are KIRA, an advanced AI astrologer and palm reader."

// LongDate renders a date the way the prompts reference it, for example
// "Monday, March 10, 2025".
func LongDate(t time.Time) string {
	return t.UTC().Format("Monday, January 2, 2006")
}

func birthTime(b domain.BirthData) string {
	if t := strings.TrimSpace(b.Time); t != "" {
		return t
	}
	return "Unknown"
}

func palmLine(provided bool, yes string) string {
	if provided {
		return yes
	}
	return "Not provided"
}

// languageLine asks for a non-English answer when the caller's locale is
// known. It returns "" for English or unparseable locales.
func languageLine(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return ""
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	if base.String() == "en" {
		return ""
	}
	name := display.English.Languages().Name(language.Make(base.String()))
	if name == "" {
		return ""
	}
	return fmt.Sprintf("\n\nWrite the entire response in %s.", name)
}

// ReportPrompt builds the dated personal life report.
func ReportPrompt(b domain.BirthData, date time.Time, locale string) string {
	d := LongDate(date)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Generate a comprehensive personal life report specifically for %s.\n\n", persona, d)
	fmt.Fprintf(&sb, "Birth Details:\n- Date: %s\n- Time: %s\n- Location: %s\n- Palm photo: %s\n\n",
		b.Date, birthTime(b), b.Place, palmLine(b.PalmPhoto, "Provided"))
	sb.WriteString("Generate a detailed report covering:\n")
	fmt.Fprintf(&sb, "1. **Your Life Energy for %s** - Current energy levels and vitality for this specific date\n", d)
	sb.WriteString("2. **Health Focus** - Health insights and recommendations for today\n")
	sb.WriteString("3. **Business Potential** - Career and financial outlook for this date\n")
	sb.WriteString("4. **Relationships Insight** - Love and personal connections guidance for today\n")
	sb.WriteString("5. **Family Advice** - Family dynamics and guidance for this specific day\n")
	fmt.Fprintf(&sb, "6. **Daily Guidance** - Specific advice and predictions for %s\n", d)
	sb.WriteString("7. **Spiritual Note** - Spiritual insights and growth opportunities for today\n\n")
	fmt.Fprintf(&sb, "Make sure to reference the specific date (%s) throughout the report. Format the response with clear headings using ** for bold text. Make it personal, insightful, and mystical while remaining practical. Include specific predictions and actionable advice for this exact date.", d)
	sb.WriteString(languageLine(locale))
	return sb.String()
}

// DailyReportPrompt builds the premium daily report.
func DailyReportPrompt(b domain.BirthData, date time.Time, locale string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Generate a personalized daily report for %s.\n\n", persona, LongDate(date))
	fmt.Fprintf(&sb, "User's Birth Details:\n- Date: %s\n- Time: %s\n- Location: %s\n\n", b.Date, birthTime(b), b.Place)
	sb.WriteString("Generate a comprehensive daily report covering:\n")
	sb.WriteString("1. **Today's Energy Overview** - Overall energy and cosmic influences\n")
	sb.WriteString("2. **Health & Wellness** - Physical and mental health guidance for today\n")
	sb.WriteString("3. **Career & Money** - Professional opportunities and financial insights\n")
	sb.WriteString("4. **Love & Relationships** - Romantic and social connections guidance\n")
	sb.WriteString("5. **Family & Home** - Family dynamics and domestic matters\n")
	sb.WriteString("6. **Spiritual Guidance** - Meditation, growth, and spiritual practices\n")
	sb.WriteString("7. **Lucky Elements** - Colors, numbers, or activities that will bring good fortune\n")
	sb.WriteString("8. **Daily Affirmation** - A powerful affirmation for today\n\n")
	sb.WriteString("Make it personal, specific to today's date, and include actionable advice. Format with ** for headings.")
	sb.WriteString(languageLine(locale))
	return sb.String()
}

// DailyInsightPrompt builds the daily insight that overlays the natal data
// with the target date.
func DailyInsightPrompt(b domain.BirthData, date time.Time, locale string) string {
	d := LongDate(date)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Generate a personalized DAILY INSIGHT for %s.\n\n", persona, d)
	fmt.Fprintf(&sb, "User's Natal Chart Data:\n- Birth Date: %s\n- Birth Time: %s\n- Birth Location: %s\n- Palm Reading: %s\n\n",
		b.Date, birthTime(b), b.Place, palmLine(b.PalmPhoto, "Available for interpretation"))
	fmt.Fprintf(&sb, "Target Date: %s\n\n", d)
	fmt.Fprintf(&sb, "Overlay the user's natal chart data with %s's planetary positions and general energetic conditions. Provide personalized recommendations in the following areas:\n\n", d)
	fmt.Fprintf(&sb, "**Energy Overview for %s**\nBrief summary of the day's cosmic energy and how it affects this person specifically.\n\n", d)
	sb.WriteString("**Health & Vitality**\nPhysical wellness recommendations, energy levels, and health focus areas for this day.\n\n")
	sb.WriteString("**Business & Career**\nProfessional opportunities, decision-making guidance, and career energy for this day.\n\n")
	sb.WriteString("**Relationships & Love**\nRomantic connections, social interactions, and relationship guidance for this day.\n\n")
	sb.WriteString("**Emotions & Mental State**\nEmotional balance, mental clarity, and psychological insights for this day.\n\n")
	sb.WriteString("**Personal Growth**\nSpiritual development, learning opportunities, and growth areas for this day.\n\n")
	fmt.Fprintf(&sb, "**Action Items for %s**\n3-4 specific, practical actions the user should take on this day based on their cosmic profile.\n\n", d)
	sb.WriteString("**Daily Affirmation**\nA powerful, personalized affirmation for this day based on their astrological profile.\n\n")
	fmt.Fprintf(&sb, "Keep it inspiring, intuitive, and practical. Make specific references to %s and cosmic conditions. Format with clear headings using ** for bold text.", d)
	sb.WriteString(languageLine(locale))
	return sb.String()
}

// GeneralReportPrompt builds the undated whole-life analysis.
func GeneralReportPrompt(b domain.BirthData, locale string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Generate a comprehensive GENERAL LIFE ANALYSIS report (not a daily report).\n\n", persona)
	fmt.Fprintf(&sb, "Birth Details:\n- Date: %s\n- Time: %s\n- Location: %s\n- Palm photo: %s\n\n",
		b.Date, birthTime(b), b.Place, palmLine(b.PalmPhoto, "Provided for analysis"))
	sb.WriteString("Generate a detailed GENERAL REPORT covering:\n")
	sb.WriteString("1. **Personality Overview** - Core personality traits and characteristics based on astrological analysis\n")
	sb.WriteString("2. **Life Path & Purpose** - Your spiritual journey and life mission\n")
	sb.WriteString("3. **Strengths & Talents** - Natural abilities and gifts you possess\n")
	sb.WriteString("4. **Challenges & Growth Areas** - Areas for personal development and growth\n")
	sb.WriteString("5. **Career & Financial Potential** - Professional inclinations and money-making abilities\n")
	sb.WriteString("6. **Love & Relationships** - Romantic compatibility and relationship patterns\n")
	sb.WriteString("7. **Health & Wellness** - Physical and mental health tendencies\n")
	sb.WriteString("8. **Family & Social Life** - Family dynamics and social connections\n")
	sb.WriteString("9. **Spiritual Gifts** - Psychic abilities and spiritual inclinations\n")
	sb.WriteString("10. **Life Advice** - Key recommendations for living your best life\n\n")
	if b.PalmPhoto {
		sb.WriteString("Include palm reading insights throughout each section, analyzing the lines and their meanings.\n\n")
	}
	sb.WriteString("This should be a comprehensive GENERAL analysis of the person's entire life, not a daily forecast. Format the response with clear headings using ** for bold text. Make it personal, insightful, and mystical while remaining practical and encouraging.")
	sb.WriteString(languageLine(locale))
	return sb.String()
}

// CompatibilityPrompt builds the two-person compatibility analysis.
func CompatibilityPrompt(self, partner domain.BirthData, locale string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s specializing in relationship compatibility. Analyze the compatibility between these two individuals:\n\n", strings.TrimSuffix(persona, "."))
	writePerson := func(label string, b domain.BirthData) {
		fmt.Fprintf(&sb, "%s:\n- Birth Date: %s\n- Birth Time: %s\n- Birth Place: %s\n- Palm Photo: %s\n\n",
			label, b.Date, birthTime(b), b.Place, palmLine(b.PalmPhoto, "Provided"))
	}
	writePerson("User 1", self)
	writePerson("User 2 (Partner)", partner)
	sb.WriteString("Provide a detailed compatibility analysis covering:\n\n")
	sb.WriteString("1. **Emotional Connection** (0-100 score): Deep emotional bond and understanding\n")
	sb.WriteString("2. **Business Synergy** (0-100 score): Professional collaboration and shared goals\n")
	sb.WriteString("3. **Family Values Alignment** (0-100 score): Family priorities and life vision\n")
	sb.WriteString("4. **Shared Life Purpose** (0-100 score): Spiritual path and personal growth\n")
	sb.WriteString("5. **Energy Synchronization** (0-100 score): Daily energy patterns and compatibility\n\n")
	sb.WriteString("For each category, provide:\n- A numerical score (0-100)\n- 2-3 sentences explaining the compatibility\n- Specific insights based on astrological and palm reading analysis\n\n")
	sb.WriteString("Conclude with:\n- **Overall Compatibility Score** (0-100): Average of all categories\n- **Recommendation**: One specific, actionable recommendation for improving their bond")
	sb.WriteString(languageLine(locale))
	return sb.String()
}
