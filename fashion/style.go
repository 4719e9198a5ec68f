package fashion

type Style string

const (
	Classic     Style = "classic"
	SmartCasual Style = "smart_casual"
	Casual      Style = "casual"
	Minimalist  Style = "minimalist"
	Sporty      Style = "sporty"
	Boho        Style = "boho"
	Glamour     Style = "glamour"
	Romantic    Style = "romantic"
	Streetwear  Style = "streetwear"
	Rock        Style = "rock"
)

var allStyles = []Style{
	Classic, SmartCasual, Casual, Minimalist, Sporty,
	Boho, Glamour, Romantic, Streetwear, Rock,
}

type styleInfo struct {
	title       string
	description string
	tone        string
}

var styleInfos = map[Style]styleInfo{
	Classic:     {"Classic", "Timeless cuts, crisp shirts and tailored layers.", "elegance and timeless lines"},
	SmartCasual: {"Smart casual", "Relaxed tailoring that works from office to dinner.", "relaxed elegance made for a meeting"},
	Casual:      {"Casual", "Denim, knits and basics for every day.", "everyday comfort"},
	Minimalist:  {"Minimalist", "Clean shapes in a calm, neutral palette.", "clean shapes and a calm palette"},
	Sporty:      {"Sporty", "Technical fabrics and sneakers with athleisure ease.", "athleisure energy"},
	Boho:        {"Boho", "Fringe, embroidery and flowing maxi shapes.", "artistic ease"},
	Glamour:     {"Glamour", "Satin, sequins and heels for the evening.", "evening shine"},
	Romantic:    {"Romantic", "Florals, ruffles and soft pastels.", "subtle romance"},
	Streetwear:  {"Streetwear", "Oversized hoodies, cargo and sneakers.", "urban character"},
	Rock:        {"Rock", "Leather, studs and black statement pieces.", "edgy confidence"},
}

// AllStyles returns every style in declared order.
func AllStyles() []Style {
	return append([]Style(nil), allStyles...)
}

func ParseStyle(value string) (Style, bool) {
	style := Style(value)
	_, ok := styleInfos[style]
	return style, ok
}

func (s Style) Title() string {
	return styleInfos[s].title
}

func (s Style) Description() string {
	return styleInfos[s].description
}

// Tone is the phrase used inside look narratives.
func (s Style) Tone() string {
	return styleInfos[s].tone
}

func (s Style) index() int {
	for i, style := range allStyles {
		if style == s {
			return i
		}
	}
	return len(allStyles)
}

// ParseStyles keeps the known style names and silently drops the rest.
func ParseStyles(values []string) []Style {
	styles := make([]Style, 0, len(values))
	for _, value := range values {
		if style, ok := ParseStyle(value); ok {
			styles = append(styles, style)
		}
	}
	return styles
}

func StyleNames(styles []Style) []string {
	names := make([]string, 0, len(styles))
	for _, style := range styles {
		names = append(names, string(style))
	}
	return names
}
