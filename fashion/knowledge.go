package fashion

import (
	"fmt"
	"strings"

	"dressupapi/languageutil"
)

// NeutralColor is the single tag given to labels without any color keyword.
const NeutralColor = "Neutral"

type categoryKeywords struct {
	category Category
	keywords []string
}

type styleKeywords struct {
	style    Style
	keywords []string
}

type colorKeywords struct {
	label    string
	keywords []string
}

// Matching is plain substring containment on the lowercased label, so the
// declared order of every table decides ties.
var categoryTable = []categoryKeywords{
	{Tops, []string{"bluz", "koszul", "t-shirt", "tshirt", "top", "golf", "sweter", "shirt"}},
	{Bottoms, []string{"spodni", "jeans", "denim", "spódnic", "leggin", "leggins", "pants"}},
	{Dresses, []string{"sukien", "dress", "kombinezon"}},
	{Outerwear, []string{"płaszcz", "plaszcz", "marynark", "kurtk", "żakiet", "ramonesk", "kamizelk"}},
	{Shoes, []string{"but", "sneaker", "trampk", "szpil", "loafer", "mokasyn", "boot", "obuw"}},
	{Accessories, []string{"torb", "toreb", "pasek", "kapelusz", "okular", "chusta", "apaszk", "biż", "biz"}},
}

var styleTable = []styleKeywords{
	{Classic, []string{"marynark", "trencz", "koszul", "garnitur", "plis", "czarn", "biel"}},
	{SmartCasual, []string{"cygaret", "chinos", "mokasyn", "blezer", "żakiet", "plisowana", "koszulka polo"}},
	{Casual, []string{"jeans", "denim", "basic", "t-shirt", "tshirt", "dres", "sweter", "cardigan", "bluza"}},
	{Minimalist, []string{"beż", "bez", "szary", "golf", "prosty", "monochrom", "basic", "minimal"}},
	{Sporty, []string{"sport", "sneaker", "leggins", "trening", "dres", "technicz", "athleisure"}},
	{Boho, []string{"boho", "frędzl", "haft", "koronk", "maxi", "etno", "luźn"}},
	{Glamour, []string{"satyn", "błysk", "cek", "szpil", "wieczor", "koktajl", "futrz"}},
	{Romantic, []string{"kwiat", "falban", "plis", "pastel", "delikat", "koronk"}},
	{Streetwear, []string{"oversize", "hoodie", "street", "cargo", "snapback", "crewneck"}},
	{Rock, []string{"skór", "ramonesk", "stud", "czarn", "metal", "rock"}},
}

var colorTable = []colorKeywords{
	{"Baby blue", []string{"baby blue", "błękit", "blekit", "blue", "turkus", "denim"}},
	{"Lilac", []string{"lili", "lilac", "fiolet", "lawend"}},
	{"Powder pink", []string{"róż", "roz", "pink", "blush"}},
	{"Beige", []string{"beż", "bez", "taupe", "camel", "karmel"}},
	{"White", []string{"biały", "bialy", "white", "krem"}},
	{"Black", []string{"czarn", "black", "grafit", "antracyt"}},
	{"Navy", []string{"granat", "navy", "kobalt"}},
	{"Green", []string{"ziel", "green", "oliwk", "emerald"}},
	{"Red", []string{"czerwie", "red", "bord", "wine"}},
	{"Gold", []string{"złot", "zlot", "gold", "miod"}},
	{"Silver", []string{"srebr", "silver", "platyn"}},
}

var fallbackStyles = map[Category][]Style{
	Tops:        {Casual, Classic, SmartCasual},
	Bottoms:     {Casual, Minimalist, SmartCasual},
	Dresses:     {Glamour, Romantic, Boho},
	Outerwear:   {Classic, Streetwear, Rock},
	Shoes:       {Classic, Casual, Glamour},
	Accessories: {Glamour, Boho, Minimalist},
}

func DetectCategory(label string) Category {
	lower := languageutil.Lower(label)
	for _, entry := range categoryTable {
		if languageutil.ContainsAny(lower, entry.keywords) {
			return entry.category
		}
	}
	return Unknown
}

// DetectStyles returns every style sharing the best keyword score. Labels
// without any style keyword get the first two fallback styles of their category.
func DetectStyles(label string, category Category) []Style {
	lower := languageutil.Lower(label)
	best := 0
	var matched []Style
	for _, entry := range styleTable {
		score := languageutil.CountMatches(lower, entry.keywords)
		switch {
		case score == 0 || score < best:
		case score > best:
			best = score
			matched = []Style{entry.style}
		default:
			matched = append(matched, entry.style)
		}
	}
	if len(matched) > 0 {
		return matched
	}
	return CategoryFallbackStyles(category)
}

// CategoryFallbackStyles gives the two default styles of a category.
func CategoryFallbackStyles(category Category) []Style {
	fallback, ok := fallbackStyles[category]
	if !ok {
		fallback = allStyles
	}
	return append([]Style(nil), fallback[:2]...)
}

func DetectColorTags(label string) []string {
	lower := languageutil.Lower(label)
	var colors []string
	seen := map[string]bool{}
	for _, entry := range colorTable {
		if seen[entry.label] || !languageutil.ContainsAny(lower, entry.keywords) {
			continue
		}
		seen[entry.label] = true
		colors = append(colors, entry.label)
	}
	if len(colors) == 0 {
		return []string{NeutralColor}
	}
	return colors
}

func Narrative(style Style, pieces []string) string {
	return fmt.Sprintf("Pairing %s tells a story of %s.", strings.Join(pieces, ", "), style.Tone())
}
