package telegram

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"dressupapi/fashion"
	"dressupapi/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"
)

const helpText = "Send me a photo file name and I will tell you what it is.\n" +
	"/classify `czarna_skorzana_kurtka.jpg`\n" +
	"/palette `any selfie name`\n" +
	"/styles lists the styles I know\n" +
	"/closet shows your closet when your app profile has your Telegram username"

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

// Alerter posts operator messages to the admin chat. Without a bot it only
// logs.
type Alerter struct {
	Bot    *tgbotapi.BotAPI
	ChatID int64
}

// NewAlerter reads TG_TOKEN and TG_ALERT_CHAT_ID. It never returns nil.
func NewAlerter() *Alerter {
	alerter := &Alerter{}
	chatID, err := strconv.ParseInt(os.Getenv("TG_ALERT_CHAT_ID"), 10, 64)
	if err != nil || os.Getenv("TG_TOKEN") == "" {
		return alerter
	}
	bot, err := tgbotapi.NewBotAPI(os.Getenv("TG_TOKEN"))
	if err != nil {
		log.Println("[Telegram] alert bot init failed:", err)
		return alerter
	}
	alerter.Bot = bot
	alerter.ChatID = chatID
	return alerter
}

func (a *Alerter) Send(text string) {
	if a == nil || a.Bot == nil {
		log.Println("[Alert]", text)
		return
	}
	if _, err := a.Bot.Send(tgbotapi.NewMessage(a.ChatID, text)); err != nil {
		log.Println("[Telegram] alert failed:", err)
	}
}

// Stylist answers bot commands with the same classifier the app uses.
type Stylist struct {
	DB *gorm.DB
}

func describeItem(item fashion.ClassifiedItem) string {
	var styles []string
	for _, style := range item.Styles {
		styles = append(styles, style.Title())
	}
	return fmt.Sprintf("*%s*\nCategory: %s\nStyles: %s\nColors: %s",
		EscapeMessage(item.DisplayName()),
		item.Category.Label(),
		strings.Join(styles, ", "),
		strings.Join(item.ColorTags, ", "),
	)
}

// Reply builds the markdown answer to one command. username is the Telegram
// sender without the @.
func (s Stylist) Reply(command string, args string, username string) string {
	args = strings.TrimSpace(args)
	switch command {
	case "start", "help":
		return helpText
	case "classify":
		if args == "" {
			return "Usage: /classify `file name`"
		}
		return describeItem(fashion.ClassifyLabel(args, args))
	case "palette":
		if args == "" {
			return "Usage: /palette `selfie name`"
		}
		profile := fashion.AnalyzeSelfie(args)
		var b strings.Builder
		fmt.Fprintf(&b, "*%s*\n%s\n", profile.Palette.Name, EscapeMessage(profile.Palette.Description))
		for _, suggestion := range profile.Palette.Suggestions {
			fmt.Fprintf(&b, "• %s\n", EscapeMessage(suggestion))
		}
		b.WriteString(strings.Join(profile.KeywordSummary(), " · "))
		return b.String()
	case "styles":
		var b strings.Builder
		for _, style := range fashion.AllStyles() {
			fmt.Fprintf(&b, "*%s*: %s\n", style.Title(), EscapeMessage(style.Description()))
		}
		return strings.TrimSpace(b.String())
	case "closet":
		return s.closet(username)
	}
	return "Unknown command, try /start"
}

func (s Stylist) closet(username string) string {
	if s.DB == nil || username == "" {
		return "Add your Telegram username in the app to see your closet here."
	}
	var user models.UserAccount
	r := s.DB.Limit(1).Find(&user, "telegram_username = ? AND banned = ?", username, false)
	if r.Error != nil || r.RowsAffected == 0 {
		return "Add your Telegram username in the app to see your closet here."
	}
	var records []models.Clothing
	if err := s.DB.Where("owner_id = ?", user.ID).Find(&records).Error; err != nil {
		return "Could not read your closet, try again later."
	}
	if len(records) == 0 {
		return "Your closet is empty."
	}
	counts := map[fashion.Category]int{}
	for _, item := range models.ClosetItems(records) {
		counts[item.Category]++
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v pieces\n", len(records))
	for _, category := range fashion.AllCategories() {
		if counts[category] > 0 {
			fmt.Fprintf(&b, "%s: %v\n", category.Label(), counts[category])
		}
	}
	styles := fashion.AvailableStyles(models.ClosetItems(records))
	var titles []string
	for _, style := range styles {
		titles = append(titles, style.Title())
	}
	if len(titles) > 0 {
		fmt.Fprintf(&b, "Looks possible in: %s", strings.Join(titles, ", "))
	}
	return strings.TrimSpace(b.String())
}

func RunStylistBot(db *gorm.DB) {
	bot, err := tgbotapi.NewBotAPI(os.Getenv("TG_TOKEN"))
	if err != nil {
		println("Error tg bot init")
		log.Panic(err)
	}
	bot.Debug = os.Getenv("ENV") != "production"

	log.Printf("Authorized on account %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	stylist := Stylist{DB: db}
	for update := range bot.GetUpdatesChan(u) {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		username := ""
		if update.Message.From != nil {
			username = update.Message.From.UserName
		}
		log.Printf("[%s] %s", username, update.Message.Text)
		msg := tgbotapi.NewMessage(update.Message.Chat.ID, stylist.Reply(update.Message.Command(), update.Message.CommandArguments(), username))
		msg.ParseMode = "markdown"
		msg.ReplyToMessageID = update.Message.MessageID
		if _, err := bot.Send(msg); err != nil {
			log.Println("[Telegram]", err)
		}
	}
}
