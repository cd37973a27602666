package bot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fakubwoy/pricepulse/internal/client"
	"gopkg.in/telebot.v4"
)

// Bot is the Telegram presentation layer. It only dispatches commands to
// the client engine and renders the resulting state; no business logic
// lives here.
type Bot struct {
	bot    API
	log    *slog.Logger
	client *client.Client
}

func NewBot(log *slog.Logger, engine *client.Client, token string, poller time.Duration) (*Bot, error) {
	tgBot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", tgBot.Me.Username)

	botInstance := &Bot{bot: tgBot, log: log, client: engine}

	botInstance.registerRoutes()

	return botInstance, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	// Public routes.
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/login", b.loginHandler)
	b.bot.Handle("/register", b.registerHandler)

	// Authenticated routes; the engine itself rejects them while anonymous.
	b.bot.Handle("/logout", b.logoutHandler)
	b.bot.Handle("/list", b.listHandler)
	b.bot.Handle("/add", b.addHandler)
	b.bot.Handle("/remove", b.removeHandler)
	b.bot.Handle("/refresh", b.refreshHandler)
	b.bot.Handle("/select", b.selectHandler)
	b.bot.Handle("/deselect", b.deselectHandler)
	b.bot.Handle("/window", b.windowHandler)
	b.bot.Handle("/history", b.historyHandler)
	b.bot.Handle("/alerts", b.alertsHandler)
	b.bot.Handle("/alert", b.alertHandler)
	b.bot.Handle("/delalert", b.delAlertHandler)
	b.bot.Handle("/testalert", b.testAlertHandler)
	b.bot.Handle("/dismiss", b.dismissHandler)
}
