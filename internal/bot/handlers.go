package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fakubwoy/pricepulse/internal/apperr"
	"github.com/fakubwoy/pricepulse/internal/models"
	"gopkg.in/telebot.v4"
)

const helpText = `PricePulse price tracker.

/login <email> <password>
/register <email> <password> <name>
/logout
/list - tracked products
/add <url> - track a product
/remove <id> | /refresh <id>
/select <id> | /deselect
/window <7|30|90|180|365>
/history | /alerts
/alert <target price> | /delalert <id> | /testalert
/dismiss - dismiss the last error`

// startHandler process command /start.
func (b *Bot) startHandler(tctx telebot.Context) error {
	b.log.Info("User started the bot", "username", tctx.Sender().Username)

	if err := tctx.Send(helpText); err != nil {
		return fmt.Errorf("failed to send greeting message: %w", err)
	}

	return nil
}

func (b *Bot) loginHandler(tctx telebot.Context) error {
	args := tctx.Args()
	if len(args) != 2 {
		return tctx.Send("Usage: /login <email> <password>")
	}

	if err := b.client.Session.Login(context.Background(), args[0], args[1]); err != nil {
		return b.replyError(tctx, err)
	}

	user, _ := b.client.Session.User()

	return tctx.Send(fmt.Sprintf("Logged in as %s.", user.Email))
}

func (b *Bot) registerHandler(tctx telebot.Context) error {
	args := tctx.Args()
	if len(args) < 3 {
		return tctx.Send("Usage: /register <email> <password> <name>")
	}

	name := strings.Join(args[2:], " ")
	if err := b.client.Session.Register(context.Background(), args[0], args[1], name); err != nil {
		return b.replyError(tctx, err)
	}

	return tctx.Send("Account created, you are logged in.")
}

func (b *Bot) logoutHandler(tctx telebot.Context) error {
	b.client.Logout(context.Background())

	return tctx.Send("Logged out.")
}

func (b *Bot) listHandler(tctx telebot.Context) error {
	if err := b.client.Products.Load(context.Background()); err != nil {
		return b.replyError(tctx, err)
	}

	products := b.client.Products.Products()
	if len(products) == 0 {
		return tctx.Send("No tracked products yet. Use /add <url>.")
	}

	var sb strings.Builder
	for _, p := range products {
		sb.WriteString(renderProduct(p))
		sb.WriteByte('\n')
	}

	return tctx.Send(sb.String())
}

func (b *Bot) addHandler(tctx telebot.Context) error {
	url := strings.TrimSpace(tctx.Message().Payload)

	product, err := b.client.Products.Add(context.Background(), url)
	if err != nil {
		return b.replyError(tctx, err)
	}

	return tctx.Send("Now tracking:\n" + renderProduct(product))
}

func (b *Bot) removeHandler(tctx telebot.Context) error {
	id, ok := parseID(tctx)
	if !ok {
		return tctx.Send("Usage: /remove <id>")
	}

	if err := b.client.Products.Remove(context.Background(), id); err != nil {
		return b.replyError(tctx, err)
	}

	return tctx.Send(fmt.Sprintf("Product %d removed.", id))
}

func (b *Bot) refreshHandler(tctx telebot.Context) error {
	id, ok := parseID(tctx)
	if !ok {
		return tctx.Send("Usage: /refresh <id>")
	}

	product, err := b.client.Products.Refresh(context.Background(), id)
	if err != nil {
		return b.replyError(tctx, err)
	}

	return tctx.Send("Refreshed:\n" + renderProduct(product))
}

func (b *Bot) selectHandler(tctx telebot.Context) error {
	id, ok := parseID(tctx)
	if !ok {
		return tctx.Send("Usage: /select <id>")
	}

	if err := b.client.Detail.Select(context.Background(), id); err != nil {
		return b.replyError(tctx, err)
	}

	return tctx.Send(fmt.Sprintf("Selected product %d. Use /history and /alerts.", id))
}

func (b *Bot) deselectHandler(tctx telebot.Context) error {
	b.client.Detail.Deselect()

	return tctx.Send("Selection cleared.")
}

func (b *Bot) windowHandler(tctx telebot.Context) error {
	days, err := strconv.Atoi(strings.TrimSpace(tctx.Message().Payload))
	if err != nil {
		return tctx.Send("Usage: /window <7|30|90|180|365>")
	}

	if err = b.client.Detail.SetWindow(context.Background(), days); err != nil {
		return b.replyError(tctx, err)
	}

	return tctx.Send(fmt.Sprintf("History window set to %d days.", days))
}

func (b *Bot) historyHandler(tctx telebot.Context) error {
	if _, ok := b.client.Detail.SelectedID(); !ok {
		return tctx.Send("No product selected. Use /select <id>.")
	}

	points := b.client.Detail.History()
	if len(points) == 0 {
		return tctx.Send("No price history in this window.")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Last %d days:\n", b.client.Detail.WindowDays())
	for _, pt := range points {
		fmt.Fprintf(&sb, "%s  %.2f\n", pt.Timestamp.Format("2006-01-02 15:04"), pt.Price)
	}

	return tctx.Send(sb.String())
}

func (b *Bot) alertsHandler(tctx telebot.Context) error {
	if _, ok := b.client.Detail.SelectedID(); !ok {
		return tctx.Send("No product selected. Use /select <id>.")
	}

	alerts := b.client.Detail.Alerts()
	if len(alerts) == 0 {
		return tctx.Send("No alerts for this product. Use /alert <target price>.")
	}

	var sb strings.Builder
	for _, a := range alerts {
		fmt.Fprintf(&sb, "#%d  notify at %.2f\n", a.ID, a.TargetPrice)
	}

	return tctx.Send(sb.String())
}

func (b *Bot) alertHandler(tctx telebot.Context) error {
	target, err := strconv.ParseFloat(strings.TrimSpace(tctx.Message().Payload), 64)
	if err != nil {
		return tctx.Send("Usage: /alert <target price>")
	}

	alert, err := b.client.Alerts.Create(context.Background(), target)
	if err != nil {
		return b.replyError(tctx, err)
	}

	return tctx.Send(fmt.Sprintf("Alert #%d created: notify at %.2f.", alert.ID, alert.TargetPrice))
}

func (b *Bot) delAlertHandler(tctx telebot.Context) error {
	id, ok := parseID(tctx)
	if !ok {
		return tctx.Send("Usage: /delalert <id>")
	}

	if err := b.client.Alerts.Delete(context.Background(), id); err != nil {
		return b.replyError(tctx, err)
	}

	return tctx.Send(fmt.Sprintf("Alert %d deleted.", id))
}

func (b *Bot) testAlertHandler(tctx telebot.Context) error {
	if err := b.client.Alerts.TestNotification(context.Background()); err != nil {
		return b.replyError(tctx, err)
	}

	return tctx.Send("Test notification sent, check your inbox.")
}

func (b *Bot) dismissHandler(tctx telebot.Context) error {
	b.client.Errors.Dismiss()

	return tctx.Send("Error dismissed.")
}

// replyError renders an operation failure to the user. Remote failures are
// already reflected in the engine's error channel; validation failures are
// shown directly.
func (b *Bot) replyError(tctx telebot.Context, err error) error {
	if apperr.IsValidation(err) {
		return tctx.Send(err.Error())
	}

	if msg, ok := b.client.Errors.Message(); ok {
		return tctx.Send("Error: " + msg)
	}

	return tctx.Send("Error: " + err.Error())
}

func parseID(tctx telebot.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(tctx.Message().Payload), 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}

// renderProduct formats one product line the way the dashboard shows it,
// including the discount share when an original price is known.
func renderProduct(p models.Product) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s: %s%.2f", p.ID, p.Name, p.Currency, p.CurrentPrice)

	if pct, ok := p.DiscountPercent(); ok {
		fmt.Fprintf(&sb, " (-%d%%)", pct)
	}

	if !p.InStock {
		sb.WriteString(" [out of stock]")
	}

	return sb.String()
}
