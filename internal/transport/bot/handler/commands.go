package handler

import (
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	"github.com/shopspring/decimal"

	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/value"
)

const startMessage = `👋 <b>Панель обменника</b>

Команды:
/rate &lt;из&gt; &lt;в&gt; &lt;сумма&gt; — расчёт курса (RUB, EUR, USDT, RSD)
/rates — текущая конфигурация прайсинга
/balances — балансы кураторов
/deals — ожидающие сделки
/refresh — перечитать конфигурацию`

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, startMessage)
}

// OnRate считает курс: /rate usdt eur 1000
func (h *Handler) OnRate(ctx *th.Context, msg telego.Message) error {
	parts := strings.Fields(msg.Text)
	if len(parts) != 4 {
		return h.sendHTML(ctx, msg.Chat.ID, "Формат: <code>/rate usdt eur 1000</code>")
	}

	pair, err := value.NewPair(parts[1], parts[2])
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf("⚠️ %v", err))
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(parts[3], ",", "."))
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf("⚠️ не понял сумму %q", parts[3]))
	}

	conversion, err := h.calc.Convert(ctx, pair, amount)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf("⚠️ %v", err))
	}

	text := fmt.Sprintf(
		"💱 <b>%s</b>\n\nОтдаёт: %s %s\nПолучает: %s %s\nКурс: %s\nМаржа: %s%%",
		conversion.Pair,
		conversion.GiveAmount.StringFixed(2), conversion.Pair.From,
		conversion.GetAmount.StringFixed(2), conversion.Pair.To,
		conversion.Rate.StringFixed(6),
		conversion.MarginPercent,
	)

	return h.sendHTML(ctx, msg.Chat.ID, text)
}

func (h *Handler) OnRates(ctx *th.Context, msg telego.Message) error {
	cfg, err := h.refresher.Refresh(ctx)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf("⚠️ конфигурация недоступна: %v", err))
	}

	fix := "выключен"
	if cfg.HasFixRate() {
		fix = cfg.FixUSDTEUR.Decimal.String()
	}

	text := fmt.Sprintf(
		"⚙️ <b>Конфигурация прайсинга</b>\n\n"+
			"RUB за USDT: %s\n"+
			"RSD за EUR: %s\n"+
			"Спред: %s%%\n"+
			"FIX-курс: %s\n"+
			"Тиров RUB: %d, кросс: %d",
		cfg.RUBPerUSDT, cfg.RSDPerEUR, cfg.SpreadPercent, fix,
		len(cfg.RUBTiers), len(cfg.CrossTiers),
	)

	return h.sendHTML(ctx, msg.Chat.ID, text)
}

func (h *Handler) OnBalances(ctx *th.Context, msg telego.Message) error {
	curators, err := h.ledger.ListCurators(ctx, false)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf("⚠️ %v", err))
	}

	if len(curators) == 0 {
		return h.sendHTML(ctx, msg.Chat.ID, "Кураторов пока нет")
	}

	var b strings.Builder

	b.WriteString("💼 <b>Балансы кураторов</b>\n")

	for _, curator := range curators {
		status := "🟢"
		if !curator.Active {
			status = "🔴"
		}

		fmt.Fprintf(&b, "\n%s <b>%s</b>\n", status, curator.Name)
		fmt.Fprintf(&b, "  EUR: %s, себестоимость: %s\n",
			curator.EURBalance.StringFixed(2), curator.AvgEURCost.StringFixed(4))
		fmt.Fprintf(&b, "  Прибыль: %s USDT\n", curator.ProfitUSDT.StringFixed(2))
	}

	return h.sendHTML(ctx, msg.Chat.ID, b.String())
}

func (h *Handler) OnDeals(ctx *th.Context, msg telego.Message) error {
	deals, err := h.ledger.ListDeals(ctx, entity.DealFilter{
		Status: entity.DealPending,
		Limit:  20,
	})
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf("⚠️ %v", err))
	}

	if len(deals) == 0 {
		return h.sendHTML(ctx, msg.Chat.ID, "Ожидающих сделок нет")
	}

	var b strings.Builder

	b.WriteString("📋 <b>Ожидающие сделки</b>\n")

	for _, deal := range deals {
		fmt.Fprintf(&b, "\n#%d %s\n", deal.ID, deal.Direction)
		fmt.Fprintf(&b, "  %s %s → %s %s (курс %s)\n",
			deal.RequestedGiveAmount.StringFixed(2), deal.RequestedGiveCurrency,
			deal.RequestedGetAmount.StringFixed(2), deal.RequestedGetCurrency,
			deal.RequestedRate.StringFixed(6),
		)

		if deal.ClientContact != "" {
			fmt.Fprintf(&b, "  Контакт: %s\n", deal.ClientContact)
		}
	}

	return h.sendHTML(ctx, msg.Chat.ID, b.String())
}

func (h *Handler) OnRefresh(ctx *th.Context, msg telego.Message) error {
	cfg, err := h.refresher.Refresh(ctx)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf("⚠️ %v", err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(
		"✅ Конфигурация обновлена (RUB %s, RSD %s, спред %s%%)",
		cfg.RUBPerUSDT, cfg.RSDPerEUR, cfg.SpreadPercent,
	))
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeHTML,
	})

	return err
}
