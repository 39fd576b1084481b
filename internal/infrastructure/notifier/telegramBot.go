package notifier

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/service/ledger"
	"fx_desk/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// TelegramBot шлёт сводки по движениям учёта в служебный чат.
type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Run читает события учёта из канала до отмены контекста. Отказ доставки
// не останавливает поток: уведомления вторичны к самому учёту.
func (b *TelegramBot) Run(ctx context.Context, events <-chan ledger.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := b.send(ctx, event); err != nil {
				logger(ctx).Error("failed to send notification", "kind", event.Kind, "error", err)
			}
		}
	}
}

func (b *TelegramBot) send(ctx context.Context, event ledger.Event) error {
	text := renderEvent(event)
	if text == "" {
		return nil
	}

	msg := tu.Message(
		tu.ID(b.chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	_, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

func renderEvent(event ledger.Event) string {
	switch event.Kind {
	case ledger.EventDealCreated:
		return renderDealCreated(event.Deal)
	case ledger.EventDealSettled:
		return renderDealSettled(event.Deal, event.Curator)
	case ledger.EventDealCancelled:
		return fmt.Sprintf("🚫 Сделка #%d отменена", event.Deal.ID)
	case ledger.EventPurchaseRecorded:
		return renderPurchase(event.Purchase, event.Curator)
	default:
		return ""
	}
}

func renderDealCreated(deal *entity.Deal) string {
	return fmt.Sprintf(
		"📥 <b>Новая заявка #%d</b>\n\n"+
			"Направление: %s\n"+
			"Отдаёт: %s %s\n"+
			"Получает: %s %s\n"+
			"Курс: %s\n"+
			"Контакт: %s",
		deal.ID,
		deal.Direction,
		deal.RequestedGiveAmount, deal.RequestedGiveCurrency,
		deal.RequestedGetAmount, deal.RequestedGetCurrency,
		deal.RequestedRate,
		deal.ClientContact,
	)
}

func renderDealSettled(deal *entity.Deal, curator *entity.Curator) string {
	return fmt.Sprintf(
		"✅ <b>Сделка #%d закрыта</b>\n\n"+
			"Куратор: %s\n"+
			"Выдано: %s EUR\n"+
			"Получено: %s USDT\n"+
			"Прибыль: %s USDT (куратор %s / агентство %s)\n"+
			"Остаток куратора: %s EUR",
		deal.ID,
		curator.Name,
		deal.EURGiven.Decimal,
		deal.USDTReceived.Decimal,
		deal.ProfitTotal.Decimal, deal.ProfitCurator.Decimal, deal.ProfitAgency.Decimal,
		curator.EURBalance,
	)
}

func renderPurchase(purchase *entity.Purchase, curator *entity.Curator) string {
	return fmt.Sprintf(
		"💶 <b>Откуп</b>\n\n"+
			"Куратор: %s\n"+
			"Куплено: %s EUR за %s USDT (курс %s)\n"+
			"Баланс: %s EUR, себестоимость %s",
		curator.Name,
		purchase.EURAmount, purchase.USDTSpent, purchase.Rate,
		curator.EURBalance, curator.AvgEURCost,
	)
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}
