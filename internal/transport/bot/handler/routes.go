package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"fx_desk/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	// Все команды только для администратора: бот ходит в живой учёт.
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))

	// /rate <из> <в> <сумма> — расчёт курса
	adminGroup.HandleMessage(h.OnRate, th.CommandEqual("rate"))

	// /rates — текущая конфигурация прайсинга
	adminGroup.HandleMessage(h.OnRates, th.CommandEqual("rates"))

	// /balances — инвентарь кураторов
	adminGroup.HandleMessage(h.OnBalances, th.CommandEqual("balances"))

	// /deals — ожидающие сделки
	adminGroup.HandleMessage(h.OnDeals, th.CommandEqual("deals"))

	// /refresh — принудительная перечитка конфигурации
	adminGroup.HandleMessage(h.OnRefresh, th.CommandEqual("refresh"))
}
