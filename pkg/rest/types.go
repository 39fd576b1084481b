// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

// ConversionRequest Запрос расчёта курса. Fixed определяет, какая из сторон
// зафиксирована пользователем: give — известна отдаваемая сумма, receive —
// известна желаемая сумма к получению (обратный расчёт).
type ConversionRequest struct {
	From   string `json:"from" validate:"required,uppercase"`
	To     string `json:"to" validate:"required,uppercase"`
	Amount string `json:"amount" validate:"required"`
	Fixed  string `json:"fixed" validate:"omitempty,oneof=give receive"`
}

type Conversion struct {
	From       string `json:"from"`
	To         string `json:"to"`
	GiveAmount string `json:"giveAmount"`
	GetAmount  string `json:"getAmount"`
	Rate       string `json:"rate"`
	// MarginPercent Применённая маржа в процентах (для техпанели)
	MarginPercent string `json:"marginPercent"`
}

// RatesSnapshot Текущее состояние конфигурации прайсинга.
type RatesSnapshot struct {
	USDTEURRate   string       `json:"usdtEurRate"`
	RateSource    string       `json:"rateSource"`
	ObservedAt    string       `json:"observedAt"`
	RUBPerUSDT    string       `json:"rubPerUsdt"`
	RSDPerEUR     string       `json:"rsdPerEur"`
	SpreadPercent string       `json:"spreadPercent"`
	RUBTiers      []MarginTier `json:"rubTiers"`
	CrossTiers    []MarginTier `json:"crossTiers"`
}

type MarginTier struct {
	Min string `json:"min"`
	// Max Пустая строка означает неограниченный верхний предел
	Max           string `json:"max,omitempty"`
	MarginPercent string `json:"marginPercent"`
}

type Curator struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	TelegramUsername  string `json:"telegramUsername,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Notes             string `json:"notes,omitempty"`
	EURBalance        string `json:"eurBalance"`
	AvgEURCost        string `json:"avgEurCost"`
	TotalEURPurchased string `json:"totalEurPurchased"`
	TotalUSDTSpent    string `json:"totalUsdtSpent"`
	ProfitUSDT        string `json:"profitUsdt"`
	Active            bool   `json:"active"`
}

type CreateCuratorRequest struct {
	Name             string `json:"name" validate:"required,min=1,max=255"`
	TelegramUsername string `json:"telegramUsername" validate:"omitempty,max=255"`
	Phone            string `json:"phone" validate:"omitempty,max=64"`
	Notes            string `json:"notes" validate:"omitempty,max=1024"`
}

type UpdateCuratorRequest struct {
	Name             string `json:"name" validate:"required,min=1,max=255"`
	TelegramUsername string `json:"telegramUsername" validate:"omitempty,max=255"`
	Phone            string `json:"phone" validate:"omitempty,max=64"`
	Notes            string `json:"notes" validate:"omitempty,max=1024"`
	Active           bool   `json:"active"`
}

// PurchaseRequest Откуп: куратор купил EUR за USDT.
type PurchaseRequest struct {
	EURAmount string `json:"eurAmount" validate:"required"`
	USDTSpent string `json:"usdtSpent" validate:"required"`
	Note      string `json:"note" validate:"omitempty,max=1024"`
}

type Purchase struct {
	ID        int64  `json:"id"`
	CuratorID int64  `json:"curatorId"`
	EURAmount string `json:"eurAmount"`
	USDTSpent string `json:"usdtSpent"`
	Rate      string `json:"rate"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type CreateDealRequest struct {
	FromCurrency  string `json:"fromCurrency" validate:"required,uppercase"`
	ToCurrency    string `json:"toCurrency" validate:"required,uppercase"`
	GiveAmount    string `json:"giveAmount" validate:"required"`
	ReceiveAmount string `json:"receiveAmount" validate:"required"`
	Rate          string `json:"rate" validate:"required"`
	ClientContact string `json:"clientContact" validate:"required,max=255"`
	Note          string `json:"note" validate:"omitempty,max=1024"`
}

// SettlementRequest Закрытие сделки против инвентаря конкретного куратора.
type SettlementRequest struct {
	CuratorID    int64  `json:"curatorId" validate:"required,gt=0"`
	EURGiven     string `json:"eurGiven" validate:"required"`
	USDTReceived string `json:"usdtReceived" validate:"required"`
	ActualRate   string `json:"actualRate" validate:"omitempty"`
}

type Deal struct {
	ID               int64  `json:"id"`
	Direction        string `json:"direction"`
	ClientContact    string `json:"clientContact"`
	RequestedGive    string `json:"requestedGive"`
	RequestedReceive string `json:"requestedReceive"`
	RequestedRate    string `json:"requestedRate"`
	CuratorID        *int64 `json:"curatorId,omitempty"`
	EURGiven         string `json:"eurGiven,omitempty"`
	USDTReceived     string `json:"usdtReceived,omitempty"`
	ActualRate       string `json:"actualRate,omitempty"`
	EURCostAtDeal    string `json:"eurCostAtDeal,omitempty"`
	ProfitTotal      string `json:"profitTotal,omitempty"`
	ProfitCurator    string `json:"profitCurator,omitempty"`
	ProfitAgency     string `json:"profitAgency,omitempty"`
	Status           string `json:"status"`
	Note             string `json:"note,omitempty"`
	CreatedAt        string `json:"createdAt"`
	CompletedAt      string `json:"completedAt,omitempty"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
