package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Прайсинг
	QuoteUnavailable failure.ErrorCode = "QuoteUnavailable" // Котировка недоступна и кэш пуст
	InvalidAmount    failure.ErrorCode = "InvalidAmount"    // Неположительная или мусорная сумма
	UnsupportedPair  failure.ErrorCode = "UnsupportedPair"  // Направление обмена не поддерживается
	ConfigMissing    failure.ErrorCode = "ConfigMissing"    // Таблица маржи не загружена, работаем на дефолтах

	// Леджер кураторов и сделки
	CuratorNotFound     failure.ErrorCode = "CuratorNotFound"
	CuratorInactive     failure.ErrorCode = "CuratorInactive"
	DealNotFound        failure.ErrorCode = "DealNotFound"
	InvalidDealState    failure.ErrorCode = "InvalidDealState"    // Попытка перевести сделку из терминального статуса
	InsufficientBalance failure.ErrorCode = "InsufficientBalance" // У куратора не хватает валюты на выдачу
)
