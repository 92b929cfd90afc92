// internal/pkg/i18n/i18n.go
package i18n

import (
	"fmt"
	"strings"
)

// Locale identifies a translation table
type Locale string

// LocaleRU is the only locale the storefront ships with
const LocaleRU Locale = "ru"

// Params are substituted into {name} placeholders
type Params map[string]interface{}

var translations = map[Locale]map[string]string{
	LocaleRU: {
		"common.loading": "Загрузка...",
		"common.error":   "Ошибка",
		"common.success": "Успешно",

		"navigation.home":    "Главная",
		"navigation.catalog": "Каталог",
		"navigation.profile": "Профиль",
		"navigation.cart":    "Корзина",
		"navigation.admin":   "Админ",

		"home.title":        "Добро пожаловать в Game Donate Shop",
		"home.subtitle":     "Покупайте донат для любимых игр быстро и безопасно",
		"home.popularGames": "Популярные игры",

		"catalog.title":            "Каталог игр",
		"catalog.foundGames":       "Найдено игр: {count}",
		"catalog.foundProducts":    "Найдено товаров: {count}",
		"catalog.nothingFound":     "Ничего не найдено",
		"catalog.nothingFoundDesc": "По запросу \"{query}\" ничего не найдено. Попробуйте изменить поисковый запрос.",

		"products.addedToCart": "Добавлено {count} шт. в корзину",
		"products.notFound":    "Товар не найден",
		"products.loadError":   "Ошибка загрузки товара",
		"products.outOfStock":  "Нет в наличии",

		"cart.title":       "Корзина",
		"cart.empty":       "Корзина пуста",
		"cart.emptyDesc":   "Добавьте товары в корзину для оформления заказа",
		"cart.cleared":     "Корзина очищена",
		"cart.itemRemoved": "Товар удален из корзины",
		"cart.updated":     "Корзина обновлена",
		"cart.maxQuantity": "Максимальное количество: {max} шт.",

		"checkout.title":             "Оформление заказа",
		"checkout.orderConfirmed":    "Заказ успешно оформлен!",
		"checkout.orderFailed":       "Ошибка при оформлении заказа",
		"checkout.promoApplied":      "Промокод применен!",
		"checkout.promoFailed":       "Ошибка при применении промокода",
		"checkout.promoRequired":     "Введите промокод",
		"checkout.paymentCard":       "Банковская карта",
		"checkout.paymentCardDesc":   "Visa, MasterCard, МИР",
		"checkout.paymentWallet":     "Электронный кошелек",
		"checkout.paymentWalletDesc": "ЮMoney, QIWI, WebMoney",

		"profile.loggedOut":         "Вы вышли из аккаунта",
		"profile.updated":           "Профиль обновлен",
		"profile.topUpSoon":         "Функция пополнения баланса в разработке",
		"profile.orderHistoryEmpty": "История заказов пуста",

		"admin.created":  "Запись создана",
		"admin.updated":  "Запись обновлена",
		"admin.deleted":  "Запись удалена",
		"admin.uploaded": "Файл загружен",
		"admin.tooLarge": "Файл слишком большой, максимум {max}",

		"orderStatus.pending":    "Ожидает оплаты",
		"orderStatus.processing": "В обработке",
		"orderStatus.completed":  "Выполнен",
		"orderStatus.cancelled":  "Отменен",
		"orderStatus.error":      "Ошибка",

		"paymentStatus.pending": "Ожидает оплаты",
		"paymentStatus.paid":    "Оплачен",
		"paymentStatus.failed":  "Ошибка оплаты",

		"relative.today":     "Сегодня",
		"relative.yesterday": "Вчера",
		"relative.daysAgo":   "{days} дней назад",

		"validation.minLength":      "Минимальная длина: {min} символов",
		"validation.maxLength":      "Максимальная длина: {max} символов",
		"validation.invalidURL":     "Неверный формат URL",
		"validation.positiveNumber": "Значение должно быть положительным числом",
		"validation.integer":        "Значение должно быть целым числом",
		"validation.pattern":        "Неверный формат",

		"errors.required":        "Это поле обязательно для заполнения",
		"errors.invalidEmail":    "Неверный формат email",
		"errors.invalidPhone":    "Неверный формат телефона",
		"errors.invalidPrice":    "Неверная цена",
		"errors.invalidImage":    "Неверный формат изображения",
		"errors.networkError":    "Ошибка сети",
		"errors.serverError":     "Ошибка сервера",
		"errors.unauthorized":    "Не авторизован",
		"errors.forbidden":       "Доступ запрещен",
		"errors.notFound":        "Не найдено",
		"errors.validationError": "Ошибка валидации",
		"errors.generic":         "Произошла ошибка",
		"errors.timeout":         "Превышено время ожидания ответа",
	},
}

// Translator resolves keys for one locale
type Translator struct {
	locale Locale
}

// New creates a translator for the locale, falling back to ru for unknown locales
func New(locale Locale) *Translator {
	if _, ok := translations[locale]; !ok {
		locale = LocaleRU
	}
	return &Translator{locale: locale}
}

var defaultTranslator = New(LocaleRU)

// T translates a key with the default translator
func T(key string, params ...Params) string {
	return defaultTranslator.T(key, params...)
}

// Locale returns the active locale
func (t *Translator) Locale() Locale {
	return t.locale
}

// T returns the translation for key, or the key itself when missing
func (t *Translator) T(key string, params ...Params) string {
	text, ok := translations[t.locale][key]
	if !ok {
		return key
	}

	for _, p := range params {
		for name, value := range p {
			text = strings.ReplaceAll(text, "{"+name+"}", fmt.Sprint(value))
		}
	}
	return text
}

// Has reports whether the key exists in the active locale
func (t *Translator) Has(key string) bool {
	_, ok := translations[t.locale][key]
	return ok
}
