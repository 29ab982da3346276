package messaging

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/salamatyar/salamatbot/internal/models"
)

// Button labels.
const (
	labelConsult    = "🩺 Consult a doctor"
	labelJoinClub   = "⭐ Join the health club"
	labelProfile    = "👤 My profile"
	labelTip        = "💡 Wellness tip"
	labelCatalog    = "🛍 Product catalog"
	labelBackToMenu = "⬅️ Main menu"
	labelFemale     = "Female"
	labelMale       = "Male"
	labelYes        = "✅ Yes"
	labelNo         = "❌ No"
	labelEditName   = "✏️ Edit name"
	labelCancelClub = "🚫 Cancel membership"
	labelNewTopic   = "🆕 New question"
)

// markupFor maps a keyboard spec to its Telegram inline keyboard, or nil
// for KeyboardNone.
func markupFor(spec KeyboardSpec) *tgbotapi.InlineKeyboardMarkup {
	var markup tgbotapi.InlineKeyboardMarkup
	switch spec {
	case KeyboardMainMenu:
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelConsult, models.PayloadConsult),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelJoinClub, models.PayloadJoinClub),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelCatalog, models.PayloadCatalog),
			),
		)
	case KeyboardMainMenuMember:
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelConsult, models.PayloadConsult),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelProfile, models.PayloadViewProfile),
				tgbotapi.NewInlineKeyboardButtonData(labelTip, models.PayloadWellnessTip),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelCatalog, models.PayloadCatalog),
			),
		)
	case KeyboardBackToMenu:
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelBackToMenu, models.PayloadBackToMenu),
			),
		)
	case KeyboardGender:
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelFemale, models.PayloadGenderFemale),
				tgbotapi.NewInlineKeyboardButtonData(labelMale, models.PayloadGenderMale),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelBackToMenu, models.PayloadBackToMenu),
			),
		)
	case KeyboardYesNo:
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelYes, models.PayloadYes),
				tgbotapi.NewInlineKeyboardButtonData(labelNo, models.PayloadNo),
			),
		)
	case KeyboardProfileView:
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelEditName, models.PayloadEditName),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelCancelClub, models.PayloadCancelMembership),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelBackToMenu, models.PayloadBackToMenu),
			),
		)
	case KeyboardDoctor:
		markup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(labelNewTopic, models.PayloadNewQuestion),
				tgbotapi.NewInlineKeyboardButtonData(labelBackToMenu, models.PayloadBackToMenu),
			),
		)
	default:
		return nil
	}
	return &markup
}
