package bot

import (
	"fmt"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Constants for callback data
const (
	callbackBegin   = "begin"
	callbackSkip    = "skip"
	callbackRestart = "restart"
	callbackQuit    = "quit"
)

const startCaption = "🕰 Dr. Tempus - Desafio Histórico\n\n" +
	"Responda às perguntas de história com suas próprias palavras. " +
	"Cada resposta coerente vale pontos."

// chatView shows the quiz screens as messages in one chat
type chatView struct {
	sender     sender
	chatID     int64
	startImage string
	muted      atomic.Bool
}

// mute silences the view of a quiz that was replaced
func (v *chatView) mute() {
	v.muted.Store(true)
}

func (v *chatView) ShowStart() error {
	keyboard := createKeyboard([][]MenuButton{
		{{Text: "▶️ Começar", CallbackData: callbackBegin}},
	})

	if v.startImage != "" {
		photo := tgbotapi.NewPhoto(v.chatID, tgbotapi.FilePath(v.startImage))
		photo.Caption = startCaption
		photo.ReplyMarkup = keyboard
		return v.send(photo)
	}

	msg := tgbotapi.NewMessage(v.chatID, startCaption)
	msg.ReplyMarkup = keyboard
	return v.send(msg)
}

func (v *chatView) ShowQuestion(number int, text string) error {
	msg := tgbotapi.NewMessage(v.chatID, fmt.Sprintf("❓ Pergunta %d\n\n%s", number, text))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "⏭ Pular", CallbackData: callbackSkip}},
	})
	return v.send(msg)
}

func (v *chatView) ShowScore(total int) error {
	return v.send(tgbotapi.NewMessage(v.chatID, fmt.Sprintf("Pontuação: %d", total)))
}

func (v *chatView) ShowFinished(score, total int) error {
	msg := tgbotapi.NewMessage(v.chatID, fmt.Sprintf("🏁 Quiz finalizado!\n\nPontuação total: %d / %d", score, total))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{
			{Text: "🔄 Recomeçar", CallbackData: callbackRestart},
			{Text: "🚪 Sair", CallbackData: callbackQuit},
		},
	})
	return v.send(msg)
}

func (v *chatView) ShowWarning(title, message string) error {
	return v.send(tgbotapi.NewMessage(v.chatID, fmt.Sprintf("⚠️ %s\n%s", title, message)))
}

func (v *chatView) ShowError(message string) error {
	return v.send(tgbotapi.NewMessage(v.chatID, "❌ "+message))
}

func (v *chatView) Close() error {
	return v.send(tgbotapi.NewMessage(v.chatID, "Até logo! Envie /start para jogar de novo."))
}

func (v *chatView) send(c tgbotapi.Chattable) error {
	if v.muted.Load() {
		return nil
	}
	if _, err := v.sender.Send(c); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
