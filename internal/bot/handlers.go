package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/example/drtempus/internal/ui"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.HandleMessage(ctx, update.Message)
	}
	if err != nil {
		log.Printf("Error handling update %d: %v", update.UpdateID, err)
	}
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}
	if !b.isAllowed(message.From.ID) {
		b.sendText(message.Chat.ID, "Este quiz é de uso individual.")
		return nil
	}

	switch message.Command() {
	case "start":
		return b.handleStart(message)
	case "sair":
		return b.handleQuit(message.Chat.ID)
	case "historico":
		return b.handleHistory(ctx, message)
	case "help", "ajuda":
		b.sendText(message.Chat.ID, helpText)
		return nil
	default:
		b.sendText(message.Chat.ID, "Comando desconhecido. Envie /ajuda para ver os comandos.")
		return nil
	}
}

const helpText = "📖 Comandos\n\n" +
	"/start - abre a tela inicial do quiz\n" +
	"/sair - encerra o quiz\n" +
	"/historico - mostra suas últimas partidas\n\n" +
	"Durante o quiz, responda a cada pergunta com uma mensagem de texto " +
	"ou use o botão Pular."

func (b *Bot) handleStart(message *tgbotapi.Message) error {
	ctrl, err := b.newQuiz(message.Chat.ID, playerName(message.From))
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	log.Printf("Quiz opened in chat %d for user %d", message.Chat.ID, message.From.ID)
	return ctrl.Open()
}

func (b *Bot) handleQuit(chatID int64) error {
	ctrl, ok := b.controller(chatID)
	if !ok {
		b.sendText(chatID, "Nenhum quiz em andamento. Envie /start para começar.")
		return nil
	}
	err := ctrl.Quit()
	b.forget(chatID, ctrl)
	if errors.Is(err, ui.ErrInvalidTransition) {
		return nil
	}
	return err
}

// historyLimit is how many past runs /historico lists
const historyLimit = 5

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	if b.history == nil {
		b.sendText(chatID, "O histórico de partidas não está ativado.")
		return nil
	}

	player := playerName(message.From)
	results, err := b.history.GetRecent(ctx, player, historyLimit)
	if err != nil {
		b.sendText(chatID, "❌ Não foi possível carregar o histórico.")
		return fmt.Errorf("failed to get history for %s: %w", player, err)
	}
	if len(results) == 0 {
		b.sendText(chatID, "Você ainda não terminou nenhuma partida. Envie /start para jogar.")
		return nil
	}

	best, err := b.history.BestScore(ctx, player)
	if err != nil {
		b.sendText(chatID, "❌ Não foi possível carregar o histórico.")
		return fmt.Errorf("failed to get best score for %s: %w", player, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📜 Últimas partidas\n\nMelhor pontuação: %d\n", best)
	for _, r := range results {
		fmt.Fprintf(&sb, "\n%s - %d / %d (%d puladas)",
			r.FinishedAt.Local().Format("02/01/2006 15:04"), r.Score, r.Total, r.Skipped)
	}
	b.sendText(chatID, sb.String())
	return nil
}

// HandleMessage treats plain text as an answer to the question on screen
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}
	chatID := message.Chat.ID
	if !b.isAllowed(message.From.ID) {
		b.sendText(chatID, "Este quiz é de uso individual.")
		return nil
	}

	ctrl, ok := b.controller(chatID)
	if !ok {
		b.sendText(chatID, "Envie /start para começar.")
		return nil
	}

	switch ctrl.State() {
	case ui.StateStart:
		b.sendText(chatID, "Toque em Começar para ver a primeira pergunta.")
		return nil
	case ui.StateFinished:
		b.sendText(chatID, "O quiz terminou. Toque em Recomeçar ou Sair.")
		return nil
	}

	err := ctrl.Submit(ctx, message.Text)
	if errors.Is(err, ui.ErrInvalidTransition) {
		return nil
	}
	return err
}

// HandleCallback handles inline button presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.Message.Chat == nil || callback.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	chatID := callback.Message.Chat.ID
	if !b.isAllowed(callback.From.ID) {
		b.answerCallback(callback, "Este quiz é de uso individual.")
		return nil
	}

	ctrl, ok := b.controller(chatID)
	if !ok {
		b.answerCallback(callback, "Envie /start para começar.")
		return nil
	}

	var err error
	switch callback.Data {
	case callbackBegin:
		err = ctrl.Begin()
	case callbackSkip:
		err = ctrl.Skip()
	case callbackRestart:
		err = ctrl.Restart()
	case callbackQuit:
		err = ctrl.Quit()
		b.forget(chatID, ctrl)
	default:
		b.answerCallback(callback, "⚠️ Ação desconhecida")
		return nil
	}

	if errors.Is(err, ui.ErrInvalidTransition) {
		b.answerCallback(callback, "Ação indisponível")
		return nil
	}
	// Always answer the callback query to remove the loading state
	b.answerCallback(callback, "")
	return err
}

func (b *Bot) answerCallback(callback *tgbotapi.CallbackQuery, text string) {
	if _, err := b.sender.Request(tgbotapi.NewCallback(callback.ID, text)); err != nil {
		log.Printf("Warning: Failed to answer callback: %v", err)
	}
}
