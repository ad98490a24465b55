package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/example/drtempus/internal/quiz"
	"github.com/example/drtempus/internal/scheduler"
	"github.com/example/drtempus/internal/ui"
	"github.com/example/drtempus/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the quiz needs
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ResultHistory reads back finished runs
type ResultHistory interface {
	GetRecent(ctx context.Context, player string, limit int) ([]models.QuizResult, error)
	BestScore(ctx context.Context, player string) (int, error)
}

// Bot presents the quiz in Telegram chats, one quiz per chat
type Bot struct {
	api      *tgbotapi.BotAPI
	sender   sender
	config   *BotConfig
	deps     quiz.Dependencies
	deferrer scheduler.Deferrer
	recorder ui.ResultRecorder
	history  ResultHistory
	allowed  map[int64]bool
	chats    map[int64]*chatQuiz
	mu       sync.Mutex
}

// chatQuiz is the quiz running in one chat
type chatQuiz struct {
	ctrl *ui.Controller
	view *chatView
}

// New creates a new bot instance connected to the Telegram API. recorder and history may be
// nil when no result store is configured.
func New(config *BotConfig, deps quiz.Dependencies, deferrer scheduler.Deferrer, recorder ui.ResultRecorder, history ResultHistory) (*Bot, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	botAPI, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	b := newBot(botAPI, config, deps, deferrer, recorder, history)
	b.api = botAPI
	return b, nil
}

func newBot(s sender, config *BotConfig, deps quiz.Dependencies, deferrer scheduler.Deferrer, recorder ui.ResultRecorder, history ResultHistory) *Bot {
	b := &Bot{
		sender:   s,
		config:   config,
		deps:     deps,
		deferrer: deferrer,
		recorder: recorder,
		history:  history,
		allowed:  make(map[int64]bool),
		chats:    make(map[int64]*chatQuiz),
	}
	for _, id := range config.AllowedUserIDs {
		b.allowed[id] = true
	}
	return b
}

// Start handles incoming updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return fmt.Errorf("bot is not connected")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Stop closes every running quiz
func (b *Bot) Stop() {
	b.mu.Lock()
	chats := b.chats
	b.chats = make(map[int64]*chatQuiz)
	b.mu.Unlock()

	for chatID, chat := range chats {
		if err := chat.ctrl.Quit(); err != nil {
			log.Printf("Error closing quiz in chat %d: %v", chatID, err)
		}
	}
	log.Println("Bot stopped")
}

// isAllowed checks if a user may play
func (b *Bot) isAllowed(userID int64) bool {
	return len(b.allowed) == 0 || b.allowed[userID]
}

// controller returns the quiz running in a chat
func (b *Bot) controller(chatID int64) (*ui.Controller, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	chat, ok := b.chats[chatID]
	if !ok {
		return nil, false
	}
	return chat.ctrl, true
}

// newQuiz replaces the quiz of a chat with a fresh one on the start screen
func (b *Bot) newQuiz(chatID int64, player string) (*ui.Controller, error) {
	session, err := quiz.NewSession(b.deps)
	if err != nil {
		return nil, err
	}

	view := &chatView{sender: b.sender, chatID: chatID, startImage: b.config.StartImage}
	ctrl := ui.NewController(session, view, ui.Options{
		MinAnswerLength: b.config.MinAnswerLength,
		NextDelay:       b.config.NextDelay,
		Deferrer:        b.deferrer,
		Recorder:        b.recorder,
		Player:          player,
	})

	b.mu.Lock()
	old := b.chats[chatID]
	b.chats[chatID] = &chatQuiz{ctrl: ctrl, view: view}
	b.mu.Unlock()

	// The replaced quiz is closed without a goodbye so its pending displays are dropped
	if old != nil && old.ctrl.State() != ui.StateClosed {
		old.view.mute()
		old.ctrl.Quit()
	}
	return ctrl, nil
}

// forget drops the quiz of a chat once it is closed
func (b *Bot) forget(chatID int64, ctrl *ui.Controller) {
	if ctrl.State() != ui.StateClosed {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if chat, ok := b.chats[chatID]; ok && chat.ctrl == ctrl {
		delete(b.chats, chatID)
	}
}

// sendText sends a plain message and logs failures
func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
}

// playerName returns the name results are recorded under
func playerName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return user.UserName
	}
	return strconv.FormatInt(user.ID, 10)
}
