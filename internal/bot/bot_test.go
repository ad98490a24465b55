package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"github.com/example/drtempus/internal/quiz"
	"github.com/example/drtempus/internal/scheduler"
	"github.com/example/drtempus/internal/ui"
	"github.com/example/drtempus/pkg/models"
)

// fakeSender records what the bot sends instead of calling Telegram
type fakeSender struct {
	mu        sync.Mutex
	messages  []string
	callbacks []string
	keyboards []tgbotapi.InlineKeyboardMarkup
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		s.messages = append(s.messages, m.Text)
		if kb, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
			s.keyboards = append(s.keyboards, kb)
		}
	case tgbotapi.PhotoConfig:
		s.messages = append(s.messages, "photo: "+m.Caption)
	default:
		return tgbotapi.Message{}, fmt.Errorf("unexpected chattable %T", c)
	}
	return tgbotapi.Message{}, nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		s.callbacks = append(s.callbacks, cb.Text)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *fakeSender) lastMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

func (s *fakeSender) lastCallback() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.callbacks) == 0 {
		return ""
	}
	return s.callbacks[len(s.callbacks)-1]
}

type acceptAll struct{}

func (acceptAll) Predict(context.Context, string) (int, error) { return quiz.LabelAcceptable, nil }

const (
	chatID = int64(100)
	userID = int64(7)
)

func newTestBot(t *testing.T, allowed ...int64) (*Bot, *fakeSender) {
	t.Helper()
	config := DefaultConfig()
	config.AllowedUserIDs = allowed
	config.NextDelay = -1

	deps := quiz.Dependencies{
		Questions: []models.Question{
			{Text: "Quem proclamou a república?", ExpectedAnswer: "Deodoro da Fonseca"},
			{Text: "Em que ano acabou a escravidão?", ExpectedAnswer: "1888"},
		},
		Classifier: acceptAll{},
	}
	s := &fakeSender{}
	return newBot(s, config, deps, scheduler.Immediate{}, nil, nil), s
}

func command(from int64, text string) tgbotapi.Update {
	name := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: from, UserName: "ana"},
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}}
}

func text(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: from},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}}
}

func press(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func TestQuizThroughChat(t *testing.T) {
	b, s := newTestBot(t)
	ctx := context.Background()

	b.handleUpdate(ctx, command(userID, "/start"))
	require.Contains(t, s.lastMessage(), "Dr. Tempus")
	begin := s.keyboards[0].InlineKeyboard[0][0]
	require.NotNil(t, begin.CallbackData)
	require.Equal(t, callbackBegin, *begin.CallbackData)

	b.handleUpdate(ctx, press(userID, callbackBegin))
	require.Contains(t, s.lastMessage(), "Quem proclamou a república?")
	require.Equal(t, "", s.lastCallback())

	b.handleUpdate(ctx, text(userID, "Foi o marechal Deodoro da Fonseca"))
	require.Contains(t, s.messages, "Pontuação: 1")
	require.Contains(t, s.lastMessage(), "Em que ano acabou a escravidão?")

	b.handleUpdate(ctx, press(userID, callbackSkip))
	require.Contains(t, s.lastMessage(), "Pontuação total: 1 / 2")

	ctrl, ok := b.controller(chatID)
	require.True(t, ok)
	require.Equal(t, ui.StateFinished, ctrl.State())

	b.handleUpdate(ctx, press(userID, callbackQuit))
	require.Contains(t, s.lastMessage(), "Até logo!")
	_, ok = b.controller(chatID)
	require.False(t, ok)
}

func TestShortAnswerInChatWarns(t *testing.T) {
	b, s := newTestBot(t)
	ctx := context.Background()

	b.handleUpdate(ctx, command(userID, "/start"))
	b.handleUpdate(ctx, press(userID, callbackBegin))
	b.handleUpdate(ctx, text(userID, "sim"))

	require.Contains(t, s.lastMessage(), "Resposta inválida")
	require.Contains(t, s.lastMessage(), "pelo menos 10 caracteres")
}

func TestUnavailableActionIsAnswered(t *testing.T) {
	b, s := newTestBot(t)
	ctx := context.Background()

	b.handleUpdate(ctx, press(userID, callbackBegin))
	require.Equal(t, "Envie /start para começar.", s.lastCallback())

	b.handleUpdate(ctx, command(userID, "/start"))
	b.handleUpdate(ctx, press(userID, callbackRestart))
	require.Equal(t, "Ação indisponível", s.lastCallback())

	b.handleUpdate(ctx, press(userID, "unknown"))
	require.Contains(t, s.lastCallback(), "Ação desconhecida")
}

func TestTextOutsideQuizGetsHint(t *testing.T) {
	b, s := newTestBot(t)
	ctx := context.Background()

	b.handleUpdate(ctx, text(userID, "olá, quero jogar"))
	require.Equal(t, "Envie /start para começar.", s.lastMessage())

	b.handleUpdate(ctx, command(userID, "/start"))
	b.handleUpdate(ctx, text(userID, "olá, quero jogar"))
	require.Contains(t, s.lastMessage(), "Começar")
}

func TestRestartingReplacesQuizSilently(t *testing.T) {
	b, s := newTestBot(t)
	ctx := context.Background()

	b.handleUpdate(ctx, command(userID, "/start"))
	b.handleUpdate(ctx, press(userID, callbackBegin))
	first, _ := b.controller(chatID)

	b.handleUpdate(ctx, command(userID, "/start"))
	second, _ := b.controller(chatID)

	require.NotSame(t, first, second)
	require.Equal(t, ui.StateClosed, first.State())
	require.Equal(t, ui.StateStart, second.State())
	for _, msg := range s.messages {
		require.NotContains(t, msg, "Até logo!")
	}
}

func TestAllowedUsers(t *testing.T) {
	b, s := newTestBot(t, userID)
	ctx := context.Background()

	b.handleUpdate(ctx, command(99, "/start"))
	require.Equal(t, "Este quiz é de uso individual.", s.lastMessage())
	_, ok := b.controller(chatID)
	require.False(t, ok)

	b.handleUpdate(ctx, command(userID, "/start"))
	_, ok = b.controller(chatID)
	require.True(t, ok)
}

func TestQuitCommand(t *testing.T) {
	b, s := newTestBot(t)
	ctx := context.Background()

	b.handleUpdate(ctx, command(userID, "/sair"))
	require.Contains(t, s.lastMessage(), "Nenhum quiz em andamento")

	b.handleUpdate(ctx, command(userID, "/start"))
	b.handleUpdate(ctx, command(userID, "/sair"))
	require.Contains(t, s.lastMessage(), "Até logo!")
	_, ok := b.controller(chatID)
	require.False(t, ok)
}

func TestStartImageIsSentAsPhoto(t *testing.T) {
	b, s := newTestBot(t)
	b.config.StartImage = "assets/tempus.png"

	b.handleUpdate(context.Background(), command(userID, "/start"))
	require.True(t, strings.HasPrefix(s.lastMessage(), "photo: "))
}

func TestCallbackWithoutChatIsRejected(t *testing.T) {
	b, s := newTestBot(t)

	update := press(userID, callbackBegin)
	update.CallbackQuery.Message.Chat = nil

	err := b.HandleCallback(context.Background(), update.CallbackQuery)
	require.Error(t, err)
	require.Empty(t, s.callbacks)
	require.Empty(t, s.messages)
}

// memoryStore keeps finished runs in memory, newest last
type memoryStore struct {
	results []models.QuizResult
}

func (m *memoryStore) Record(_ context.Context, result *models.QuizResult) error {
	m.results = append(m.results, *result)
	return nil
}

func (m *memoryStore) GetRecent(_ context.Context, player string, limit int) ([]models.QuizResult, error) {
	var out []models.QuizResult
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		if m.results[i].Player == player {
			out = append(out, m.results[i])
		}
	}
	return out, nil
}

func (m *memoryStore) BestScore(_ context.Context, player string) (int, error) {
	best := 0
	for _, r := range m.results {
		if r.Player == player && r.Score > best {
			best = r.Score
		}
	}
	return best, nil
}

func TestHistoryCommand(t *testing.T) {
	b, s := newTestBot(t)
	store := &memoryStore{}
	b.recorder = store
	b.history = store
	ctx := context.Background()

	b.handleUpdate(ctx, command(userID, "/historico"))
	require.Contains(t, s.lastMessage(), "ainda não terminou nenhuma partida")

	b.handleUpdate(ctx, command(userID, "/start"))
	b.handleUpdate(ctx, press(userID, callbackBegin))
	b.handleUpdate(ctx, text(userID, "Foi o marechal Deodoro da Fonseca"))
	b.handleUpdate(ctx, press(userID, callbackSkip))

	require.Len(t, store.results, 1)
	require.Equal(t, "ana", store.results[0].Player)

	store.results = append(store.results, models.QuizResult{
		Player:     "outro",
		Score:      2,
		Total:      2,
		FinishedAt: time.Now(),
	})

	b.handleUpdate(ctx, command(userID, "/historico"))
	history := s.lastMessage()
	require.Contains(t, history, "Melhor pontuação: 1")
	require.Contains(t, history, "1 / 2 (1 puladas)")
	require.NotContains(t, history, "2 / 2")
}

func TestHistoryCommandWithoutStore(t *testing.T) {
	b, s := newTestBot(t)

	b.handleUpdate(context.Background(), command(userID, "/historico"))
	require.Equal(t, "O histórico de partidas não está ativado.", s.lastMessage())
}
