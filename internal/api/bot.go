package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	app "derma-bot/internal/application"
	"derma-bot/internal/container"
	"derma-bot/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я помогаю предварительно оценить снимок кожи.

📸 Пройдите короткую анкету и отправьте фото, а я верну вероятный диагноз, рекомендации и PDF-отчёт.

📋 Команды:
/check — начать проверку
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /check
2️⃣ Укажите имя и возраст пациента
3️⃣ Отправьте фото поражённого участка кожи
4️⃣ Получите результат: текст, карту значимых областей и PDF-отчёт

💡 Рекомендации:
• Снимайте при дневном освещении
• Участок кожи должен занимать большую часть кадра
• Фото должно быть чётким

📋 Команды:
/check — начать проверку
/cancel — отменить операцию`

	msgAskName         = "👤 Введите имя пациента."
	msgAskAge          = "🎂 Введите возраст пациента (число от 1 до 120)."
	msgAwaitingPhoto   = "📸 Отправьте фото участка кожи."
	msgInvalidName     = "⚠️ Имя не может быть пустым."
	msgInvalidAge      = "⚠️ Возраст должен быть числом от 1 до 120."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Отправьте /check, чтобы начать проверку."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgInvalidImage    = "⚠️ Не удалось прочитать изображение. Отправьте фото в формате JPEG или PNG."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте позже."
	msgOverlayCaption  = "🔥 Области, повлиявшие на решение модели"
)

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	container *container.Container
	http      *http.Client
	log       logrus.FieldLogger
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, log logrus.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.WithField("account", api.Self.UserName).Info("telegram bot authorized")

	return &Bot{
		api:       api,
		container: c,
		http:      &http.Client{Timeout: 30 * time.Second},
		log:       log,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	users := b.container.UserService
	user, err := users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.WithError(err).Error("get user")
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото и изображений, присланных файлом
	if fileID, filename, ok := imageFile(msg); ok {
		b.handlePhoto(ctx, msg, user, fileID, filename)
		return
	}

	switch user.State {
	case entity.StateAwaitingName:
		if _, err := users.SubmitName(ctx, msg.From.ID, msg.Chat.ID, msg.Text); err != nil {
			b.replyError(msg.Chat.ID, err)
			return
		}
		b.sendMessage(msg.Chat.ID, msgAskAge)

	case entity.StateAwaitingAge:
		if _, err := users.SubmitAge(ctx, msg.From.ID, msg.Chat.ID, msg.Text); err != nil {
			b.replyError(msg.Chat.ID, err)
			return
		}
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case entity.StateAwaitingPhoto:
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	default:
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
	}
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	users := b.container.UserService

	switch msg.Command() {
	case "start":
		if _, err := users.Cancel(ctx, msg.From.ID, msg.Chat.ID); err != nil {
			b.log.WithError(err).Error("reset user")
		}
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "check":
		if _, err := users.BeginCheck(ctx, msg.From.ID, msg.Chat.ID); err != nil {
			b.log.WithError(err).Error("begin check")
			return
		}
		b.sendMessage(msg.Chat.ID, msgAskName)

	case "cancel":
		if _, err := users.Cancel(ctx, msg.From.ID, msg.Chat.ID); err != nil {
			b.log.WithError(err).Error("cancel check")
		}
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handlePhoto прогоняет фото через конвейер и отправляет результат
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User, fileID, filename string) {
	users := b.container.UserService
	log := b.log.WithFields(logrus.Fields{"user_id": msg.From.ID, "chat_id": msg.Chat.ID})

	if user.State != entity.StateAwaitingPhoto {
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
		return
	}

	// Устанавливаем состояние "обработка"
	if _, err := users.StartProcessing(ctx, msg.From.ID, msg.Chat.ID); err != nil {
		log.WithError(err).Error("start processing")
		return
	}
	b.sendMessage(msg.Chat.ID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		log.WithError(err).Error("download photo")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		b.retry(ctx, msg)
		return
	}

	report, err := b.container.DiagnosisService.Diagnose(ctx, app.DiagnosisRequest{
		Image:    imageData,
		Filename: filename,
		Patient:  user.Patient,
		Explain:  true,
	})
	if err != nil {
		log.WithError(err).Warn("diagnosis failed")
		if errors.Is(err, entity.ErrInvalidImage) {
			b.sendMessage(msg.Chat.ID, msgInvalidImage)
			b.retry(ctx, msg)
			return
		}
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		b.finish(ctx, msg)
		return
	}

	b.sendHTML(msg.Chat.ID, FormatSummary(report))

	if report.HasOverlay() {
		var buf bytes.Buffer
		if err := png.Encode(&buf, report.Overlay); err != nil {
			log.WithError(err).Warn("encode overlay")
		} else {
			photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "overlay.png", Bytes: buf.Bytes()})
			photo.Caption = msgOverlayCaption
			b.send(photo)
		}
	}

	pdf, _, err := b.container.DiagnosisService.Render(ctx, report)
	if err != nil {
		log.WithError(err).Error("render report")
	} else {
		doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: "Dermatology_Report.pdf", Bytes: pdf})
		b.send(doc)
	}

	// Возвращаем в главное меню
	b.finish(ctx, msg)
}

func (b *Bot) retry(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.container.UserService.Retry(ctx, msg.From.ID, msg.Chat.ID); err != nil {
		b.log.WithError(err).Error("return to awaiting photo")
	}
}

func (b *Bot) finish(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.container.UserService.Cancel(ctx, msg.From.ID, msg.Chat.ID); err != nil {
		b.log.WithError(err).Error("return to main menu")
	}
}

func (b *Bot) replyError(chatID int64, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidName):
		b.sendMessage(chatID, msgInvalidName)
	case errors.Is(err, app.ErrInvalidAge):
		b.sendMessage(chatID, msgInvalidAge)
	default:
		b.log.WithError(err).Warn("intake step rejected")
		b.sendMessage(chatID, msgSendPhoto)
	}
}

// imageFile возвращает файл фото наибольшего размера или документ-изображение
func imageFile(msg *tgbotapi.Message) (fileID, filename string, ok bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, "", true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, msg.Document.FileName, true
	}
	return "", "", false
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	return fetch(ctx, b.http, file.Link(b.api.Token))
}

// fetch читает тело ответа, ответ не 2xx считается ошибкой загрузки
func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// sendHTML отправляет сообщение с HTML-разметкой
func (b *Bot) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	b.send(msg)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.WithError(err).Warn("send telegram message")
	}
}
