package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/fermions75/flexboneai-ocr/api/internal/ocr"
	"github.com/fermions75/flexboneai-ocr/api/internal/upload"
	"github.com/fermions75/flexboneai-ocr/api/internal/util"
)

// Telegram rejects messages longer than 4096 characters.
const maxReplyBytes = 3900

// Telegram re-encodes photos it stores, so they are always served as JPEG.
const photoContentType = "image/jpeg"

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	API    *tgbotapi.BotAPI
	Sender Sender
	Engine ocr.Engine
	Log    zerolog.Logger

	// fileURL resolves a Telegram file id to a download URL.
	fileURL func(fileID string) (string, error)
	httpc   *http.Client
}

func New(api *tgbotapi.BotAPI, engine ocr.Engine, log zerolog.Logger) *Bot {
	return &Bot{
		API:     api,
		Sender:  api,
		Engine:  engine,
		Log:     log,
		fileURL: api.GetFileDirectURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	cid := msg.Chat.ID

	if msg.IsCommand() {
		b.send(cid, b.commandReply(msg.Command()))
		return
	}
	if len(msg.Photo) == 0 {
		if msg.Document != nil {
			b.send(cid, "Send the image as a photo, not as a file.")
		}
		return
	}

	// the last size is the largest
	ph := msg.Photo[len(msg.Photo)-1]
	if ph.FileSize > upload.MaxFileSize {
		b.send(cid, upload.ErrTooLarge.Message)
		return
	}
	url, err := b.fileURL(ph.FileID)
	if err != nil {
		b.Log.Error().Err(err).Int64("chat_id", cid).Msg("get file url")
		b.send(cid, "Could not fetch the photo: "+err.Error())
		return
	}
	img, err := b.download(ctx, url)
	if err != nil {
		b.Log.Error().Err(err).Int64("chat_id", cid).Msg("download photo")
		b.send(cid, "Could not fetch the photo: "+err.Error())
		return
	}

	b.send(cid, b.recognize(ctx, cid, img))
}

func (b *Bot) commandReply(cmd string) string {
	switch cmd {
	case "start", "help":
		return "Send a photo with text and I will reply with the recognized text."
	case "health":
		return "OK, engine: " + b.Engine.Name()
	default:
		return "Unknown command"
	}
}

// recognize applies the same checks and outcome mapping as POST /extract-text
// and renders the outcome as a chat reply.
func (b *Bot) recognize(ctx context.Context, cid int64, img []byte) string {
	if len(img) == 0 {
		return upload.ErrEmpty.Message
	}
	if err := upload.Validate(photoContentType, img); err != nil {
		var rej *upload.Rejection
		if errors.As(err, &rej) {
			return rej.Message
		}
		return err.Error()
	}

	res := ocr.Extract(ctx, b.Engine, img)
	l := b.Log.Info()
	if res.Kind == ocr.KindError {
		l = b.Log.Error().Err(res.Err)
	}
	l.Int64("chat_id", cid).
		Str("engine", b.Engine.Name()).
		Str("outcome", res.Kind.String()).
		Dur("elapsed", res.Elapsed).
		Msg("photo processed")

	return replyText(res)
}

func replyText(res ocr.Result) string {
	switch res.Kind {
	case ocr.KindError:
		return "Failed to process image: " + res.Err.Error()
	case ocr.KindEmpty:
		return ocr.NoTextMessage
	default:
		return util.TruncateBytes(res.Text, maxReplyBytes)
	}
}

func (b *Bot) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	// one byte past the limit is enough for Validate to reject it
	return io.ReadAll(io.LimitReader(resp.Body, upload.MaxFileSize+1))
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.Sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.Log.Warn().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}
