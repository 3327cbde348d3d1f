// Package telegram sends channel posts through the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	kit "feedcaster/internal/transport"
	logx "feedcaster/pkg/logx"
)

const DefaultTimeout = 20 * time.Second

type Config struct {
	Token string
	// APIURL overrides https://api.telegram.org (tests, local Bot API servers).
	APIURL  string
	Timeout time.Duration
}

// Adapter implements transport.Sender. It never polls for updates.
type Adapter struct {
	log logx.Logger
	bot *tele.Bot
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"),
		Client:  &http.Client{Timeout: timeout},
		Offline: true, // skip getMe; a bad token surfaces on the first send
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Adapter{log: log.With(logx.String("comp", "telegram")), bot: b}, nil
}

func (a *Adapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return kit.MessageRef{}, err
	}
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	sendOpt := &tele.SendOptions{
		ParseMode:             tele.ParseMode(opt.ParseMode),
		DisableWebPagePreview: opt.DisablePreview,
		ThreadID:              to.ThreadID,
	}

	msg, err := a.bot.Send(recipient(to.Chat), text, sendOpt)
	if err != nil {
		var flood tele.FloodError
		if errors.As(err, &flood) {
			return kit.MessageRef{}, &kit.RateLimitError{RetryAfter: time.Duration(flood.RetryAfter) * time.Second, Err: err}
		}
		return kit.MessageRef{}, err
	}
	a.log.Debug("message sent", logx.String("chat", to.Chat), logx.Int("message_id", msg.ID))
	return kit.MessageRef{Chat: to.Chat, MessageID: msg.ID}, nil
}

// chatRef addresses a chat by username; telebot's ChatID only covers numeric ids.
type chatRef string

func (c chatRef) Recipient() string { return string(c) }

func recipient(chat string) tele.Recipient {
	chat = strings.TrimSpace(chat)
	if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
		return tele.ChatID(id)
	}
	return chatRef(chat)
}
