package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"faceit-tracker/internal/config"
	"faceit-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// TelegramClient delivers match events to a chat. Without credentials it
// stays disabled and Send reports not-sent without failing the run.
type TelegramClient struct {
	botToken string
	chatID   string
	enabled  bool
	client   *fasthttp.Client
	logger   zerolog.Logger
}

func NewTelegramClient(cfg *config.Config, logger zerolog.Logger) *TelegramClient {
	enabled := cfg.TelegramBotToken != "" && cfg.TelegramChatID != ""
	if !enabled {
		logger.Info().Msg("telegram credentials missing, notifications disabled")
	}
	return &TelegramClient{
		botToken: cfg.TelegramBotToken,
		chatID:   cfg.TelegramChatID,
		enabled:  enabled,
		client: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger.With().Str("component", "telegram").Logger(),
	}
}

// Send posts one match event. Returns whether the message was actually
// sent; transport errors are returned for logging but never abort a run.
func (t *TelegramClient) Send(ctx context.Context, event *domain.MatchEvent) (bool, error) {
	if !t.enabled {
		t.logger.Debug().Str("event_id", event.EventID).Msg("notification not sent: transport disabled")
		return false, nil
	}

	payload, err := json.Marshal(map[string]any{
		"chat_id":                  t.chatID,
		"text":                     formatEvent(event),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if deadline, ok := ctx.Deadline(); ok {
		err = t.client.DoDeadline(req, resp, deadline)
	} else {
		err = t.client.Do(req, resp)
	}
	if err != nil {
		return false, fmt.Errorf("telegram request failed: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return false, fmt.Errorf("telegram API error: %d", resp.StatusCode())
	}

	t.logger.Info().Str("event_id", event.EventID).Str("player_id", event.PlayerID).Msg("notification sent")
	return true, nil
}

func formatEvent(event *domain.MatchEvent) string {
	m := event.Match
	var b strings.Builder

	verb := "lost"
	if m.Result == "W" {
		verb = "won"
	}
	fmt.Fprintf(&b, "<b>%s</b> %s on <b>%s</b> (%s)\n", event.Nickname, verb, m.Map, m.Score)
	fmt.Fprintf(&b, "K/D/A %d/%d/%d · K/D %s · ADR %.1f · HS %d%%", m.Kills, m.Deaths, m.Assists, m.KD, m.ADR, m.HSPercent)
	if event.RatingDelta != nil {
		fmt.Fprintf(&b, " · Elo %+d", *event.RatingDelta)
	}
	if len(event.Teammates) > 0 {
		fmt.Fprintf(&b, "\nwith %s", strings.Join(event.Teammates, ", "))
	}
	return b.String()
}
