package notify

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"autoposter-api/internal/config"
	"autoposter-api/internal/events"
	"autoposter-api/internal/storage"

	"go.uber.org/zap"
)

// Notifier relays ActivityRecorded events whose action is in the configured set.
type Notifier struct {
	sender  MessageSender
	chatID  int64
	actions map[storage.ActivityAction]struct{}
	logger  *zap.Logger
}

// NewNotifier creates a Notifier for cfg.ChatID and cfg.Actions
func NewNotifier(cfg config.TelegramConfig, sender MessageSender, logger *zap.Logger) *Notifier {
	actions := make(map[storage.ActivityAction]struct{}, len(cfg.Actions))
	for _, a := range cfg.Actions {
		actions[storage.ActivityAction(strings.TrimSpace(a))] = struct{}{}
	}
	return &Notifier{
		sender:  sender,
		chatID:  cfg.ChatID,
		actions: actions,
		logger:  logger,
	}
}

// Subscribe registers the notifier asynchronously so slow sends never block publishers
func (n *Notifier) Subscribe(bus events.EventBus) error {
	return bus.SubscribeAsync(events.TopicActivityRecorded, n.Handle)
}

// Handle sends the event when its action is watched
func (n *Notifier) Handle(event events.ActivityRecorded) {
	if _, ok := n.actions[event.Action]; !ok {
		return
	}

	if err := n.sender.SendMessage(n.chatID, FormatActivity(event)); err != nil {
		n.logger.Warn("Failed to deliver activity notification",
			zap.String("correlation_id", event.CorrelationID),
			zap.String("action", string(event.Action)),
			zap.Error(err))
	}
}

// FormatActivity renders the event as a Telegram HTML message
func FormatActivity(event events.ActivityRecorded) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(string(event.Action)))
	fmt.Fprintf(&b, "User: <code>%s</code>\n", html.EscapeString(event.UserID.String()))
	b.WriteString(html.EscapeString(event.Description))

	keys := make([]string, 0, len(event.Metadata))
	for k := range event.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %s", html.EscapeString(k), html.EscapeString(fmt.Sprint(event.Metadata[k])))
	}
	return b.String()
}
