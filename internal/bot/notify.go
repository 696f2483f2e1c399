package bot

import (
	"errors"
	"fmt"
	"sync/atomic"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"teashop/core/logger"
	tghelpers "teashop/core/telegram/helpers"
	"teashop/core/telegram/sender"
	"teashop/internal/models"
)

// Notifier pushes out-of-band messages: admin alerts about new orders,
// reviews and suggestions, plus the new-product broadcast. Sends go through
// the async dispatcher once it is bound at startup; before that they run
// inline.
type Notifier struct {
	adminID int64
	disp    atomic.Pointer[sender.Dispatcher]
}

// NewNotifier creates a notifier targeting the given admin chat.
func NewNotifier(adminID int64) *Notifier {
	return &Notifier{adminID: adminID}
}

// Bind wires the outbound dispatcher. Called from the run OnStart hook.
func (n *Notifier) Bind(d *sender.Dispatcher) {
	n.disp.Store(d)
}

func (n *Notifier) send(c tele.Context, endpoint string, to int64, what interface{}) error {
	bot := c.Bot()
	run := func() error {
		_, err := bot.Send(&tele.User{ID: to}, what)
		return err
	}

	d := n.disp.Load()
	if d == nil {
		return run()
	}
	ctx := tghelpers.BuildContext(c)
	if err := d.Enqueue(ctx, "notify", endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			return run()
		}
		return err
	}
	return nil
}

// AdminText sends a plain text alert to the administrator.
func (n *Notifier) AdminText(c tele.Context, text string) error {
	return n.send(c, "sendMessage", n.adminID, text)
}

// AdminPhoto sends a photo alert to the administrator by file id.
func (n *Notifier) AdminPhoto(c tele.Context, fileID, caption string) error {
	return n.send(c, "sendPhoto", n.adminID, &tele.Photo{
		File:    tele.File{FileID: fileID},
		Caption: caption,
	})
}

// Submission notifies the admin about a new review or suggestion, with the
// photo attached when one was provided.
func (n *Notifier) Submission(c tele.Context, kind, text, contact string, photoFileID *string) error {
	if photoFileID != nil && *photoFileID != "" {
		caption := fmt.Sprintf("📩 Новое %s:\n\n%s\n\nКонтакт: %s", kind, text, contact)
		return n.AdminPhoto(c, *photoFileID, caption)
	}
	msg := fmt.Sprintf("📩 Новое %s (без фото):\n\n%s\n\nКонтакт: %s", kind, text, contact)
	return n.AdminText(c, msg)
}

// BroadcastProduct announces a newly added product to every known user.
// Failures for individual recipients are absorbed by the dispatcher; the
// broadcast itself never blocks the calling handler.
func (n *Notifier) BroadcastProduct(c tele.Context, userIDs []int64, p models.Product) {
	caption := fmt.Sprintf(
		"🆕 Новинка в ассортименте!\n\nНазвание: %s\nВес: %s г\nЦена: %s ₽",
		p.Name, p.Weight, p.Price,
	)
	photo := &tele.Photo{
		File:    tele.File{FileID: p.PhotoFileID},
		Caption: caption,
	}

	sent := 0
	for _, id := range userIDs {
		if id == n.adminID {
			continue
		}
		if err := n.send(c, "sendPhoto", id, photo); err != nil {
			continue
		}
		sent++
	}

	ctx := tghelpers.BuildContext(c)
	logger.Info(ctx, "service.catalog", "product.broadcast",
		slog.String("status", "ok"),
		slog.Int64("product_id", p.ID),
		slog.Int("recipients", sent),
	)
}
