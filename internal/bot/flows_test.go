package bot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"teashop/core/telegram/state"
	"teashop/internal/models"
	"teashop/internal/moderation"
	"teashop/internal/storage/stubs"
)

type outbound struct {
	to   int64
	what interface{}
}

// fakeAPI records messages the notifier pushes through c.Bot().
type fakeAPI struct {
	tele.API

	mu   sync.Mutex
	sent []outbound
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := strconv.ParseInt(to.Recipient(), 10, 64)
	f.sent = append(f.sent, outbound{to: id, what: what})
	return &tele.Message{ID: len(f.sent)}, nil
}

func (f *fakeAPI) sentTo(id int64) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []interface{}
	for _, s := range f.sent {
		if s.to == id {
			out = append(out, s.what)
		}
	}
	return out
}

// fakeContext implements the slice of tele.Context the handlers touch and
// records outbound calls for assertions.
type fakeContext struct {
	tele.Context

	api    *fakeAPI
	sender *tele.User
	msg    *tele.Message
	cb     *tele.Callback
	kv     map[string]interface{}

	sent    []interface{}
	edited  []interface{}
	replied []interface{}
	deleted bool
}

func newFakeContext(api *fakeAPI, userID int64) *fakeContext {
	return &fakeContext{
		api:    api,
		sender: &tele.User{ID: userID, FirstName: "Тест"},
		kv:     map[string]interface{}{},
	}
}

func (c *fakeContext) withText(text string) *fakeContext {
	c.msg = &tele.Message{Text: text, Sender: c.sender}
	c.cb = nil
	return c
}

func (c *fakeContext) withPhoto(fileID string) *fakeContext {
	c.msg = &tele.Message{
		Photo:  &tele.Photo{File: tele.File{FileID: fileID}},
		Sender: c.sender,
	}
	c.cb = nil
	return c
}

func (c *fakeContext) withCallback(unique, payload string) *fakeContext {
	data := unique
	if payload != "" {
		data += "|" + payload
	}
	c.cb = &tele.Callback{Unique: unique, Data: data, Sender: c.sender}
	c.msg = nil
	return c
}

func (c *fakeContext) Bot() tele.API            { return c.api }
func (c *fakeContext) Sender() *tele.User       { return c.sender }
func (c *fakeContext) Message() *tele.Message   { return c.msg }
func (c *fakeContext) Callback() *tele.Callback { return c.cb }
func (c *fakeContext) Update() tele.Update      { return tele.Update{ID: 1} }

func (c *fakeContext) Chat() *tele.Chat {
	return &tele.Chat{ID: c.sender.ID, Type: tele.ChatPrivate}
}

func (c *fakeContext) Text() string {
	if c.msg == nil {
		return ""
	}
	return c.msg.Text
}

func (c *fakeContext) Get(key string) interface{}    { return c.kv[key] }
func (c *fakeContext) Set(key string, v interface{}) { c.kv[key] = v }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, what)
	return nil
}

func (c *fakeContext) Edit(what interface{}, _ ...interface{}) error {
	c.edited = append(c.edited, what)
	return nil
}

func (c *fakeContext) Reply(what interface{}, _ ...interface{}) error {
	c.replied = append(c.replied, what)
	return nil
}

func (c *fakeContext) Delete() error {
	c.deleted = true
	return nil
}

func (c *fakeContext) lastSentText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, c.sent)
	text, ok := c.sent[len(c.sent)-1].(string)
	require.True(t, ok, "last send is not text: %T", c.sent[len(c.sent)-1])
	return text
}

func TestAddProductFlow(t *testing.T) {
	app, store := newTestApp(t)
	api := &fakeAPI{}
	ctx := context.Background()

	require.NoError(t, store.AddUser(ctx, 42))
	require.NoError(t, store.AddUser(ctx, 100))

	admin := int64(42)
	require.NoError(t, app.handleAddProductStart(newFakeContext(api, admin).withText(btnAddProduct)))
	require.NoError(t, app.fsmAddPhoto(newFakeContext(api, admin).withPhoto("photo-1")))
	require.NoError(t, app.fsmAddName(newFakeContext(api, admin).withText("Да Хун Пао")))
	require.NoError(t, app.fsmAddWeight(newFakeContext(api, admin).withText("500")))
	require.NoError(t, app.fsmAddDescription(newFakeContext(api, admin).withText("Улун сильной обжарки")))

	last := newFakeContext(api, admin).withText("1200")
	require.NoError(t, app.fsmAddPrice(last))

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Да Хун Пао", products[0].Name)
	assert.Equal(t, "photo-1", products[0].PhotoFileID)
	assert.Equal(t, "1200.00", products[0].Price)

	assert.False(t, app.sessions.InProgress(admin), "session survives completion")

	require.NotEmpty(t, last.sent)
	card, ok := last.sent[len(last.sent)-1].(*tele.Photo)
	require.True(t, ok, "confirmation card is not a photo: %T", last.sent[len(last.sent)-1])
	assert.Contains(t, card.Caption, "Товар добавлен")

	// broadcast reaches the client but skips the admin
	assert.Len(t, api.sentTo(100), 1)
	assert.Empty(t, api.sentTo(42))
}

func TestAddProductFlowRejectsBadInput(t *testing.T) {
	app, _ := newTestApp(t)
	api := &fakeAPI{}
	admin := int64(42)

	require.NoError(t, app.handleAddProductStart(newFakeContext(api, admin).withText(btnAddProduct)))

	// a text message on the photo step re-prompts without advancing
	c := newFakeContext(api, admin).withText("не фото")
	require.NoError(t, app.fsmAddPhoto(c))
	assert.Equal(t, StateAddPhoto, app.sessions.GetState(admin))

	require.NoError(t, app.fsmAddPhoto(newFakeContext(api, admin).withPhoto("photo-1")))
	require.NoError(t, app.fsmAddName(newFakeContext(api, admin).withText("Сенча")))

	c = newFakeContext(api, admin).withText("-5")
	require.NoError(t, app.fsmAddWeight(c))
	assert.Equal(t, msgInvalidNumber, c.lastSentText(t))
	assert.Equal(t, StateAddWeight, app.sessions.GetState(admin))
}

func TestOrderConfirm(t *testing.T) {
	app, store := newTestApp(t)
	api := &fakeAPI{}
	ctx := context.Background()
	user := int64(7)

	product := models.Product{Name: "Габа", Weight: "100", Price: "300 ₽", PhotoFileID: "p"}
	require.NoError(t, store.SaveProduct(ctx, &product))

	pvz := models.PickupPoint{Code: "MSK1", Name: "ПВЗ MSK1", Address: "ул. Чайная, 5"}
	app.sessions.Begin(user, StateOrderConfirm, &OrderForm{
		ProductID: product.ID,
		Quantity:  2,
		City:      "Москва",
		Phone:     "+7 999 123-45-67",
		Selected:  &pvz,
	})

	c := newFakeContext(api, user).withCallback(cbOrderConfirm, "")
	require.NoError(t, app.cbOrderConfirm(c))

	stats, err := store.SalesStatistics(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 600, stats.TotalRevenue, 1e-9)
	require.Len(t, stats.Sold, 1)
	assert.Equal(t, 2, stats.Sold[0].Quantity)

	assert.False(t, app.sessions.InProgress(user))

	require.NotEmpty(t, c.edited)
	assert.Contains(t, c.edited[len(c.edited)-1], "Заказ оформлен")

	alerts := api.sentTo(42)
	require.Len(t, alerts, 1)
	info, ok := alerts[0].(string)
	require.True(t, ok)
	assert.Contains(t, info, "Новый заказ")
	assert.Contains(t, info, "Габа")
}

func TestOrderConfirmProductGone(t *testing.T) {
	app, store := newTestApp(t)
	api := &fakeAPI{}
	user := int64(7)

	pvz := models.PickupPoint{Code: "MSK1", Name: "ПВЗ MSK1"}
	app.sessions.Begin(user, StateOrderConfirm, &OrderForm{
		ProductID: 999,
		Quantity:  1,
		Phone:     "+7 999 123-45-67",
		Selected:  &pvz,
	})

	c := newFakeContext(api, user).withCallback(cbOrderConfirm, "")
	require.NoError(t, app.cbOrderConfirm(c))

	assert.Contains(t, c.lastSentText(t), "Товар не найден")
	assert.False(t, app.sessions.InProgress(user))

	stats, err := store.SalesStatistics(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats.Sold)
}

func TestOrderConfirmIgnoredOutsideConfirmState(t *testing.T) {
	app, _ := newTestApp(t)
	api := &fakeAPI{}

	c := newFakeContext(api, 7).withCallback(cbOrderConfirm, "")
	require.NoError(t, app.cbOrderConfirm(c))
	assert.Empty(t, c.sent)
	assert.Empty(t, c.edited)
}

func TestOrderAwaitButtonsNudgesAndCancels(t *testing.T) {
	app, _ := newTestApp(t)
	api := &fakeAPI{}
	user := int64(7)

	app.sessions.Begin(user, StateOrderSelectPVZ, &OrderForm{ProductID: 1})

	c := newFakeContext(api, user).withText("какой выбрать?")
	require.NoError(t, app.fsmOrderAwaitButtons(c))
	assert.Equal(t, msgUseButtons, c.lastSentText(t))
	assert.Equal(t, StateOrderSelectPVZ, app.sessions.GetState(user))

	c = newFakeContext(api, user).withText("отмена")
	require.NoError(t, app.fsmOrderAwaitButtons(c))
	assert.Contains(t, c.lastSentText(t), "отменено")
	assert.False(t, app.sessions.InProgress(user))
}

func TestReviewAwaitButtonsNudges(t *testing.T) {
	app, _ := newTestApp(t)
	api := &fakeAPI{}
	user := int64(7)

	app.sessions.Begin(user, StateReviewSelectProduct, &ReviewForm{})

	c := newFakeContext(api, user).withText("Габа")
	require.NoError(t, app.fsmReviewAwaitButtons(c))
	assert.Equal(t, msgUseButtons, c.lastSentText(t))
	assert.Equal(t, StateReviewSelectProduct, app.sessions.GetState(user))
}

func TestEditReviewOwnership(t *testing.T) {
	app, store := newTestApp(t)
	api := &fakeAPI{}
	ctx := context.Background()

	author := int64(7)
	productID := int64(1)
	rev := models.Review{Text: "Отличный чай", UserID: &author, ProductID: &productID}
	require.NoError(t, store.AddReview(ctx, &rev))

	stranger := newFakeContext(api, 8).withCallback(cbEditReview, strconv.FormatInt(rev.ID, 10))
	require.NoError(t, app.cbEditReview(stranger))
	assert.Contains(t, stranger.lastSentText(t), "чужой отзыв")
	assert.False(t, app.sessions.InProgress(8), "stranger must not enter the edit form")

	kept, err := store.GetReview(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Отличный чай", kept.Text)

	owner := newFakeContext(api, author).withCallback(cbEditReview, strconv.FormatInt(rev.ID, 10))
	require.NoError(t, app.cbEditReview(owner))
	assert.Equal(t, StateReviewEditText, app.sessions.GetState(author))
}

func newCensoredApp(t *testing.T, words ...string) (*App, *stubs.MockStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.json")
	data, err := json.Marshal(words)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	app, store := newTestApp(t)
	app.filter = moderation.NewFilter(path)
	return app, store
}

func TestReviewTextCensored(t *testing.T) {
	app, _ := newCensoredApp(t, "спам")
	api := &fakeAPI{}
	user := int64(7)

	app.sessions.Begin(user, StateReviewText, &ReviewForm{ProductID: 1})

	c := newFakeContext(api, user).withText("тут сплошной спам")
	require.NoError(t, app.fsmReviewText(c))

	require.NotEmpty(t, c.replied)
	assert.Equal(t, msgCensored, c.replied[len(c.replied)-1])
	assert.True(t, c.deleted, "flagged message must be removed")

	// the form stays on the text step with nothing recorded
	assert.Equal(t, StateReviewText, app.sessions.GetState(user))
	form, ok := state.FormAs[ReviewForm](app.sessions, user)
	require.True(t, ok)
	assert.Empty(t, form.Text)

	clean := newFakeContext(api, user).withText("Очень ароматный")
	require.NoError(t, app.fsmReviewText(clean))
	assert.Equal(t, StateReviewPhoto, app.sessions.GetState(user))
	form, ok = state.FormAs[ReviewForm](app.sessions, user)
	require.True(t, ok)
	assert.Equal(t, "Очень ароматный", form.Text)
}
