// Package bot implements the storefront bot: admin catalog management,
// client reviews, pickup-point ordering through CDEK and feedback flows.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"teashop/core/bootstrap"
	"teashop/core/cmd"
	coretelegram "teashop/core/telegram"
	"teashop/core/telegram/commands"
	"teashop/core/telegram/router"
	"teashop/core/telegram/state"
	"teashop/internal/cdek"
	"teashop/internal/config"
	"teashop/internal/moderation"
	"teashop/internal/storage"
	"teashop/internal/storage/pg"
)

// App aggregates the services behind the bot handlers.
type App struct {
	cfg      *config.Config
	store    storage.Store
	courier  *cdek.Client
	sessions state.Manager
	filter   *moderation.Filter
	notifier *Notifier
}

// New assembles the application and registers its FSM step handlers.
func New(cfg *config.Config, store storage.Store, courier *cdek.Client) *App {
	a := &App{
		cfg:      cfg,
		store:    store,
		courier:  courier,
		sessions: state.NewMemoryManager(),
		filter:   moderation.NewFilter(cfg.Shop.CensorFile),
		notifier: NewNotifier(cfg.Core.Telegram.AdminID),
	}
	a.registerFSMHandlers()
	return a
}

// LoadConfig adapts config.Load to the runner contract.
func LoadConfig(path string) (cmd.ConfigCarrier, error) {
	return config.Load(path)
}

// Bootstrap initializes infrastructure (logger, database, migrations) and
// builds the application on top of it.
func Bootstrap(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	provider := bootstrap.TypedServiceProviderFunc[*App](
		func(_ context.Context, rawCfg interface{}, st bootstrap.Storage) (*App, error) {
			appCfg, ok := rawCfg.(*config.Config)
			if !ok {
				return nil, fmt.Errorf("bot: unexpected config type %T", rawCfg)
			}
			store, ok := st.(storage.Store)
			if !ok {
				return nil, fmt.Errorf("bot: unexpected storage type %T", st)
			}
			courier := cdek.New(cdek.Config{
				BaseURL:      appCfg.CDEK.BaseURL,
				ClientID:     appCfg.CDEK.ClientID,
				ClientSecret: appCfg.CDEK.ClientSecret,
				PageSize:     appCfg.CDEK.PageSize,
				Timeout:      appCfg.CDEK.Timeout(),
			})
			return New(appCfg, store, courier), nil
		},
	)

	return provider.ProvideTyped(context.Background(), cfg, pg.New(res.DB))
}

// TelegramRunOptions wires the registry, routes and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	a.registerCallbacks(reg)
	reg.SetTextFallback(a.handleFreeText)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.sessions, reg, router.TextOptions{
		UnknownText:  a.handleFreeText,
		UnknownPhoto: a.handleUnexpectedPhoto,
	})...)

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.notifier.Bind(rt.Dispatcher)
			return nil
		},
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			return a.store.Close()
		},
	}, nil
}

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Запустить бота",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "Что умеет бот",
		Aliases:     []string{btnHelp},
	})
	reg.RegisterCommand("/assortment", commands.Command{
		Handler:     a.handleAssortment,
		Description: "Показать ассортимент",
		Aliases:     []string{btnAssortment},
	})
	reg.RegisterCommand("/shop", commands.Command{
		Handler:     a.handleShopLink,
		Description: "Ссылка на магазин",
		Aliases:     []string{btnShopLink},
	})
	reg.RegisterCommand("/review", commands.Command{
		Handler:     a.handleReviewMenu,
		Description: "Оставить отзыв",
		Aliases:     []string{btnLeaveReview},
	})
	reg.RegisterCommand("/order", commands.Command{
		Handler:     a.handleOrderStart,
		Description: "Оформить заказ",
		Aliases:     []string{btnOrder},
	})
	reg.RegisterCommand("/suggest", commands.Command{
		Handler:     a.handleSuggestMenu,
		Description: "Отправить предложение",
		Aliases:     []string{btnSuggestions},
	})

	reg.RegisterCommand("/add_product", commands.Command{
		Handler:     a.handleAddProductStart,
		Description: "Добавить товар",
		AdminOnly:   true,
		Hidden:      true,
		Aliases:     []string{btnAddProduct},
	})
	reg.RegisterCommand("/edit_product", commands.Command{
		Handler:     a.handleEditProductStart,
		Description: "Изменить или удалить товар",
		AdminOnly:   true,
		Hidden:      true,
		Aliases:     []string{btnEditProduct},
	})
	reg.RegisterCommand("/reviews", commands.Command{
		Handler:     a.handleAdminReviews,
		Description: "Управление отзывами",
		AdminOnly:   true,
		Hidden:      true,
		Aliases:     []string{btnAdminReviews},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: "Статистика продаж",
		AdminOnly:   true,
		Hidden:      true,
		Aliases:     []string{btnStats},
	})
	reg.RegisterCommand("/clear_stats", commands.Command{
		Handler:     a.handleClearStatsAsk,
		Description: "Сбросить статистику",
		AdminOnly:   true,
		Hidden:      true,
		Aliases:     []string{btnClearStats},
	})
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) {
	callbacks := map[string]tele.HandlerFunc{
		cbNoop: func(c tele.Context) error { return nil },

		cbReviewStart:   a.cbReviewStart,
		cbReviewRecent:  a.cbReviewRecent,
		cbReviewMine:    a.cbReviewMine,
		cbReviewProduct: a.cbReviewSelectProduct,
		cbSkipPhoto:     a.cbSkipPhoto,
		cbShowReviews:   a.cbShowProductReviews,
		cbReviewsPage:   a.cbReviewsPage,
		cbEditReview:    a.cbEditReview,

		cbOrderProduct: a.cbOrderSelectProduct,
		cbOrderPVZ:     a.cbOrderSelectPVZ,
		cbOrderPVZPage: a.cbOrderPVZPage,
		cbOrderConfirm: a.cbOrderConfirm,
		cbOrderCancel:  a.cbOrderCancel,

		cbSuggestStart: a.cbSuggestStart,

		cbEditProduct:         a.cbEditProduct,
		cbEditField:           a.cbEditField,
		cbEditDone:            a.cbEditDone,
		cbDeleteProductAsk:    a.cbDeleteProductAsk,
		cbDeleteProduct:       a.cbDeleteProduct,
		cbDeleteProductCancel: a.cbDeleteProductCancel,

		cbReviewDelAsk:    a.cbReviewDeleteAsk,
		cbReviewDel:       a.cbReviewDelete,
		cbReviewDelCancel: a.cbReviewDeleteCancel,

		cbClearStatsConfirm: a.cbClearStatsConfirm,
		cbClearStatsCancel:  a.cbClearStatsCancel,
	}
	for key, h := range callbacks {
		_ = reg.RegisterCallback(key, h)
	}
}

func (a *App) registerFSMHandlers() {
	handlers := map[state.State]tele.HandlerFunc{
		StateAddPhoto:       a.fsmAddPhoto,
		StateAddName:        a.fsmAddName,
		StateAddWeight:      a.fsmAddWeight,
		StateAddDescription: a.fsmAddDescription,
		StateAddPrice:       a.fsmAddPrice,

		StateEditMenu:        a.fsmEditMenu,
		StateEditPhoto:       a.fsmEditPhoto,
		StateEditName:        a.fsmEditName,
		StateEditWeight:      a.fsmEditWeight,
		StateEditDescription: a.fsmEditDescription,
		StateEditPrice:       a.fsmEditPrice,

		StateReviewSelectProduct: a.fsmReviewAwaitButtons,
		StateReviewText:          a.fsmReviewText,
		StateReviewPhoto:         a.fsmReviewPhoto,
		StateReviewContact:       a.fsmReviewContact,

		StateReviewEditText:    a.fsmReviewEditText,
		StateReviewEditContact: a.fsmReviewEditContact,

		StateOrderSelectProduct: a.fsmOrderAwaitButtons,
		StateOrderQuantity:      a.fsmOrderQuantity,
		StateOrderCity:          a.fsmOrderCity,
		StateOrderSelectPVZ:     a.fsmOrderAwaitButtons,
		StateOrderPhone:         a.fsmOrderPhone,
		StateOrderConfirm:       a.fsmOrderAwaitButtons,

		StateSuggestText:    a.fsmSuggestText,
		StateSuggestPhoto:   a.fsmSuggestPhoto,
		StateSuggestContact: a.fsmSuggestContact,
	}
	for st, h := range handlers {
		state.RegisterHandler(st, h)
	}
}

func (a *App) isAdmin(c tele.Context) bool {
	return c.Sender() != nil && c.Sender().ID == a.cfg.Core.Telegram.AdminID
}

// isSkipValue reports whether an answer means "no contact".
func (a *App) isSkipValue(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	for _, v := range a.cfg.Shop.ContactSkipValues {
		if answer == strings.ToLower(v) {
			return true
		}
	}
	return false
}

// isNotModified reports whether an edit failed only because the new content
// matches the current message. Pagination keyboards hit this on repeated
// taps; any other edit failure is a real error.
func isNotModified(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, tele.ErrSameMessageContent) || errors.Is(err, tele.ErrMessageNotModified) {
		return true
	}
	return strings.Contains(err.Error(), "message is not modified")
}

// largestPhotoID returns the file id of the message photo, empty when the
// update carries none.
func largestPhotoID(c tele.Context) string {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return ""
	}
	return msg.Photo.FileID
}
