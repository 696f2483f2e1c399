package bot

// Reply-keyboard button labels. They are also registered as command aliases
// so taps route through the same handlers as slash commands.
const (
	btnAddProduct   = "ℹ️ Загрузить"
	btnAssortment   = "🍵 Ассортимент"
	btnEditProduct  = "🛒 Изменить"
	btnAdminReviews = "⭐ Отзывы"
	btnStats        = "📊 Статистика"
	btnClearStats   = "🗑️ Сбросить статистику"

	btnHelp        = "ℹ️ Что умеет бот"
	btnShopLink    = "🛒 Ссылка на магазин"
	btnLeaveReview = "⭐ Оставить отзыв"
	btnOrder       = "🛒 Оформить заказ"
	btnSuggestions = "✅ Предложения"
)

const (
	msgAdminWelcome  = "Добро пожаловать в панель администратора!"
	msgClientWelcome = "Привет! Выберите действие:"

	msgHelp = "Я могу показать товары)\n" +
		"Подсказать где можно их приобрести\n" +
		"Могу сам оформить заказ\n" +
		"Могу научить заваривать, разные сорта чая\n" +
		"Помочь оставить отзыв\n" +
		"И еще многое другое, пиши — я отвечу"

	msgUnknownCommand = "Извините, я не понимаю эту команду. Нажмите на кнопки в меню."
	msgCensored       = "Маты запрещены"

	msgInvalidNumber = "❌ Вес должен быть положительным числом (например: 500).\n" +
		"Пожалуйста, введите корректное значение."
	msgInvalidPrice = "❌ Цена должна быть положительным числом (например: 299.50).\n" +
		"Пожалуйста, введите корректную цену."
	msgInvalidPhone = "❗ Пожалуйста, введите корректный номер телефона " +
		"(например, +7 999 123-45-67)."
	msgInvalidQuantity = "❌ Укажите целое количество (например: 1, 2, 3):"

	msgStaleSession = "❌ Сессия устарела. Начните заново."
	msgUseButtons   = "Пожалуйста, воспользуйтесь кнопками под сообщением."
)
