package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramClient представляет клиент для работы с Telegram Bot API
type TelegramClient struct {
	bot      *tgbotapi.BotAPI
	commands *TelegramCommands
}

// NewTelegramClient создает новый экземпляр Telegram клиента
func NewTelegramClient(token string, commands *TelegramCommands) (*TelegramClient, error) {
	if token == "" {
		return nil, fmt.Errorf("Telegram не настроен: пустой токен")
	}

	// Создаем Bot API клиент
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram бота: %w", err)
	}

	// В продакшене отключаем debug
	bot.Debug = false

	log.Printf("✅ Telegram бот авторизован: %s", bot.Self.UserName)

	return &TelegramClient{
		bot:      bot,
		commands: commands,
	}, nil
}

// SendMessage отправляет сообщение в чат
func (tc *TelegramClient) SendMessage(chatID string, message string) error {
	// Парсим chat ID
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("неверный chat ID: %s", chatID)
	}

	msg := tgbotapi.NewMessage(chatIDInt, message)
	if _, err := tc.bot.Send(msg); err != nil {
		return fmt.Errorf("ошибка отправки сообщения: %w", err)
	}
	return nil
}

// Listen обрабатывает команды бота до отмены ctx
func (tc *TelegramClient) Listen(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tc.bot.GetUpdatesChan(u)
	log.Println("🚀 Telegram бот слушает команды")

	tc.consume(ctx, updates)
	tc.bot.StopReceivingUpdates()
	log.Println("Telegram бот остановлен")
}

// consume обрабатывает обновления до отмены ctx или закрытия канала
func (tc *TelegramClient) consume(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				log.Println("⚠️ Канал обновлений Telegram закрыт")
				return
			}
			if err := tc.processUpdate(ctx, update); err != nil {
				log.Printf("❌ Ошибка обработки обновления Telegram: %v", err)
			}
		}
	}
}

func (tc *TelegramClient) processUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil || !update.Message.IsCommand() || tc.commands == nil {
		return nil
	}

	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)
	reply := tc.commands.Reply(ctx, update.Message.Command())
	return tc.SendMessage(chatID, reply)
}

// IsHealthy проверяет, работает ли бот
func (tc *TelegramClient) IsHealthy() bool {
	if tc == nil || tc.bot == nil {
		return false
	}
	_, err := tc.bot.GetMe()
	return err == nil
}

// TelegramCommands формирует ответы на команды бота
type TelegramCommands struct {
	equipment *EquipmentService
}

// NewTelegramCommands создает обработчик команд
func NewTelegramCommands(equipment *EquipmentService) *TelegramCommands {
	return &TelegramCommands{equipment: equipment}
}

// Reply возвращает текст ответа на команду
func (c *TelegramCommands) Reply(ctx context.Context, command string) string {
	switch strings.ToLower(command) {
	case "start", "help":
		return "Smart Apartment bot\n" +
			"/status - equipment counters\n" +
			"/faulty - items that need attention"
	case "status":
		stats, err := c.equipment.GetStats(ctx)
		if err != nil {
			return "Ошибка: " + err.Error()
		}
		return fmt.Sprintf("Active: %d\nFaulty: %d\nUnder repair: %d\nTotal: %d",
			stats.Active, stats.Faulty, stats.UnderRepair, stats.Total())
	case "faulty":
		items, err := c.equipment.GetFaultyItems(ctx)
		if err != nil {
			return "Ошибка: " + err.Error()
		}
		if len(items) == 0 {
			return "All equipment is operational"
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			lines = append(lines, "• "+item.Summary())
		}
		return strings.Join(lines, "\n")
	default:
		return "Unknown command. Use /help"
	}
}
