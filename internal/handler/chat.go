package handler

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"flowdraw/internal/cache"
	"flowdraw/internal/model"
)

// ChatHandler owns the room mutation log: it persists relay broadcasts,
// serves hydration and deletes entries by shape id. It doubles as the
// relay's Persister.
type ChatHandler struct {
	db           *gorm.DB
	cache        *cache.RedisClient
	historyLimit int
}

func NewChatHandler(db *gorm.DB, rc *cache.RedisClient, historyLimit int) *ChatHandler {
	return &ChatHandler{db: db, cache: rc, historyLimit: historyLimit}
}

// SaveChat appends one entry to a room's log and mirrors it into the cache.
func (h *ChatHandler) SaveChat(ctx context.Context, roomID, userID int64, shapeID, message string) error {
	chat := model.Chat{
		RoomID:  roomID,
		UserID:  userID,
		ShapeID: shapeID,
		Message: message,
	}
	if err := h.db.WithContext(ctx).Create(&chat).Error; err != nil {
		return err
	}

	room := strconv.FormatInt(roomID, 10)
	if err := h.cache.AddEntry(ctx, room, &cache.Entry{
		ID:      chat.ID,
		UserID:  chat.UserID,
		ShapeID: chat.ShapeID,
		Message: chat.Message,
	}); err != nil {
		log.Printf("[Room %s] cache append failed: %v", room, err)
	}
	return nil
}

// GetChats returns a room's log most-recent-first, capped at the history
// limit. Cache-aside: a cached room never touches Postgres.
func (h *ChatHandler) GetChats(c *fiber.Ctx) error {
	roomID, err := strconv.ParseInt(c.Params("roomId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid room id",
		})
	}
	room := strconv.FormatInt(roomID, 10)

	if entries, err := h.cache.Entries(c.Context(), room); err == nil && len(entries) > 0 {
		if len(entries) > h.historyLimit {
			entries = entries[len(entries)-h.historyLimit:]
		}
		// cached oldest-first, served most-recent-first
		msgs := make([]fiber.Map, 0, len(entries))
		for i := len(entries) - 1; i >= 0; i-- {
			msgs = append(msgs, fiber.Map{
				"id":      entries[i].ID,
				"message": entries[i].Message,
				"userId":  entries[i].UserID,
			})
		}
		return c.JSON(fiber.Map{"messages": msgs})
	}

	var chats []model.Chat
	if err := h.db.Where("room_id = ?", roomID).
		Order("id desc").
		Limit(h.historyLimit).
		Find(&chats).Error; err != nil {
		log.Printf("[Room %s] hydration query failed: %v", room, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	msgs := make([]fiber.Map, 0, len(chats))
	for _, chat := range chats {
		msgs = append(msgs, fiber.Map{
			"id":      chat.ID,
			"message": chat.Message,
			"userId":  chat.UserID,
		})
	}

	if len(chats) > 0 {
		h.fillCache(room, chats)
	}

	return c.JSON(fiber.Map{"messages": msgs})
}

// fillCache stores the fetched log oldest-first on a detached context.
func (h *ChatHandler) fillCache(room string, chats []model.Chat) {
	entries := make([]cache.Entry, 0, len(chats))
	for i := len(chats) - 1; i >= 0; i-- {
		entries = append(entries, cache.Entry{
			ID:      chats[i].ID,
			UserID:  chats[i].UserID,
			ShapeID: chats[i].ShapeID,
			Message: chats[i].Message,
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.cache.Fill(ctx, room, entries); err != nil {
			log.Printf("[Room %s] cache fill failed: %v", room, err)
		}
	}()
}

// DeleteDrawing removes one log entry by its shape id and invalidates the
// room cache. Explicit deletes and the delete-half of a move both land here.
func (h *ChatHandler) DeleteDrawing(c *fiber.Ctx) error {
	shapeID := c.Params("id")
	if shapeID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "shape id is required",
		})
	}

	var chat model.Chat
	if err := h.db.Where("shape_id = ?", shapeID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "drawing not found",
			})
		}
		log.Printf("[Chat] shape lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	if err := h.db.Delete(&chat).Error; err != nil {
		log.Printf("[Chat] delete of shape %s failed: %v", shapeID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	room := strconv.FormatInt(chat.RoomID, 10)
	if err := h.cache.Invalidate(c.Context(), room); err != nil {
		log.Printf("[Room %s] cache invalidation failed: %v", room, err)
	}

	return c.JSON(fiber.Map{
		"message": "drawing deleted",
	})
}
