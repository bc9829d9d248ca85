package inmemdb

import (
	"context"

	"github.com/trezcool/campus/core/message"
)

type messageRepository struct {
	db *DB
}

func NewMessageRepository(db *DB) message.Repository {
	return &messageRepository{db: db}
}

func (repo *messageRepository) QueryMessages(ctx context.Context, userID string, filter message.QueryFilter) ([]message.Message, error) {
	defer repo.db.rlock(ctx)()

	msgs := make([]message.Message, 0)
	for _, msg := range repo.db.t.messages {
		switch filter.Box {
		case message.BoxInbox:
			if !containsID(msg.Recipients, userID) {
				continue
			}
		case message.BoxSent:
			if msg.SenderID != userID {
				continue
			}
		default:
			if !msg.Involves(userID) {
				continue
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (repo *messageRepository) CreateMessage(ctx context.Context, msg message.Message) error {
	defer repo.db.lock(ctx)()
	repo.db.t.messages = prepend(repo.db.t.messages, msg)
	return nil
}

func (repo *messageRepository) MarkRead(ctx context.Context, id, userID string) (message.Message, error) {
	defer repo.db.lock(ctx)()

	for i := range repo.db.t.messages {
		msg := &repo.db.t.messages[i]
		if msg.ID != id {
			continue
		}
		if !msg.IsReadBy(userID) {
			readBy := make([]string, len(msg.ReadBy), len(msg.ReadBy)+1)
			copy(readBy, msg.ReadBy)
			msg.ReadBy = append(readBy, userID)
		}
		return *msg, nil
	}
	return message.Message{}, message.ErrNotFound
}

func containsID(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
