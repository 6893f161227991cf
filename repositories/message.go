package repositories

import (
	"campus-market/domain"
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

func messagePrefix(conversationID string) string {
	return fmt.Sprintf("msg:%s:", conversationID)
}

func headKey(conversationID string) string {
	return "head:" + conversationID
}

// ListMessages retrieves the history of a conversation using a prefix scan.
// Message keys end with a ULID, so key order is append order.
func (s BadgerStore) ListMessages(_ context.Context, conversationID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := s.view("list messages", func(txn *badger.Txn) error {
		return scan(txn, messagePrefix(conversationID), false, func(_, value []byte) error {
			message, err := decodeMessage(value)
			if err != nil {
				return err
			}
			messages = append(messages, message)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AppendMessage persists a message under "msg:{conversation_id}:{ulid}".
// It reads then rewrites the conversation head key so that two transactions
// appending to the same conversation cannot both commit: a check made on the
// history before appending (no pending offer...) stays valid at commit time.
func (s BadgerStore) AppendMessage(_ context.Context, conversationID, senderID string,
	messageType domain.MessageType, content string) (domain.Message, error) {
	var message domain.Message
	err := s.update("append message", func(txn *badger.Txn) error {
		if _, err := getConversation(txn, conversationID); err != nil {
			return err
		}
		if _, err := exists(txn, headKey(conversationID)); err != nil {
			return err
		}

		id, at, err := s.ids.next(s.now())
		if err != nil {
			return err
		}
		message = domain.Message{
			ID:             id.String(),
			ConversationID: conversationID,
			SenderID:       senderID,
			Content:        content,
			Type:           messageType,
			CreatedAt:      at,
		}
		if err = txn.Set([]byte(messagePrefix(conversationID)+message.ID), encodeMessage(message)); err != nil {
			return err
		}
		return txn.Set([]byte(headKey(conversationID)), []byte(message.ID))
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}
