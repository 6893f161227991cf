package repositories

import (
	"campus-market/domain"
	"campus-market/errors"
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
)

func conversationKey(id string) string {
	return "conv:" + id
}

// conversationIndexKey is unique per buyer and listing, or per buyer and
// seller when there is no listing.
func conversationIndexKey(listingID, sellerID, buyerID string) string {
	if listingID == "" {
		return fmt.Sprintf("idx:conv:direct:%s:%s", sellerID, buyerID)
	}
	return fmt.Sprintf("idx:conv:%s:%s", listingID, buyerID)
}

func conversationUserPrefix(userID string) string {
	return "idx:conv:user:" + userID + ":"
}

// conversationUserKey lists a conversation in the inbox of one participant.
func conversationUserKey(userID, conversationID string) string {
	return conversationUserPrefix(userID) + conversationID
}

func getConversation(txn *badger.Txn, id string) (domain.Conversation, error) {
	var conversation domain.Conversation
	err := get(txn, conversationKey(id), func(value []byte) error {
		var err error
		conversation, err = decodeConversation(value)
		return err
	})
	return conversation, err
}

func (s BadgerStore) CreateConversation(_ context.Context, conversation domain.Conversation) error {
	indexKey := conversationIndexKey(conversation.ListingID, conversation.SellerID, conversation.BuyerID)
	return s.update("create conversation", func(txn *badger.Txn) error {
		found, err := exists(txn, indexKey)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("conversation for %s: %w", indexKey, errors.ErrAlreadyExists)
		}
		if err = txn.Set([]byte(conversationKey(conversation.ID)), encodeConversation(conversation)); err != nil {
			return err
		}
		if err = txn.Set([]byte(indexKey), []byte(conversation.ID)); err != nil {
			return err
		}
		for _, userID := range []string{conversation.BuyerID, conversation.SellerID} {
			if err = txn.Set([]byte(conversationUserKey(userID, conversation.ID)), []byte(conversation.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s BadgerStore) GetConversation(_ context.Context, id string) (domain.Conversation, error) {
	var conversation domain.Conversation
	err := s.view("get conversation", func(txn *badger.Txn) error {
		var err error
		conversation, err = getConversation(txn, id)
		return err
	})
	return conversation, err
}

func (s BadgerStore) FindConversation(_ context.Context, listingID, sellerID, buyerID string) (domain.Conversation, error) {
	var conversation domain.Conversation
	err := s.view("find conversation", func(txn *badger.Txn) error {
		var id string
		err := get(txn, conversationIndexKey(listingID, sellerID, buyerID), func(value []byte) error {
			id = string(value)
			return nil
		})
		if err != nil {
			return err
		}
		conversation, err = getConversation(txn, id)
		return err
	})
	return conversation, err
}

// ListConversations returns the conversations the user is buyer or seller in,
// newest first.
func (s BadgerStore) ListConversations(_ context.Context, userID string) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	err := s.view("list conversations", func(txn *badger.Txn) error {
		return scan(txn, conversationUserPrefix(userID), false, func(_, value []byte) error {
			conversation, err := getConversation(txn, string(value))
			if err != nil {
				return err
			}
			conversations = append(conversations, conversation)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(conversations, func(a, b domain.Conversation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return conversations, nil
}
