package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/feastline/feastline/internal/domain/chat"
	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/message"
	"github.com/feastline/feastline/internal/domain/user"
	"github.com/feastline/feastline/internal/infrastructure/metrics"
)

// EventNewMessage is the realtime event emitted on every successful post.
const EventNewMessage = "new message"

// RealtimeGateway is the publish side of the realtime channel. Declared on
// the consumer side; the event bus gateway satisfies it.
type RealtimeGateway interface {
	Publish(ctx context.Context, roomID identifier.ID, event string, payload any) error
}

// newMessagePayload is the body of the "new message" realtime event.
type newMessagePayload struct {
	Message MessageView `json:"message"`
}

// ChatService coordinates rooms, messages, the participant directory, and
// the realtime gateway. It holds no state of its own and is safe for
// concurrent use.
type ChatService struct {
	rooms    chat.Repository
	messages message.Repository
	users    user.Repository
	realtime RealtimeGateway
	logger   *slog.Logger
	metrics  *metrics.ChatMetrics
}

// ChatServiceOption configures a ChatService.
type ChatServiceOption func(*ChatService)

// WithChatLogger sets the logger for the service.
func WithChatLogger(logger *slog.Logger) ChatServiceOption {
	return func(s *ChatService) {
		s.logger = logger
	}
}

// WithChatMetrics enables Prometheus instrumentation.
func WithChatMetrics(m *metrics.ChatMetrics) ChatServiceOption {
	return func(s *ChatService) {
		s.metrics = m
	}
}

// NewChatService creates a chat service over the given stores and gateway.
func NewChatService(
	rooms chat.Repository,
	messages message.Repository,
	users user.Repository,
	realtime RealtimeGateway,
	opts ...ChatServiceOption,
) *ChatService {
	s := &ChatService{
		rooms:    rooms,
		messages: messages,
		users:    users,
		realtime: realtime,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Initiate finds or creates the room for the given participant set. The
// initiator is always part of the final membership. The find-then-create
// sequence is not transactional; see the repository contract.
func (s *ChatService) Initiate(
	ctx context.Context,
	participantIDs []identifier.ID,
	initiatorID identifier.ID,
) (*InitiateResult, error) {
	if len(participantIDs) == 0 || initiatorID.IsZero() {
		return nil, fmt.Errorf("%w: participant list and initiator are required", errs.ErrInvalidInput)
	}

	members, err := unionParticipants(participantIDs, initiatorID)
	if err != nil {
		return nil, err
	}

	found, err := s.users.FindByIDs(ctx, members)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participants: %w", err)
	}
	if len(found) != len(members) {
		return nil, fmt.Errorf("%w: unknown participant id", errs.ErrUserNotFound)
	}

	existing, err := s.rooms.FindByParticipantSet(ctx, members)
	switch {
	case err == nil:
		return &InitiateResult{
			IsNew:      false,
			Message:    "retrieving an old chat room",
			ChatRoomID: existing.ID,
		}, nil
	case !errors.Is(err, errs.ErrNotFound):
		return nil, fmt.Errorf("failed to look up room by participants: %w", err)
	}

	room, err := chat.NewRoom(participantIDs, initiatorID)
	if err != nil {
		return nil, err
	}

	if createErr := s.rooms.Create(ctx, room); createErr != nil {
		return nil, fmt.Errorf("failed to create room: %w", createErr)
	}

	if s.metrics != nil {
		s.metrics.RoomsCreated.Inc()
	}

	s.logger.InfoContext(ctx, "chat room created",
		slog.String("room_id", room.ID.String()),
		slog.Int("participants", len(room.ParticipantIDs)),
	)

	return &InitiateResult{
		IsNew:      true,
		Message:    "creating a new chatroom",
		ChatRoomID: room.ID,
	}, nil
}

// PostMessage validates the room, persists the message, then publishes it to
// the room's realtime channel. Publish failures are logged and swallowed:
// the message is durable either way and the caller always gets it back.
// Sender membership in the room is the caller's responsibility.
func (s *ChatService) PostMessage(
	ctx context.Context,
	roomID identifier.ID,
	body string,
	senderID identifier.ID,
) (*MessageView, error) {
	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		return nil, err
	}

	msg, err := message.New(roomID, body, senderID)
	if err != nil {
		return nil, err
	}

	if insertErr := s.messages.Insert(ctx, msg); insertErr != nil {
		return nil, fmt.Errorf("failed to persist message: %w", insertErr)
	}

	if s.metrics != nil {
		s.metrics.MessagesPosted.Inc()
	}

	directory, err := s.profilesFor(ctx, []identifier.ID{senderID})
	if err != nil {
		return nil, err
	}
	view := directory.messageView(msg)

	// Persistence happens-before publish; delivery is best effort.
	if publishErr := s.realtime.Publish(ctx, roomID, EventNewMessage, newMessagePayload{Message: view}); publishErr != nil {
		if s.metrics != nil {
			s.metrics.PublishFailures.Inc()
		}
		s.logger.WarnContext(ctx, "realtime publish failed",
			slog.String("room_id", roomID.String()),
			slog.String("message_id", msg.ID.String()),
			slog.String("error", publishErr.Error()),
		)
	}

	return &view, nil
}

// ConversationByRoom returns one pagination window of the room's history
// plus the room's participant profiles. Windows are computed newest-first,
// each page is delivered oldest-first.
func (s *ChatService) ConversationByRoom(
	ctx context.Context,
	roomID identifier.ID,
	page message.Page,
) (*ConversationResult, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.messages.FindConversation(ctx, roomID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	ids := room.ParticipantIDs
	for _, msg := range msgs {
		ids = append(ids, msg.SenderID)
		for _, r := range msg.ReadBy {
			ids = append(ids, r.ReaderID)
		}
	}

	directory, err := s.profilesFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(msgs))
	for _, msg := range msgs {
		views = append(views, directory.messageView(msg))
	}

	participants := make([]user.Profile, 0, len(room.ParticipantIDs))
	for _, id := range room.ParticipantIDs {
		participants = append(participants, directory.lookup(id))
	}

	return &ConversationResult{Messages: views, Participants: participants}, nil
}

// RecentConversations lists the rooms the user belongs to, reduced to their
// single most recent message each and ordered by that message's creation
// time descending. Pagination applies to rooms, not messages. A user with no
// rooms gets an empty list.
func (s *ChatService) RecentConversations(
	ctx context.Context,
	userID identifier.ID,
	page message.Page,
) ([]RecentConversationEntry, error) {
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: user id is required", errs.ErrInvalidInput)
	}

	rooms, err := s.rooms.FindByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	if len(rooms) == 0 {
		return []RecentConversationEntry{}, nil
	}

	roomsByID := make(map[identifier.ID]*chat.Room, len(rooms))
	roomIDs := make([]identifier.ID, 0, len(rooms))
	for _, room := range rooms {
		roomsByID[room.ID] = room
		roomIDs = append(roomIDs, room.ID)
	}

	lastMessages, err := s.messages.LastPerRoom(ctx, roomIDs, page)
	if err != nil {
		return nil, fmt.Errorf("failed to reduce conversations: %w", err)
	}

	var ids []identifier.ID
	for _, msg := range lastMessages {
		if room, ok := roomsByID[msg.RoomID]; ok {
			ids = append(ids, room.ParticipantIDs...)
		}
		ids = append(ids, msg.SenderID)
		for _, r := range msg.ReadBy {
			ids = append(ids, r.ReaderID)
		}
	}

	directory, err := s.profilesFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]RecentConversationEntry, 0, len(lastMessages))
	for _, msg := range lastMessages {
		room, ok := roomsByID[msg.RoomID]
		if !ok {
			continue
		}

		participants := make([]user.Profile, 0, len(room.ParticipantIDs))
		for _, id := range room.ParticipantIDs {
			participants = append(participants, directory.lookup(id))
		}

		entries = append(entries, RecentConversationEntry{
			RoomID:       room.ID,
			Participants: participants,
			LastMessage:  directory.messageView(msg),
		})
	}

	return entries, nil
}

// MarkRead appends a read receipt for readerID to every message in the room
// not already carrying one, as one conditional bulk update. Idempotent: a
// repeated call reports zero matched messages.
func (s *ChatService) MarkRead(
	ctx context.Context,
	roomID, readerID identifier.ID,
) (*MarkReadResult, error) {
	if readerID.IsZero() {
		return nil, fmt.Errorf("%w: reader id is required", errs.ErrInvalidInput)
	}

	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		return nil, err
	}

	matched, err := s.messages.MarkRead(ctx, roomID, readerID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to mark conversation read: %w", err)
	}

	if s.metrics != nil {
		s.metrics.MessagesRead.Add(float64(matched))
	}

	return &MarkReadResult{MatchedCount: matched}, nil
}

// profilesFor batch-resolves the given ids (duplicates allowed) into a
// directory for decoration. One directory call per operation, no per-row
// lookups.
func (s *ChatService) profilesFor(ctx context.Context, ids []identifier.ID) (profileDirectory, error) {
	unique := make([]identifier.ID, 0, len(ids))
	seen := make(map[identifier.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	users, err := s.users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profiles: %w", err)
	}

	directory := make(profileDirectory, len(users))
	for _, u := range users {
		directory[u.ID] = u.Profile()
	}
	return directory, nil
}

// unionParticipants validates the requested set and adds the initiator when
// absent.
func unionParticipants(participantIDs []identifier.ID, initiatorID identifier.ID) ([]identifier.ID, error) {
	seen := make(map[identifier.ID]struct{}, len(participantIDs)+1)
	members := make([]identifier.ID, 0, len(participantIDs)+1)
	for _, id := range participantIDs {
		if id.IsZero() {
			return nil, fmt.Errorf("%w: empty participant id", errs.ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate participant id %s", errs.ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}

	if _, ok := seen[initiatorID]; !ok {
		members = append(members, initiatorID)
	}

	return members, nil
}
