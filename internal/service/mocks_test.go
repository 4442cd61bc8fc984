package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/feastline/feastline/internal/domain/cart"
	"github.com/feastline/feastline/internal/domain/chat"
	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/food"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/message"
	"github.com/feastline/feastline/internal/domain/order"
	"github.com/feastline/feastline/internal/domain/user"
	"github.com/feastline/feastline/internal/infrastructure/payment"
)

// In-memory fakes backing the service tests. They honor the same contracts
// as the Mongo repositories, including ordering and sentinel errors.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[identifier.ID]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[identifier.ID]*user.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return errs.ErrAlreadyExists
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id identifier.ID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, errs.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errs.ErrUserNotFound
}

func (r *fakeUserRepo) FindByIDs(_ context.Context, ids []identifier.ID) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms []*chat.Room
}

func (r *fakeRoomRepo) Create(_ context.Context, room *chat.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = append(r.rooms, room)
	return nil
}

func (r *fakeRoomRepo) FindByID(_ context.Context, id identifier.ID) (*chat.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return nil, errs.ErrRoomNotFound
}

func (r *fakeRoomRepo) FindByParticipantSet(_ context.Context, ids []identifier.ID) (*chat.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.SameParticipants(ids) {
			return room, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *fakeRoomRepo) FindByMember(_ context.Context, userID identifier.ID) ([]*chat.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*chat.Room{}
	for _, room := range r.rooms {
		if room.HasParticipant(userID) {
			result = append(result, room)
		}
	}
	return result, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*message.Message
}

func (r *fakeMessageRepo) Insert(_ context.Context, msg *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeMessageRepo) FindConversation(
	_ context.Context,
	roomID identifier.ID,
	page message.Page,
) ([]*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inRoom := []*message.Message{}
	for _, msg := range r.messages {
		if msg.RoomID == roomID {
			inRoom = append(inRoom, msg)
		}
	}
	sort.Slice(inRoom, func(i, j int) bool {
		return inRoom[i].CreatedAt.After(inRoom[j].CreatedAt)
	})

	start := page.Offset()
	if start >= len(inRoom) {
		return []*message.Message{}, nil
	}
	end := start + page.Limit
	if end > len(inRoom) {
		end = len(inRoom)
	}
	window := append([]*message.Message{}, inRoom[start:end]...)
	sort.Slice(window, func(i, j int) bool {
		return window[i].CreatedAt.Before(window[j].CreatedAt)
	})
	return window, nil
}

func (r *fakeMessageRepo) LastPerRoom(
	_ context.Context,
	roomIDs []identifier.ID,
	page message.Page,
) ([]*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := map[identifier.ID]bool{}
	for _, id := range roomIDs {
		wanted[id] = true
	}

	last := map[identifier.ID]*message.Message{}
	for _, msg := range r.messages {
		if !wanted[msg.RoomID] {
			continue
		}
		if cur, ok := last[msg.RoomID]; !ok || msg.CreatedAt.After(cur.CreatedAt) {
			last[msg.RoomID] = msg
		}
	}

	result := make([]*message.Message, 0, len(last))
	for _, msg := range last {
		result = append(result, msg)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	start := page.Offset()
	if start >= len(result) {
		return []*message.Message{}, nil
	}
	end := start + page.Limit
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], nil
}

func (r *fakeMessageRepo) MarkRead(
	_ context.Context,
	roomID, readerID identifier.ID,
	at time.Time,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched int64
	for _, msg := range r.messages {
		if msg.RoomID == roomID && msg.MarkReadBy(readerID, at) {
			matched++
		}
	}
	return matched, nil
}

type capturingGateway struct {
	mu       sync.Mutex
	fail     bool
	events   []string
	roomIDs  []identifier.ID
	payloads []any
}

func (g *capturingGateway) Publish(_ context.Context, roomID identifier.ID, event string, payload any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return errors.New("gateway unavailable")
	}
	g.events = append(g.events, event)
	g.roomIDs = append(g.roomIDs, roomID)
	g.payloads = append(g.payloads, payload)
	return nil
}

func (g *capturingGateway) published() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.events)
}

type fakeFoodRepo struct {
	mu    sync.Mutex
	items map[identifier.ID]*food.Food
}

func newFakeFoodRepo(items ...*food.Food) *fakeFoodRepo {
	r := &fakeFoodRepo{items: map[identifier.ID]*food.Food{}}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return r
}

func (r *fakeFoodRepo) Create(_ context.Context, item *food.Food) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return nil
}

func (r *fakeFoodRepo) FindByID(_ context.Context, id identifier.ID) (*food.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		return item, nil
	}
	return nil, errs.ErrNotFound
}

func (r *fakeFoodRepo) FindByIDs(_ context.Context, ids []identifier.ID) ([]*food.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*food.Food, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func (r *fakeFoodRepo) List(_ context.Context) ([]*food.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*food.Food, 0, len(r.items))
	for _, item := range r.items {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeFoodRepo) Delete(_ context.Context, id identifier.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[identifier.ID]*cart.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[identifier.ID]*cart.Cart{}}
}

func (r *fakeCartRepo) FindByUser(_ context.Context, userID identifier.ID) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[userID]; ok {
		return c, nil
	}
	return cart.New(userID), nil
}

func (r *fakeCartRepo) Save(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[c.UserID] = c
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[identifier.ID]*order.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[identifier.ID]*order.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id identifier.ID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, errs.ErrNotFound
}

func (r *fakeOrderRepo) FindByUser(_ context.Context, userID identifier.ID) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*order.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeOrderRepo) List(_ context.Context) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		result = append(result, o)
	}
	return result, nil
}

func (r *fakeOrderRepo) SetPayment(_ context.Context, id identifier.ID, paid bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return errs.ErrNotFound
	}
	o.Payment = paid
	return nil
}

func (r *fakeOrderRepo) SetStatus(_ context.Context, id identifier.ID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return errs.ErrNotFound
	}
	o.Status = status
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id identifier.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(userID identifier.ID, _, _ string) (string, error) {
	return "token-" + userID.String(), nil
}

type stubPayments struct {
	err error
}

func (p stubPayments) CreateSession(_ context.Context, o *order.Order) (*payment.Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &payment.Session{
		URL:      "http://localhost:5174/verify?orderId=" + o.ID.String(),
		Amount:   o.Amount,
		Currency: "usd",
	}, nil
}
