package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iho/propledger/internal/adapter/http/dto"
	"github.com/iho/propledger/internal/chat"
	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/usecase"
)

// client is one connected socket. The read pump handles client frames, the write pump owns
// every write to the connection.
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	inbox  *chat.Inbox
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger

	closeOnce sync.Once
}

func (c *client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Msg("chat socket closed")
			}
			return
		}

		var frame dto.SocketFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.fail("malformed frame")
			continue
		}
		c.handle(frame)
	}
}

func (c *client) handle(frame dto.SocketFrame) {
	switch frame.Event {
	case dto.EventConversationOpen:
		c.open(frame.Data.Phone)

	case domain.EventMessageSent:
		phone, _ := c.inbox.Active()
		if frame.Data.Phone != "" {
			phone = frame.Data.Phone
		}
		if phone == "" {
			c.fail("no conversation open")
			return
		}

		clientID := frame.Data.ClientID
		if clientID == "" {
			clientID = frame.Data.AltID
		}
		_, err := c.hub.chat.Send(c.ctx, usecase.SendInput{Phone: phone, ClientID: clientID, Body: frame.Data.Body})
		if err != nil {
			c.fail(err.Error())
		}

	default:
		c.fail("unsupported event " + frame.Event)
	}
}

// open switches the client to phone's conversation and sends its history.
func (c *client) open(phone string) {
	gen, history, err := c.hub.chat.Open(c.ctx, c.inbox, phone)
	if err != nil {
		c.fail(err.Error())
		return
	}

	active, _ := c.inbox.Active()
	c.enqueue(encode(dto.HistoryFrame{
		Event:      dto.EventConversationHistory,
		Phone:      active,
		Generation: gen,
		Messages:   history,
	}))
}

// deliver applies a published event to the conversation generation it was routed to and forwards
// the merged message. Events for a conversation the client has since left or reopened are dropped.
func (c *client) deliver(generation uint64, ev domain.MessageEvent) {
	msg, changed, err := c.hub.chat.Deliver(c.inbox, generation, ev)
	if err != nil {
		if !errors.Is(err, domain.ErrStaleConversation) {
			c.logger.Warn().Err(err).Str("event", ev.Name).Msg("failed to deliver chat event")
		}
		return
	}
	if !changed {
		return
	}

	c.enqueue(encode(domain.MessageEvent{Name: ev.Name, Message: msg}))
}

func (c *client) fail(reason string) {
	c.enqueue(encode(dto.ErrorFrame{Event: dto.EventError, Error: reason}))
}

// enqueue hands a frame to the write pump. A client that cannot keep up is disconnected.
func (c *client) enqueue(frame []byte) {
	select {
	case <-c.ctx.Done():
	case c.send <- frame:
	default:
		c.logger.Warn().Msg("chat client too slow, disconnecting")
		c.close()
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.hub.unregister(c)
	})
}
