package room

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is a participant connected to the server via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	controller *Controller

	userID string
	roomID string
}

// NewClient returns a new client object
func NewClient(conn *websocket.Conn, userID, roomID string) *Client {
	return &Client{
		Conn:   conn,
		send:   make(chan interface{}, 256),
		Close:  make(chan string),
		userID: userID,
		roomID: roomID,
	}
}

// UserID returns the authenticated user this client acts for
func (c *Client) UserID() string {
	return c.userID
}

// RoomID returns the room the client is connected to
func (c *Client) RoomID() string {
	return c.roomID
}

// Send sends a message to the web client without blocking; a full send
// buffer drops the message
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel of outbound messages
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// String returns a traceable identifier for the user and room
func (c *Client) String() string {
	return fmt.Sprintf("%s:%s", c.userID, c.roomID)
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *PayloadIn) {
	if c.controller == nil {
		logrus.WithField("msg", msg).Warn("received message, but controller not found")
		return
	}

	c.controller.ReceivedMessage(c, msg)
}
