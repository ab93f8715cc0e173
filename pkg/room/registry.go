package room

import (
	"cardroom-server/pkg/betting"
	"cardroom-server/pkg/economy"

	"github.com/sirupsen/logrus"
)

// Registry dispatches connected clients to per-room controllers. Controller
// lifecycle is owned by the registry run loop; rooms are fully independent
// and their rounds execute in parallel.
type Registry struct {
	policy    betting.Policy
	funds     economy.Provider
	store     RoundStore
	publisher EventPublisher

	controllers map[string]*Controller
	connect     chan *Client
	disconnect  chan *Client
	exec        chan func()
}

// NewRegistry returns a new registry
func NewRegistry(policy betting.Policy, funds economy.Provider, store RoundStore, publisher EventPublisher) *Registry {
	return &Registry{
		policy:      policy,
		funds:       funds,
		store:       store,
		publisher:   publisher,
		controllers: make(map[string]*Controller),
		connect:     make(chan *Client, 256),
		disconnect:  make(chan *Client, 256),
		exec:        make(chan func(), 256),
	}
}

// Start starts the registry run loop
func (r *Registry) Start() {
	go r.runLoop()
}

func (r *Registry) runLoop() {
	for {
		select {
		case client := <-r.connect:
			logrus.WithField("client", client.String()).Debug("client connected")
			controller, found := r.controllers[client.roomID]
			if !found {
				controller = NewController(client.roomID, r.policy, r.funds, r.store, r.publisher)
				controller.StartShift()
				r.controllers[client.roomID] = controller
			}

			controller.AddClient(client)
		case client := <-r.disconnect:
			logrus.WithField("client", client.String()).Debug("client disconnected")
			controller, found := r.controllers[client.roomID]
			if !found {
				logrus.WithField("room", client.roomID).WithField("type", "exception").Error("room not found")
				continue
			}

			if controller.RemoveClient(client) {
				controller.EndShift()
				delete(r.controllers, client.roomID)
			}
		case fn := <-r.exec:
			fn()
		}
	}
}

// ClientConnected is called when a client connects to the server
func (r *Registry) ClientConnected(client *Client) {
	r.connect <- client
}

// ClientDisconnected is called when a client disconnects from the server
func (r *Registry) ClientDisconnected(client *Client) {
	r.disconnect <- client
}

// Snapshot returns the public round state for the room, or ErrUnknownRound.
// The lookup runs on the registry loop, so it cannot race controller
// lifecycle changes.
func (r *Registry) Snapshot(roomID string) (*betting.State, int, error) {
	type reply struct {
		state        *betting.State
		bettingRound int
		err          error
	}

	ch := make(chan reply, 1)
	r.exec <- func() {
		controller, found := r.controllers[roomID]
		if !found {
			ch <- reply{err: ErrUnknownRound}
			return
		}

		state, bettingRound, active := controller.PublicState()
		if !active {
			ch <- reply{err: ErrUnknownRound}
			return
		}

		ch <- reply{state: state, bettingRound: bettingRound}
	}

	res := <-ch
	return res.state, res.bettingRound, res.err
}
