package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"cardroom-server/internal/metrics"
	"cardroom-server/pkg/betting"
	"cardroom-server/pkg/economy"

	"github.com/sirupsen/logrus"
)

// ErrUnknownRound is an error when no betting round is active for the room
var ErrUnknownRound = betting.UserError("no active betting round")

// ErrRoundInProgress is an error when a round is started while one is active
var ErrRoundInProgress = betting.UserError("a betting round is already in progress")

// errNotEnoughUsers is an error when a round is started with fewer than two users
var errNotEnoughUsers = betting.UserError("at least two seated users are required")

const fundsTimeout = time.Second * 3

// Controller owns the betting round for one room. All round mutation happens
// on its run loop: concurrent requests from any number of connections are
// serialized through a single channel, so the shared state never sees two
// writers.
type Controller struct {
	roomID string
	log    logrus.FieldLogger

	policy    betting.Policy
	funds     economy.Provider
	store     RoundStore
	publisher EventPublisher

	clients map[*Client]bool
	lock    sync.RWMutex

	// the fields below are owned by the run loop
	round        *betting.Round
	bettingRound int
	seating      []string
	pendingFolds map[string]bool

	actions       chan *actionRequest
	execInRunLoop chan func()
	close         chan bool

	// OnRoundComplete, if set, is invoked from the run loop when a round completes
	OnRoundComplete func(RoundCompleted)
}

type actionRequest struct {
	// client is nil for synthetic actions (disconnects, timeout drivers)
	client  *Client
	userID  string
	betType betting.Type
	context string
}

// NewController creates a controller for the room
// This is called from a blocking state, so it needs to return quickly
func NewController(roomID string, policy betting.Policy, funds economy.Provider, store RoundStore, publisher EventPublisher) *Controller {
	return &Controller{
		roomID: roomID,
		log: logrus.WithFields(logrus.Fields{
			"room": roomID,
		}),
		policy:        policy,
		funds:         funds,
		store:         store,
		publisher:     publisher,
		clients:       make(map[*Client]bool),
		pendingFolds:  make(map[string]bool),
		actions:       make(chan *actionRequest, 256),
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
	}
}

// StartShift starts the run loop
func (c *Controller) StartShift() {
	go c.runLoop()
}

// EndShift is called when the controller is no longer needed
func (c *Controller) EndShift() {
	close(c.close)
}

func (c *Controller) runLoop() {
	c.log.Debug("creating controller run loop")
	c.restore()

	for {
		select {
		case req := <-c.actions:
			c.handleAction(req)
		case fn := <-c.execInRunLoop:
			fn()
		case <-c.close:
			c.log.Debug("terminating controller run loop")
			if c.round != nil {
				metrics.ActiveRounds.Dec()
			}
			return
		}
	}
}

// restore resumes a round persisted by a previous process
func (c *Controller) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), fundsTimeout)
	defer cancel()

	snap, err := c.store.Load(ctx, c.roomID)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			c.log.WithError(err).Error("could not load round snapshot")
		}
		return
	}

	round, err := betting.Resume(c.policy, snap.State)
	if err != nil {
		c.log.WithError(err).Error("could not resume round from snapshot")
		return
	}

	c.round = round
	c.bettingRound = snap.BettingRound
	metrics.ActiveRounds.Inc()
	c.log.WithFields(logrus.Fields{
		"bettingRound": c.bettingRound,
		"currentUser":  round.CurrentUser(),
	}).Info("resumed betting round from snapshot")
}

// AddClient adds a client
// This method must return quickly
func (c *Controller) AddClient(client *Client) {
	c.lock.Lock()
	client.controller = c
	c.clients[client] = true
	c.lock.Unlock()

	c.execInRunLoop <- func() {
		c.seatUser(client.userID)
		delete(c.pendingFolds, client.userID)

		if c.round == nil {
			return
		}

		// catch a (re)connecting client up on the round
		client.Send(&StateEvent{
			Key:                 "roundState",
			State:               c.round.Snapshot(),
			CurrentBettingRound: c.bettingRound,
		})

		if c.round.CurrentUser() == client.userID {
			c.sendOffer(client.userID)
		}
	}
}

// RemoveClient removes a client, reporting whether it was the last one.
// If the departing user is mid-round with no other connection, a synthetic
// FOLD is routed through the normal action pipeline.
func (c *Controller) RemoveClient(client *Client) (lastClient bool) {
	c.lock.Lock()
	delete(c.clients, client)
	nClients := len(c.clients)
	c.lock.Unlock()

	c.execInRunLoop <- func() {
		if c.hasConnectedUser(client.userID) {
			return
		}

		c.unseatUser(client.userID)

		if c.round != nil && !c.round.Complete() && c.round.HasUser(client.userID) {
			c.pendingFolds[client.userID] = true
			c.driveTurn()
		}
	}

	return nClients == 0
}

// Clients returns a slice of currently connected clients
func (c *Controller) Clients() []*Client {
	c.lock.RLock()
	defer c.lock.RUnlock()

	clients := make([]*Client, 0, len(c.clients))
	for client := range c.clients {
		clients = append(clients, client)
	}

	return clients
}

func (c *Controller) hasConnectedUser(userID string) bool {
	for _, client := range c.Clients() {
		if client.userID == userID {
			return true
		}
	}

	return false
}

// seatUser records first-connect seating order; it determines the betting
// order when a round starts
func (c *Controller) seatUser(userID string) {
	for _, id := range c.seating {
		if id == userID {
			return
		}
	}

	c.seating = append(c.seating, userID)
}

func (c *Controller) unseatUser(userID string) {
	// keep the seat while the user is still in an active round; the
	// synthetic fold will play out through the normal pipeline
	if c.round != nil && !c.round.Complete() && c.round.HasUser(userID) {
		return
	}

	for i, id := range c.seating {
		if id == userID {
			c.seating = append(c.seating[:i], c.seating[i+1:]...)
			return
		}
	}
}

// ReceivedMessage is called when a client sends a message to the server
func (c *Controller) ReceivedMessage(client *Client, msg *PayloadIn) {
	switch msg.Action {
	case "bet":
		betType, err := betting.FromString(msg.BettingType)
		if err != nil {
			// structurally corrupt request; equivalent to an illegal action
			metrics.ActionsRejected.WithLabelValues(metrics.ReasonIllegalAction).Inc()
			client.Send(newErrorEvent(msg.Context, err))
			return
		}

		c.actions <- &actionRequest{
			client:  client,
			userID:  client.userID,
			betType: betType,
			context: msg.Context,
		}
	case "options":
		c.execInRunLoop <- func() {
			if c.round == nil {
				client.Send(newErrorEvent(msg.Context, ErrUnknownRound))
				return
			}

			funds, err := c.lookupFunds(client.userID)
			if err != nil {
				client.Send(newErrorEvent(msg.Context, err))
				return
			}

			opts, err := c.round.Options(client.userID, funds)
			if err != nil {
				client.Send(newErrorEvent(msg.Context, err))
				return
			}

			client.Send(newOfferEvent(client.userID, c.round.TableChips(), opts))
		}
	case "startRound":
		c.execInRunLoop <- func() {
			if err := c.startRound(nil, msg.CarryOver); err != nil {
				client.Send(newErrorEvent(msg.Context, err))
				return
			}

			client.Send(okEvent(msg.Context))
		}
	default:
		client.Send(newErrorEvent(msg.Context, betting.UserError("unknown action")))
	}
}

// SubmitAction queues an action on behalf of a user without a client
// connection. Timeout drivers use this to force a FOLD or CHECK; the engine
// itself never times a turn out.
func (c *Controller) SubmitAction(userID string, betType betting.Type) {
	c.actions <- &actionRequest{
		userID:  userID,
		betType: betType,
	}
}

// StartRound begins a new betting round. A nil order uses the room's seating
// order. carryOver seeds the table from the prior phase.
func (c *Controller) StartRound(order []string, carryOver int) error {
	errCh := make(chan error, 1)
	c.execInRunLoop <- func() {
		errCh <- c.startRound(order, carryOver)
	}

	return <-errCh
}

// NOTE: must only be called from the run loop
func (c *Controller) startRound(order []string, carryOver int) error {
	if c.round != nil && !c.round.Complete() {
		return ErrRoundInProgress
	}

	if order == nil {
		order = make([]string, len(c.seating))
		copy(order, c.seating)
	}

	if len(order) < 2 {
		return errNotEnoughUsers
	}

	round, err := betting.NewRound(c.policy, order, carryOver)
	if err != nil {
		return err
	}

	c.round = round
	c.bettingRound++
	metrics.ActiveRounds.Inc()
	c.saveSnapshot()

	c.log.WithFields(logrus.Fields{
		"bettingRound": c.bettingRound,
		"order":        order,
		"carryOver":    carryOver,
	}).Info("betting round started")

	c.broadcast(&StartedEvent{
		Key:                 "roundStarted",
		Order:               order,
		TableChips:          round.TableChips(),
		CurrentBettingRound: c.bettingRound,
	})

	c.driveTurn()
	return nil
}

// NOTE: must only be called from the run loop
func (c *Controller) handleAction(req *actionRequest) {
	if c.round == nil {
		c.rejected(req, ErrUnknownRound)
		return
	}

	funds, err := c.lookupFunds(req.userID)
	if err != nil {
		if req.client != nil {
			req.client.Send(newErrorEvent(req.context, err))
		}
		return
	}

	result, err := c.round.Apply(req.userID, req.betType, funds)
	if err != nil {
		c.rejected(req, err)
		return
	}

	c.applied(result)
}

// applied records and broadcasts a successful action, then either completes
// the round or drives the next turn
// NOTE: must only be called from the run loop
func (c *Controller) applied(result *betting.Result) {
	metrics.ActionsApplied.WithLabelValues(string(result.Type)).Inc()
	c.log.WithFields(logrus.Fields{
		"user":       result.UserID,
		"tableChips": result.TableChips,
	}).Infof("user %s", result.Type.LogMessage(result.Amount))

	c.broadcast(newResultEvent(result, c.bettingRound))

	if result.Complete {
		c.completeRound(result)
		return
	}

	c.saveSnapshot()
	c.driveTurn()
}

// driveTurn plays out pending synthetic folds for the current actor and then
// offers the legal actions to whoever is on the clock
// NOTE: must only be called from the run loop
func (c *Controller) driveTurn() {
	for c.round != nil && !c.round.Complete() {
		current := c.round.CurrentUser()
		if current == "" {
			return
		}

		if !c.pendingFolds[current] {
			c.sendOffer(current)
			return
		}

		delete(c.pendingFolds, current)
		result, err := c.round.Apply(current, betting.Fold, 0)
		if err != nil {
			// a fold on your own turn cannot fail
			c.log.WithError(err).WithField("user", current).Error("synthetic fold rejected")
			return
		}

		metrics.ActionsApplied.WithLabelValues(string(betting.Fold)).Inc()
		c.log.WithField("user", current).Info("user folded on disconnect")
		c.broadcast(newResultEvent(result, c.bettingRound))

		if result.Complete {
			c.completeRound(result)
			return
		}

		c.saveSnapshot()
	}
}

// NOTE: must only be called from the run loop
func (c *Controller) completeRound(result *betting.Result) {
	metrics.ActiveRounds.Dec()
	metrics.RoundsCompleted.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), fundsTimeout)
	defer cancel()

	if err := c.store.Delete(ctx, c.roomID); err != nil {
		c.log.WithError(err).Error("could not delete round snapshot")
	}

	completed := RoundCompleted{
		RoomID:       c.roomID,
		TableChips:   result.TableChips,
		Order:        result.FinalOrder,
		LastUser:     result.LastUser,
		BettingRound: c.bettingRound,
	}

	if err := c.publisher.PublishRoundCompleted(ctx, completed); err != nil {
		c.log.WithError(err).Error("could not publish round completion")
	}

	if c.OnRoundComplete != nil {
		c.OnRoundComplete(completed)
	}

	c.log.WithFields(logrus.Fields{
		"bettingRound": c.bettingRound,
		"tableChips":   result.TableChips,
		"order":        result.FinalOrder,
	}).Info("betting round complete")

	c.round = nil
}

// rejected reports a failed action back to the requesting connection only;
// round state is unchanged and the same user remains on the clock
// NOTE: must only be called from the run loop
func (c *Controller) rejected(req *actionRequest, err error) {
	metrics.ActionsRejected.WithLabelValues(rejectionReason(err)).Inc()
	c.log.WithError(err).WithFields(logrus.Fields{
		"user":    req.userID,
		"betType": req.betType,
	}).Debug("action rejected")

	if req.client != nil {
		req.client.Send(newErrorEvent(req.context, err))
	}
}

// sendOffer computes and unicasts the legal-action offer to the current actor
// NOTE: must only be called from the run loop
func (c *Controller) sendOffer(userID string) {
	funds, err := c.lookupFunds(userID)
	if err != nil {
		return
	}

	opts, err := c.round.Options(userID, funds)
	if err != nil {
		c.log.WithError(err).WithField("user", userID).Error("could not compute options")
		return
	}

	offer := newOfferEvent(userID, c.round.TableChips(), opts)
	for _, client := range c.Clients() {
		if client.userID == userID {
			client.Send(offer)
		}
	}
}

func (c *Controller) lookupFunds(userID string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), fundsTimeout)
	defer cancel()

	funds, err := c.funds.AvailableFunds(ctx, userID)
	if err != nil {
		if errors.Is(err, economy.ErrUserNotFound) {
			return 0, nil
		}

		c.log.WithError(err).WithField("user", userID).Error("could not look up funds")
		return 0, betting.UserError("could not verify available funds")
	}

	return funds, nil
}

// NOTE: must only be called from the run loop
func (c *Controller) saveSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), fundsTimeout)
	defer cancel()

	snap := &RoundSnapshot{
		State:        c.round.Snapshot(),
		BettingRound: c.bettingRound,
	}

	if err := c.store.Save(ctx, c.roomID, snap); err != nil {
		c.log.WithError(err).Error("could not save round snapshot")
	}
}

func (c *Controller) broadcast(msg interface{}) {
	for _, client := range c.Clients() {
		client.Send(msg)
	}
}

// PublicState returns the current round state for HTTP snapshot reads. The
// read round-trips the run loop so it never races a mutation.
func (c *Controller) PublicState() (*betting.State, int, bool) {
	type reply struct {
		state        *betting.State
		bettingRound int
		active       bool
	}

	ch := make(chan reply, 1)
	c.execInRunLoop <- func() {
		if c.round == nil {
			ch <- reply{}
			return
		}

		ch <- reply{
			state:        c.round.Snapshot(),
			bettingRound: c.bettingRound,
			active:       true,
		}
	}

	r := <-ch
	return r.state, r.bettingRound, r.active
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, betting.ErrNotYourTurn):
		return metrics.ReasonNotYourTurn
	case errors.Is(err, betting.ErrInsufficientFunds):
		return metrics.ReasonInsufficientFunds
	case errors.Is(err, ErrUnknownRound), errors.Is(err, betting.ErrRoundOver):
		return metrics.ReasonUnknownRound
	default:
		return metrics.ReasonIllegalAction
	}
}
