// Package entry drives the create-or-join flow that ends with a session
// credential: a landing screen, a name/avatar form, and one gateway call per
// accepted submission.
package entry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"simonseq/internal/avatar"
	"simonseq/internal/session"
)

// ErrUnknownAvatar is returned by SetAvatar for ids outside the catalog.
var ErrUnknownAvatar = errors.New("unknown avatar")

// Gateway acquires sessions from the authority. A failure shown to the
// player must implement UserMessage() string somewhere in its chain (as
// *gateway.Error does); any other error is shown as the intent's default
// message.
type Gateway interface {
	CreateSession(ctx context.Context, displayName, avatarID string) (session.Session, error)
	JoinGame(ctx context.Context, displayName, avatarID, code string) (session.Session, error)
}

// SessionWriter receives the session after a successful submission. Save
// runs without the controller's lock held.
type SessionWriter interface {
	Save(ctx context.Context, s session.Session) error
}

// Options configures a Controller. Gateway and Sessions are required.
type Options struct {
	// JoinCode comes from the incoming navigation; empty means create.
	JoinCode string
	Gateway  Gateway
	Sessions SessionWriter
	// AfterFunc schedules the splash auto-advance. Nil uses time.AfterFunc.
	AfterFunc AfterFunc
}

// Controller owns one visit's entry form. It is safe for concurrent use;
// every method runs to completion under the controller's lock except the
// gateway call inside Submit.
type Controller struct {
	gateway   Gateway
	sessions  SessionWriter
	afterFunc AfterFunc
	intent    Intent
	joinCode  string

	mu        sync.Mutex
	mode      Mode
	name      string
	avatarID  string
	status    Status
	errMsg    string
	closed    bool
	splash    Stopper
	splashGen uint64

	advanced    chan struct{}
	proceed     chan struct{}
	proceedOnce sync.Once
}

// New builds a controller. A join code puts it straight on the form with
// join intent; otherwise it starts on the landing screen with create intent.
func New(opts Options) *Controller {
	if opts.Gateway == nil {
		panic("entry: nil Gateway")
	}
	if opts.Sessions == nil {
		panic("entry: nil Sessions")
	}
	c := &Controller{
		gateway:   opts.Gateway,
		sessions:  opts.Sessions,
		afterFunc: opts.AfterFunc,
		joinCode:  NormalizeJoinCode(opts.JoinCode),
		avatarID:  avatar.DefaultID,
		advanced:  make(chan struct{}),
		proceed:   make(chan struct{}),
	}
	if c.afterFunc == nil {
		c.afterFunc = timeAfterFunc
	}
	if c.joinCode != "" {
		c.intent = IntentJoin
		c.mode = ModeForm
		close(c.advanced)
	}
	return c
}

// Intent returns the fixed intent of this controller.
func (c *Controller) Intent() Intent {
	return c.intent
}

// State returns a copy of the current form.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Mode:         c.mode,
		Intent:       c.intent,
		JoinCode:     c.joinCode,
		DisplayName:  c.name,
		AvatarID:     c.avatarID,
		Status:       c.status,
		ErrorMessage: c.errMsg,
	}
}

// Advanced is closed once the form is showing.
func (c *Controller) Advanced() <-chan struct{} {
	return c.advanced
}

// Proceed is closed after a session has been stored; the next screen reads
// the session from the store.
func (c *Controller) Proceed() <-chan struct{} {
	return c.proceed
}

// StartSplash arms the landing auto-advance. It reports false when the
// controller is not on the landing screen or a splash is already armed.
// A non-positive d uses DefaultSplash.
func (c *Controller) StartSplash(d time.Duration) bool {
	if d <= 0 {
		d = DefaultSplash
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.mode != ModeLanding || c.splash != nil {
		return false
	}
	c.splashGen++
	gen := c.splashGen
	c.splash = c.afterFunc(d, func() { c.splashFired(gen) })
	return true
}

func (c *Controller) splashFired(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.splashGen || c.closed {
		return
	}
	c.splash = nil
	c.advanceLocked()
}

// AdvanceFromLanding moves Landing → Form. It is a no-op anywhere else and
// reports whether the transition happened.
func (c *Controller) AdvanceFromLanding() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	return c.advanceLocked()
}

func (c *Controller) advanceLocked() bool {
	if c.mode != ModeLanding {
		return false
	}
	c.disarmSplashLocked()
	c.mode = ModeForm
	close(c.advanced)
	return true
}

func (c *Controller) disarmSplashLocked() {
	// Bumping the generation makes a callback that already fired a no-op.
	c.splashGen++
	if c.splash != nil {
		c.splash.Stop()
		c.splash = nil
	}
}

// SetDisplayName stores the raw value; length caps belong to the input layer.
func (c *Controller) SetDisplayName(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.name = value
}

// SetAvatar selects one catalog avatar.
func (c *Controller) SetAvatar(id string) error {
	if !avatar.Valid(id) {
		return ErrUnknownAvatar
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.avatarID = id
	return nil
}

// Submit acquires a session for the current form. It blocks for the
// duration of the gateway call and never retries.
func (c *Controller) Submit(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.closed || c.mode != ModeForm || c.status == StatusSubmitting || !ValidDisplayName(c.name) {
		c.mu.Unlock()
		return OutcomeRefused
	}
	c.status = StatusSubmitting
	c.errMsg = ""
	name, avatarID := c.name, c.avatarID
	c.mu.Unlock()

	var (
		sess session.Session
		err  error
	)
	if c.intent == IntentJoin {
		sess, err = c.gateway.JoinGame(ctx, name, avatarID, c.joinCode)
	} else {
		sess, err = c.gateway.CreateSession(ctx, name, avatarID)
	}

	if err == nil {
		if c.isClosed() {
			return c.discard()
		}
		// Stay Submitting while the store writes so a second submit is refused.
		err = c.sessions.Save(context.WithoutCancel(ctx), sess)
		if err != nil {
			err = fmt.Errorf("store session: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.status = StatusIdle
		return OutcomeDiscarded
	}
	if err == nil {
		c.status = StatusIdle
		c.proceedOnce.Do(func() { close(c.proceed) })
		return OutcomeProceeded
	}
	log.Printf("entry submit failed intent=%s err=%v", c.intent, err)
	c.status = StatusFailed
	c.errMsg = failureMessage(err, c.intent)
	return OutcomeFailed
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) discard() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = StatusIdle
	return OutcomeDiscarded
}

// Close tears the controller down: the splash is disarmed and an
// outstanding gateway result will be discarded. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.disarmSplashLocked()
}
