package stratum

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"bchwatch/internal/job"
)

// State tracks where the handshake stands.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateSubscribed
	StateAuthorizePending
	StateJobReceived
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateSubscribed:
		return "subscribed"
	case StateAuthorizePending:
		return "authorize-pending"
	case StateJobReceived:
		return "job-received"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrNoSubscribeResult means the pool never answered mining.subscribe
	// within the polling budget.
	ErrNoSubscribeResult = errors.New("no subscribe response from pool")
	// ErrAuthorizeRejected means the pool refused the worker before
	// sending any job.
	ErrAuthorizeRejected = errors.New("pool rejected worker authorization")
	// ErrNoJob means no mining.notify arrived within the polling budget.
	ErrNoJob = errors.New("no job notification from pool")
)

// Config holds the knobs for one pool connection.
type Config struct {
	Worker         string
	Password       string
	ClientName     string
	ConnectTimeout time.Duration
	RecvTimeout    time.Duration
	PollAttempts   int
	Debug          bool
}

// Client drives the read-only half of the Stratum V1 handshake against a
// pool: subscribe, authorize, then wait for the first job. It never submits
// shares. Not safe for concurrent use; run one Client per connection.
type Client struct {
	cfg   Config
	addr  string
	conn  net.Conn
	br    *bufio.Reader
	state State

	// Partial line left behind by a read that hit its deadline.
	pending []byte
	// Messages that arrived before the caller asked for them, e.g. a
	// notify pushed in the same burst as the subscribe response.
	backlog []Message

	ExtraNonce1     string
	ExtraNonce2Size int
	// PoolDifficulty is the last mining.set_difficulty seen, 0 if none.
	PoolDifficulty float64
}

func NewClient(cfg Config) *Client {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}
	if cfg.RecvTimeout <= 0 {
		cfg.RecvTimeout = 5 * time.Second
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 15
	}
	return &Client{cfg: cfg}
}

// State reports the current handshake state.
func (c *Client) State() State { return c.state }

// Dial opens the TCP connection.
func (c *Client) Dial(addr string) error {
	conn, err := net.DialTimeout("tcp", addr, c.cfg.ConnectTimeout)
	if err != nil {
		c.state = StateFailed
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	c.addr = addr
	c.conn = conn
	c.br = bufio.NewReader(conn)
	c.state = StateConnected
	return nil
}

// Close tears down the connection. Safe to call at any state.
func (c *Client) Close() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	if c.state != StateFailed {
		c.state = StateDisconnected
	}
}

// Subscribe sends mining.subscribe and waits for the extranonce assignment.
// Notifications that arrive before the response are kept for AwaitJob.
func (c *Client) Subscribe() error {
	req := Request{ID: subscribeID, Method: "mining.subscribe", Params: []any{c.cfg.ClientName}}
	if err := c.send(req); err != nil {
		c.state = StateFailed
		return err
	}
	for attempt := 0; attempt < c.cfg.PollAttempts; attempt++ {
		msg, err := c.recv()
		if err != nil {
			if isTimeout(err) {
				continue
			}
			c.state = StateFailed
			return err
		}
		switch m := msg.(type) {
		case SubscribeResponse:
			if m.Err != "" {
				c.state = StateFailed
				return fmt.Errorf("subscribe rejected: %s", m.Err)
			}
			c.ExtraNonce1 = m.ExtraNonce1
			c.ExtraNonce2Size = m.ExtraNonce2Size
			c.state = StateSubscribed
			return nil
		case JobNotification, DifficultyNotification, AuthorizeResponse:
			c.backlog = append(c.backlog, m)
		case Banner:
			log.Printf("pool %s says: %s", c.addr, m.Text)
		}
	}
	c.state = StateFailed
	return ErrNoSubscribeResult
}

// Authorize sends mining.authorize without waiting for the verdict. Many
// pools push the first job before answering it, so the response is handled
// inside AwaitJob instead.
func (c *Client) Authorize() error {
	req := Request{ID: authorizeID, Method: "mining.authorize", Params: []any{c.cfg.Worker, c.cfg.Password}}
	if err := c.send(req); err != nil {
		c.state = StateFailed
		return err
	}
	c.state = StateAuthorizePending
	return nil
}

// AwaitJob polls until the first mining.notify lands. An authorize
// rejection that arrives before any job is fatal; one that arrives after
// is the pool's problem, not ours, since the job data is already in hand.
func (c *Client) AwaitJob() (*job.Template, error) {
	for attempt := 0; attempt < c.cfg.PollAttempts; attempt++ {
		var msg Message
		if len(c.backlog) > 0 {
			msg = c.backlog[0]
			c.backlog = c.backlog[1:]
			attempt--
		} else {
			var err error
			msg, err = c.recv()
			if err != nil {
				if isTimeout(err) {
					continue
				}
				c.state = StateFailed
				return nil, err
			}
		}
		switch m := msg.(type) {
		case JobNotification:
			c.state = StateJobReceived
			return m.Template, nil
		case DifficultyNotification:
			c.PoolDifficulty = m.Difficulty
		case AuthorizeResponse:
			if !m.Authorized {
				// Pools push the rejection and a job in the same burst
				// often enough that the whole batch decides. A notify
				// already delivered still wins.
				if tmpl := c.drainForJob(); tmpl != nil {
					c.state = StateJobReceived
					return tmpl, nil
				}
				c.state = StateFailed
				if m.Err != "" {
					return nil, fmt.Errorf("%w: %s", ErrAuthorizeRejected, m.Err)
				}
				return nil, ErrAuthorizeRejected
			}
		case Banner:
			log.Printf("pool %s says: %s", c.addr, m.Text)
		case Unrecognized:
			if c.cfg.Debug {
				log.Printf("pool %s: ignoring %s frame", c.addr, frameLabel(m))
			}
		}
	}
	c.state = StateFailed
	return nil, ErrNoJob
}

// drainForJob consumes the backlog and whatever frames are already buffered
// on the connection, looking for a mining.notify. Called after an authorize
// rejection so a job delivered in the same batch is not lost.
func (c *Client) drainForJob() *job.Template {
	backlog := c.backlog
	c.backlog = nil
	for _, msg := range backlog {
		if m, ok := msg.(JobNotification); ok {
			return m.Template
		}
	}
	for c.br.Buffered() > 0 {
		msg, err := c.recv()
		if err != nil {
			return nil
		}
		switch m := msg.(type) {
		case JobNotification:
			return m.Template
		case DifficultyNotification:
			c.PoolDifficulty = m.Difficulty
		}
	}
	return nil
}

func frameLabel(m Unrecognized) string {
	if m.Method != "" {
		return m.Method
	}
	return "unmatched response"
}

func (c *Client) send(req Request) error {
	b, err := fastJSONMarshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", req.Method, err)
	}
	if c.cfg.Debug {
		log.Printf("-> %s: %s", c.addr, b)
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.RecvTimeout)); err != nil {
		return err
	}
	if _, err := c.conn.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("send %s: %w", req.Method, err)
	}
	return nil
}

// recv reads and classifies one line. A read that hits its deadline keeps
// whatever partial line arrived so the next call can finish it.
func (c *Client) recv() (Message, error) {
	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.RecvTimeout)); err != nil {
			return nil, err
		}
		chunk, err := c.br.ReadBytes('\n')
		if err != nil {
			c.pending = append(c.pending, chunk...)
			return nil, err
		}
		line := bytes.TrimSpace(append(c.pending, chunk...))
		c.pending = nil
		if len(line) == 0 {
			continue
		}
		if c.cfg.Debug {
			log.Printf("<- %s: %s", c.addr, line)
		}
		msg, err := classify(line)
		if errors.Is(err, errNotJSON) {
			// Plain-text banner or ban notice. Surface it and move on.
			log.Printf("pool %s sent non-JSON: %s", c.addr, line)
			continue
		}
		return msg, err
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
