package inspect

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bchwatch/internal/config"
	"bchwatch/internal/job"
	"bchwatch/internal/metrics"
	"bchwatch/internal/stratum"
	"bchwatch/internal/tx"
)

// Result is everything one successful inspection learned about a pool's
// current job.
type Result struct {
	Pool      string `json:"pool"`
	Host      string `json:"host"`
	Timestamp string `json:"timestamp"`

	JobID          string  `json:"job_id"`
	VersionHex     string  `json:"version"`
	BitsHex        string  `json:"nbits"`
	Difficulty     string  `json:"difficulty"`
	DifficultyRaw  float64 `json:"difficulty_raw"`
	NTime          string  `json:"ntime"`
	NTimeUTC       string  `json:"ntime_utc"`
	CleanJobs      bool    `json:"clean_jobs"`
	PoolDifficulty float64 `json:"pool_difficulty,omitempty"`

	PrevHash    string `json:"prev_hash"`
	Height      int64  `json:"height"`
	HeightKnown bool   `json:"height_known"`

	Tag          string `json:"tag"`
	TagRawHex    string `json:"tag_raw_hex"`
	ScriptSigHex string `json:"scriptsig_hex"`

	ExtraNonce1     string `json:"extranonce1"`
	ExtraNonce2Size int    `json:"extranonce2_size"`

	TotalReward    uint64             `json:"total_reward_sats"`
	Outputs        []tx.DecodedOutput `json:"outputs"`
	MerkleBranches []string           `json:"merkle_branches"`
	CoinbaseHex    string             `json:"coinbase_hex"`
}

// Error wraps an inspection failure with the phase it happened in, so
// failures can be counted per kind.
type Error struct {
	Pool string
	Kind string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("inspect %s: %s: %v", e.Pool, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Inspector runs the subscribe/authorize/notify handshake against pools and
// decodes what comes back.
type Inspector struct {
	cfg config.Config
	rec metrics.Recorder
}

func New(cfg config.Config) *Inspector {
	return &Inspector{cfg: cfg, rec: metrics.Default}
}

// Inspect connects to one pool, waits for its first job, and decodes the
// coinbase it would have us mine.
func (ins *Inspector) Inspect(pool config.Pool) (*Result, error) {
	ins.rec.InspectionStarted(pool.Name)
	res, err := ins.inspect(pool)
	if err != nil {
		var ie *Error
		kind := "internal"
		if errors.As(err, &ie) {
			kind = ie.Kind
		}
		ins.rec.InspectionFailed(pool.Name, kind)
		return nil, err
	}
	ins.rec.InspectionSucceeded(pool.Name)
	return res, nil
}

func (ins *Inspector) inspect(pool config.Pool) (*Result, error) {
	fail := func(kind string, err error) (*Result, error) {
		return nil, &Error{Pool: pool.Name, Kind: kind, Err: err}
	}

	c := stratum.NewClient(stratum.Config{
		Worker:         ins.cfg.Worker,
		Password:       ins.cfg.Password,
		ClientName:     ins.cfg.ClientName,
		ConnectTimeout: time.Duration(ins.cfg.ConnectTimeoutSecs) * time.Second,
		RecvTimeout:    time.Duration(ins.cfg.RecvTimeoutSecs) * time.Second,
		PollAttempts:   ins.cfg.PollAttempts,
		Debug:          ins.cfg.Debug,
	})
	if err := c.Dial(pool.Addr()); err != nil {
		return fail("dial", err)
	}
	ins.rec.ConnOpened(pool.Name)
	defer func() {
		c.Close()
		ins.rec.ConnClosed(pool.Name)
	}()

	if err := c.Subscribe(); err != nil {
		return fail("subscribe", err)
	}
	if err := c.Authorize(); err != nil {
		return fail("authorize", err)
	}
	tmpl, err := c.AwaitJob()
	if err != nil {
		switch {
		case errors.Is(err, stratum.ErrAuthorizeRejected):
			return fail("authorize", err)
		case errors.Is(err, stratum.ErrNoJob):
			return fail("no-job", err)
		}
		return fail("protocol", err)
	}

	raw, err := job.AssembleCoinbase(tmpl, c.ExtraNonce1, c.ExtraNonce2Size)
	if err != nil {
		return fail("decode", err)
	}
	parsed, err := tx.Decode(raw)
	if err != nil {
		return fail("decode", fmt.Errorf("%w (coinbase hex %s)", err, hex.EncodeToString(raw)))
	}
	if !bytes.Equal(parsed.Serialize(), raw) {
		return fail("decode", fmt.Errorf("coinbase did not survive a decode round trip (hex %s)", hex.EncodeToString(raw)))
	}
	if len(parsed.Inputs) == 0 {
		return fail("decode", errors.New("coinbase has no inputs"))
	}

	res := &Result{
		Pool:            pool.Name,
		Host:            pool.Addr(),
		Timestamp:       time.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
		JobID:           tmpl.JobID,
		VersionHex:      tmpl.Version,
		BitsHex:         tmpl.Bits,
		NTime:           tmpl.NTime,
		NTimeUTC:        timestampFromHex(tmpl.NTime),
		CleanJobs:       tmpl.CleanJobs,
		PoolDifficulty:  c.PoolDifficulty,
		PrevHash:        job.PrevHashToDisplay(tmpl.PrevHash),
		ExtraNonce1:     c.ExtraNonce1,
		ExtraNonce2Size: c.ExtraNonce2Size,
		TotalReward:     parsed.TotalOutput(),
		MerkleBranches:  tmpl.MerkleBranches,
		CoinbaseHex:     hex.EncodeToString(raw),
	}

	if diff, rawDiff, err := job.DifficultyFromBits(tmpl.Bits); err == nil {
		res.Difficulty = diff
		res.DifficultyRaw = rawDiff
	} else {
		res.Difficulty = "N/A"
	}

	scriptSig := parsed.Inputs[0].UnlockScript
	res.ScriptSigHex = hex.EncodeToString(scriptSig)
	res.Height, res.HeightKnown = tx.ExtractHeight(scriptSig)
	tag, tagRaw := tx.ExtractTag(scriptSig)
	res.Tag = tag
	res.TagRawHex = hex.EncodeToString(tagRaw)

	res.Outputs = make([]tx.DecodedOutput, 0, len(parsed.Outputs))
	for _, out := range parsed.Outputs {
		res.Outputs = append(res.Outputs, tx.ClassifyOutput(out))
	}

	ins.rec.JobReceived(pool.Name, res.Height)
	return res, nil
}

// timestampFromHex renders a hex ntime as a human-readable UTC time, or
// "N/A" when it does not parse.
func timestampFromHex(ntime string) string {
	v, err := strconv.ParseUint(ntime, 16, 32)
	if err != nil {
		return "N/A"
	}
	return time.Unix(int64(v), 0).UTC().Format("2006-01-02 15:04:05 UTC")
}
