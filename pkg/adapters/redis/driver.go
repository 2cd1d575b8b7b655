package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/aretw0/accelerate/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the driver.
const DefaultPrefix = "accelerate:"

// Driver implements ports.Driver using Redis.
// The cursor lives in a single key; every write is also appended to a history list.
// Motion bodies are Lua scripts run with EVAL.
type Driver struct {
	client *backend.Client
	prefix string
	owned  bool
}

type Option func(*Driver)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(d *Driver) {
		d.prefix = prefix
	}
}

// New creates a new Redis driver with its own client.
func New(address, password string, db int, opts ...Option) *Driver {
	return NewFromOptions(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}, opts...)
}

// NewFromOptions creates a new Redis driver with its own client built from opts,
// typically the result of redis.ParseURL.
func NewFromOptions(opts *backend.Options, dopts ...Option) *Driver {
	d := NewFromClient(backend.NewClient(opts), dopts...)
	d.owned = true
	return d
}

// NewFromClient creates a new Redis driver from an existing client.
// The client is not closed by Close.
func NewFromClient(client *backend.Client, opts ...Option) *Driver {
	d := &Driver{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) statusKey() string {
	return d.prefix + "status"
}

func (d *Driver) historyKey() string {
	return d.prefix + "history"
}

// HistoryEntry is one recorded status write.
type HistoryEntry struct {
	Status   int       `json:"status"`
	Inserted time.Time `json:"inserted"`
}

// Init checks the server is reachable.
func (d *Driver) Init(ctx context.Context) error {
	if err := d.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	return nil
}

// Status reads the cursor. A missing or non-numeric value reports ok == false.
func (d *Driver) Status(ctx context.Context) (int, bool, error) {
	val, err := d.client.Get(ctx, d.statusKey()).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: failed to get status from redis: %v", domain.ErrBackendUnavailable, err)
	}

	status, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, nil
	}
	return status, true, nil
}

// SetStatus writes the cursor and appends it to the history in one pipeline.
func (d *Driver) SetStatus(ctx context.Context, status int) error {
	entry, err := json.Marshal(HistoryEntry{Status: status, Inserted: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	pipe := d.client.TxPipeline()
	pipe.Set(ctx, d.statusKey(), status, 0)
	pipe.RPush(ctx, d.historyKey(), entry)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to save status to redis: %v", domain.ErrBackendUnavailable, err)
	}
	return nil
}

// Execute runs the step body as a Lua script. A script returning nil is a success.
func (d *Driver) Execute(ctx context.Context, step domain.Step) error {
	err := d.client.Eval(ctx, step.Body, nil).Err()
	if err != nil && !errors.Is(err, backend.Nil) {
		return err
	}
	return nil
}

// History returns every recorded status write, oldest first.
func (d *Driver) History(ctx context.Context) ([]HistoryEntry, error) {
	vals, err := d.client.LRange(ctx, d.historyKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read history from redis: %v", domain.ErrBackendUnavailable, err)
	}

	entries := make([]HistoryEntry, 0, len(vals))
	for _, v := range vals {
		var e HistoryEntry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Client exposes the underlying client, e.g. to build a Locker on the same connection.
func (d *Driver) Client() *backend.Client {
	return d.client
}

// Locker returns a lock sharing the driver's client and key prefix, so engines pointed
// at the same target serialize their runs.
func (d *Driver) Locker() ports.Locker {
	return NewLocker(d.client, d.prefix)
}

// Close releases the client if the driver created it.
func (d *Driver) Close() error {
	if !d.owned {
		return nil
	}
	return d.client.Close()
}
