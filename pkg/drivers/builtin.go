package drivers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aretw0/accelerate/pkg/adapters/memory"
	"github.com/aretw0/accelerate/pkg/adapters/postgres"
	"github.com/aretw0/accelerate/pkg/adapters/redis"
	"github.com/aretw0/accelerate/pkg/adapters/sqlite"
	"github.com/mitchellh/mapstructure"
	backend "github.com/redis/go-redis/v9"
)

type memoryOptions struct {
	Status *int `mapstructure:"status"`
}

type sqliteOptions struct {
	// BusyTimeout is in milliseconds.
	BusyTimeout int    `mapstructure:"busy_timeout"`
	Table       string `mapstructure:"table"`
}

type postgresOptions struct {
	Schema string `mapstructure:"schema"`
	Table  string `mapstructure:"table"`
}

type redisOptions struct {
	Prefix string `mapstructure:"prefix"`
}

// decodeQuery weakly decodes the query parameters in keys into out.
// Parameters not listed in keys are left for the backend.
func decodeQuery(query url.Values, out any, keys ...string) error {
	input := make(map[string]any, len(keys))
	for _, k := range keys {
		if query.Has(k) {
			input[k] = query.Get(k)
		}
	}
	if err := mapstructure.WeakDecode(input, out); err != nil {
		return fmt.Errorf("invalid driver options: %w", err)
	}
	return nil
}

// rejectUnknown fails on query parameters a driver does not understand.
func rejectUnknown(t Target, keys ...string) error {
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}
	for k := range t.Query {
		if !known[k] {
			return fmt.Errorf("invalid driver options: %s does not accept %q", t.Scheme, k)
		}
	}
	return nil
}

func openMemory(_ context.Context, t Target) (Driver, error) {
	if err := rejectUnknown(t, "status"); err != nil {
		return nil, err
	}
	var opts memoryOptions
	if err := decodeQuery(t.Query, &opts, "status"); err != nil {
		return nil, err
	}

	var mopts []memory.Option
	if opts.Status != nil {
		mopts = append(mopts, memory.WithStatus(*opts.Status))
	}
	return memory.NewDriver(mopts...), nil
}

func openSQLite(_ context.Context, t Target) (Driver, error) {
	if err := rejectUnknown(t, "busy_timeout", "table"); err != nil {
		return nil, err
	}
	var opts sqliteOptions
	if err := decodeQuery(t.Query, &opts, "busy_timeout", "table"); err != nil {
		return nil, err
	}
	if t.Location == "" {
		return nil, fmt.Errorf("invalid target %q: missing database path", t.Raw)
	}

	var sopts []sqlite.Option
	if opts.BusyTimeout > 0 {
		sopts = append(sopts, sqlite.WithBusyTimeout(time.Duration(opts.BusyTimeout)*time.Millisecond))
	}
	if opts.Table != "" {
		sopts = append(sopts, sqlite.WithTable(opts.Table))
	}
	return sqlite.Open(t.Location, sopts...)
}

// stripQuery rebuilds the target without the parameters in keys, which are ours
// and would be rejected by the backend's own URL parser.
func stripQuery(t Target, keys ...string) string {
	ours := make(map[string]bool, len(keys))
	for _, k := range keys {
		ours[k] = true
	}
	rest := url.Values{}
	for k, v := range t.Query {
		if !ours[k] {
			rest[k] = v
		}
	}
	raw := t.Scheme + "://" + t.Location
	if len(rest) > 0 {
		raw += "?" + rest.Encode()
	}
	return raw
}

func openPostgres(ctx context.Context, t Target) (Driver, error) {
	var opts postgresOptions
	if err := decodeQuery(t.Query, &opts, "schema", "table"); err != nil {
		return nil, err
	}

	var popts []postgres.Option
	if opts.Schema != "" {
		popts = append(popts, postgres.WithSchema(opts.Schema))
	}
	if opts.Table != "" {
		popts = append(popts, postgres.WithTable(opts.Table))
	}
	return postgres.Open(ctx, stripQuery(t, "schema", "table"), popts...)
}

func openRedis(_ context.Context, t Target) (Driver, error) {
	var opts redisOptions
	if err := decodeQuery(t.Query, &opts, "prefix"); err != nil {
		return nil, err
	}

	ropts, err := backend.ParseURL(stripQuery(t, "prefix"))
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: %w", t.Raw, err)
	}

	var dopts []redis.Option
	if opts.Prefix != "" {
		dopts = append(dopts, redis.WithPrefix(opts.Prefix))
	}
	return redis.NewFromOptions(ropts, dopts...), nil
}
