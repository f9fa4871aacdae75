package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/aretw0/debot/pkg/adapters/file"
	"github.com/aretw0/debot/pkg/adapters/redis"
	"github.com/aretw0/debot/pkg/persistence/middleware"
	"github.com/aretw0/debot/pkg/ports"
	"github.com/aretw0/debot/pkg/session"
)

var errNoStore = errors.New("no checkpoint store configured (use --redis-addr or --store-dir)")

// storeConn is an open checkpoint backend. redis is nil for the file store.
type storeConn struct {
	raw   ports.CheckpointStore
	redis *redis.Store
	close func() error
}

// openStore connects the backend selected by opts. Redis wins over a directory.
// It returns errNoStore when neither is configured.
func openStore(ctx context.Context, opts StoreOptions) (*storeConn, error) {
	switch {
	case opts.Addr != "":
		store := newRedisStore(opts)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
		}
		return &storeConn{raw: store, redis: store, close: store.Close}, nil
	case opts.Dir != "":
		return &storeConn{raw: file.New(opts.Dir), close: func() error { return nil }}, nil
	default:
		return nil, errNoStore
	}
}

// persistence bundles the checkpoint store and session lock of a run.
type persistence struct {
	store  ports.CheckpointStore
	locker ports.SessionLocker
	close  func() error
}

// setupPersistence opens the configured store. Without one a run keeps no
// checkpoints and only locks within the process.
func setupPersistence(ctx context.Context, opts StoreOptions, logger *slog.Logger) (*persistence, error) {
	conn, err := openStore(ctx, opts)
	if errors.Is(err, errNoStore) {
		return &persistence{
			locker: session.NewLocker(session.WithLogger(logger)),
			close:  func() error { return nil },
		}, nil
	}
	if err != nil {
		return nil, err
	}

	checkpoints := conn.raw
	if opts.EncryptionKey != "" {
		key, err := hex.DecodeString(opts.EncryptionKey)
		if err != nil {
			_ = conn.close()
			return nil, fmt.Errorf("encryption key is not hex: %w", err)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = conn.close()
			return nil, err
		}
		checkpoints = middleware.Chain(checkpoints, enc)
	}

	lockOpts := []session.Option{session.WithLogger(logger)}
	if conn.redis != nil {
		lockOpts = append(lockOpts, session.WithDistributed(redis.NewLocker(conn.redis.Client(), conn.redis.Prefix())))
	}
	return &persistence{
		store:  checkpoints,
		locker: session.NewLocker(lockOpts...),
		close:  conn.close,
	}, nil
}

func newRedisStore(opts StoreOptions) *redis.Store {
	var storeOpts []redis.Option
	if opts.Prefix != "" {
		storeOpts = append(storeOpts, redis.WithPrefix(opts.Prefix))
	}
	if opts.TTL > 0 {
		storeOpts = append(storeOpts, redis.WithTTL(opts.TTL))
	}
	return redis.New(opts.Addr, opts.Password, opts.DB, storeOpts...)
}

// ListSessions prints the stored sessions, one per line.
func ListSessions(ctx context.Context, w io.Writer, opts StoreOptions) error {
	conn, err := openStore(ctx, opts)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	defer conn.close()

	ids, err := conn.raw.List(ctx)
	if err != nil {
		return err
	}
	sort.Strings(ids)
	for _, id := range ids {
		cp, err := conn.raw.Load(ctx, id)
		if err != nil {
			fmt.Fprintln(w, id)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, cp.Address, cp.Current, cp.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// DeleteSession removes a stored session.
func DeleteSession(ctx context.Context, w io.Writer, opts StoreOptions, sessionID string) error {
	conn, err := openStore(ctx, opts)
	if err != nil {
		return fmt.Errorf("deleting sessions: %w", err)
	}
	defer conn.close()

	if err := conn.raw.Delete(ctx, sessionID); err != nil {
		return err
	}
	printSystemMessage(w, "Session '%s' deleted.", sessionID)
	return nil
}
