package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrNilClient = errors.New("redis bus: nil client")

const defaultChannel = "hybridcache:invalidate"

type RedisConfig struct {
	Client      goredis.UniversalClient
	CloseClient bool        // set true only if the bus exclusively owns the client
	Channel     string      // "" => "hybridcache:invalidate"
	Buffer      int         // delivered-message buffer; 0 => 256
	OnError     func(error) // undecodable payloads; optional
}

// Redis is a Bus over Redis pub/sub.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	channel     string
	origin      string
	onError     func(error)

	ps   *goredis.PubSub
	out  chan Message
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

var _ Bus = (*Redis)(nil)

// NewRedis subscribes to the channel and returns once the subscription is confirmed,
// so nothing published after NewRedis returns is missed.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Channel == "" {
		cfg.Channel = defaultChannel
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}

	ps := cfg.Client.Subscribe(ctx, cfg.Channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	b := &Redis{
		rdb:         cfg.Client,
		closeClient: cfg.CloseClient,
		channel:     cfg.Channel,
		origin:      uuid.NewString(),
		onError:     cfg.OnError,
		ps:          ps,
		out:         make(chan Message, cfg.Buffer),
		done:        make(chan struct{}),
	}
	b.wg.Add(1)
	go b.loop()
	return b, nil
}

func (b *Redis) Origin() string { return b.origin }

func (b *Redis) Publish(ctx context.Context, m Message) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	m.Origin = b.origin
	raw, err := msgpack.Marshal(m)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *Redis) Messages() <-chan Message { return b.out }

func (b *Redis) Close() error {
	var err error
	b.once.Do(func() {
		close(b.done)
		err = b.ps.Close()
		b.wg.Wait()
		close(b.out)
		if b.closeClient {
			if cerr := b.rdb.Close(); cerr != nil && !errors.Is(cerr, goredis.ErrClosed) {
				err = errors.Join(err, cerr)
			}
		}
	})
	return err
}

func (b *Redis) loop() {
	defer b.wg.Done()
	in := b.ps.Channel()
	for {
		select {
		case <-b.done:
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			var m Message
			if err := msgpack.Unmarshal([]byte(msg.Payload), &m); err != nil {
				if b.onError != nil {
					b.onError(err)
				}
				continue
			}
			if m.Origin == b.origin {
				continue
			}
			select {
			case b.out <- m:
			case <-b.done:
				return
			}
		}
	}
}
